// Package render owns the chart's single line series and applies theme,
// size and data changes to a host drawing surface.
package render

import (
	"solana-price-chart/internal/domain"
	"solana-price-chart/internal/theme"
)

// Surface is the host chart widget. Calls are made on the loop; resize
// listeners may fire from any goroutine.
type Surface interface {
	// Size returns the measured container size in pixels.
	Size() (width, height int)

	// SetData replaces the whole series.
	SetData(points []domain.PricePoint)

	// Update upserts one point: same time mutates the last point.
	Update(p domain.PricePoint)

	// FitContent fits the visible range to the data.
	FitContent()

	// ScrollToRealTime keeps the newest point in view.
	ScrollToRealTime()

	// ApplyOptions re-applies every visual option from the palette.
	ApplyOptions(p theme.Palette)

	// Resize sets the drawing size.
	Resize(width, height int)

	// SetPriceLabel sets the visible price label.
	SetPriceLabel(label string)

	// OnResize registers a container resize listener.
	OnResize(fn func(width, height int)) (detach func())

	// Release frees the surface.
	Release()
}
