// Package theme resolves chart colors from the light/dark flag.
package theme

// Palette holds every color the chart surface needs.
type Palette struct {
	Background     string `json:"background"`
	Text           string `json:"text"`
	GridLines      string `json:"grid_lines"`
	Border         string `json:"border"`
	Crosshair      string `json:"crosshair"`
	CrosshairLabel string `json:"crosshair_label"`
	LineColor      string `json:"line_color"`
	PriceLine      string `json:"price_line"`
	AreaTop        string `json:"area_top"`
	AreaBottom     string `json:"area_bottom"`
}

var darkPalette = Palette{
	Background:     "#0b0e11",
	Text:           "#d1d4dc",
	GridLines:      "rgba(42, 46, 57, 0.5)",
	Border:         "#2a2e39",
	Crosshair:      "#758696",
	CrosshairLabel: "#1e222d",
	LineColor:      "#22c55e",
	PriceLine:      "#22c55e",
	AreaTop:        "rgba(34, 197, 94, 0.28)",
	AreaBottom:     "rgba(34, 197, 94, 0.02)",
}

var lightPalette = Palette{
	Background:     "#ffffff",
	Text:           "#191919",
	GridLines:      "rgba(197, 203, 206, 0.5)",
	Border:         "#d6dcde",
	Crosshair:      "#9598a1",
	CrosshairLabel: "#f0f3fa",
	LineColor:      "#16a34a",
	PriceLine:      "#16a34a",
	AreaTop:        "rgba(22, 163, 74, 0.24)",
	AreaBottom:     "rgba(22, 163, 74, 0.02)",
}

// Resolve returns the palette for the given mode.
func Resolve(dark bool) Palette {
	if dark {
		return darkPalette
	}
	return lightPalette
}
