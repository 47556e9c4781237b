package render

import (
	"math"

	"github.com/shopspring/decimal"
)

// labelSignificantDigits is how many significant digits sub-dollar prices keep.
const labelSignificantDigits = 4

// FormatPrice renders a USD price for the price label. Prices above $1 use
// fixed decimals; smaller prices keep four significant digits so meme coin
// prices like 0.00001234 stay readable.
func FormatPrice(price float64) string {
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return "0"
	}

	d := decimal.NewFromFloat(price)
	switch {
	case price >= 1000:
		return d.StringFixed(2)
	case price >= 1:
		return d.StringFixed(4)
	}

	exp := int32(math.Floor(math.Log10(price)))
	places := -exp + labelSignificantDigits - 1
	return d.StringFixed(places)
}
