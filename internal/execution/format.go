package execution

import "github.com/shopspring/decimal"

// formatPrecision caps decimal strings at four fractional digits, matching
// the venue's accepted precision for quantities and trigger prices.
const formatPrecision = 4

// FormatDecimal renders a numeric value as the fixed-point string the venue
// expects: at most four decimal places, trailing zeros and a trailing
// decimal point stripped. Deterministic for a given input: 1.2000 -> "1.2",
// 1.0 -> "1", 0.0100 -> "0.01".
func FormatDecimal(value float64) string {
	return decimal.NewFromFloat(value).Round(formatPrecision).String()
}
