package utils

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// maxExponent bounds typed numbers to the float64 range they are sent as
const maxExponent = 308

// ParseNumber converts form input to a number.
// ok is false when the input is blank, not a number, or outside the finite float64
// range, so callers decide what that means.
func ParseNumber(raw string) (decimal.Decimal, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, false
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Zero, false
	}
	if math.IsInf(d.InexactFloat64(), 0) {
		return decimal.Zero, false
	}
	return d, true
}

// NumberOrZero converts form input to a number, treating blank or malformed input as zero
func NumberOrZero(raw string) decimal.Decimal {
	d, _ := ParseNumber(raw)
	return d
}

// IsBlank reports whether a form field holds nothing but whitespace
func IsBlank(raw string) bool {
	return strings.TrimSpace(raw) == ""
}

// OptionalString returns nil for blank input, otherwise a pointer to the trimmed value
func OptionalString(raw string) *string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	return &value
}
