package catalog

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Upper bounds accepted for prices and quantities.
var (
	MaxPrice    = decimal.NewFromInt(1_000_000_000)
	MaxQuantity = decimal.NewFromInt(math.MaxInt32)
)

// Number is a numeric form input. Input that does not parse yields an
// invalid Number, which validation rejects.
type Number struct {
	Raw   string          `json:"raw"`
	Value decimal.Decimal `json:"value"`
	Valid bool            `json:"valid"`
}

// ParseNumber parses raw form input. Surrounding spaces are ignored.
func ParseNumber(raw string) Number {
	n := Number{Raw: raw}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return n
	}
	n.Value = d
	n.Valid = true
	return n
}

// NumberOf wraps an already-numeric value, e.g. when prefilling from the backend.
func NumberOf(f float64) Number {
	d := decimal.NewFromFloat(f)
	return Number{Raw: d.String(), Value: d, Valid: true}
}

// NonNegative reports whether n parsed and is >= 0.
func (n Number) NonNegative() bool {
	return n.Valid && !n.Value.IsNegative()
}

// Whole reports whether n parsed and has no fractional part.
func (n Number) Whole() bool {
	return n.Valid && n.Value.Equal(n.Value.Truncate(0))
}

// AtMost reports whether n parsed and is <= limit.
func (n Number) AtMost(limit decimal.Decimal) bool {
	return n.Valid && n.Value.LessThanOrEqual(limit)
}

// Float returns the value as float64 for JSON payloads.
func (n Number) Float() float64 {
	return n.Value.InexactFloat64()
}

// Int returns the integer part of the value. Callers bound n by
// MaxQuantity first.
func (n Number) Int() int {
	return int(n.Value.IntPart())
}
