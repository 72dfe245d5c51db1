package stats

import (
	"math"
	"strconv"
)

// NullFloat is a float64 that may be absent. Valid is false when no value was computed, which
// is distinct from a computed value of zero.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// NewNullFloat wraps a computed value. NaN is treated as absent.
func NewNullFloat(v float64) NullFloat {
	if math.IsNaN(v) {
		return NullFloat{}
	}
	return NullFloat{Float64: v, Valid: true}
}

// Or returns the value when present or the fallback otherwise
func (n NullFloat) Or(fallback float64) float64 {
	if !n.Valid {
		return fallback
	}
	return n.Float64
}

// MarshalJSON encodes absent values as null
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid || math.IsNaN(n.Float64) || math.IsInf(n.Float64, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, n.Float64, 'g', -1, 64), nil
}

// UnmarshalJSON decodes null into an absent value
func (n *NullFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = NullFloat{}
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*n = NullFloat{Float64: v, Valid: true}
	return nil
}

// String formats the value for reports, printing nan when absent
func (n NullFloat) String() string {
	if !n.Valid {
		return "nan"
	}
	return strconv.FormatFloat(n.Float64, 'f', 3, 64)
}

// NewNullFloats wraps every value of a slice
func NewNullFloats(x []float64) []NullFloat {
	out := make([]NullFloat, len(x))
	for i, v := range x {
		out[i] = NewNullFloat(v)
	}
	return out
}
