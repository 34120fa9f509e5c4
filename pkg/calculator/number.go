package calculator

import (
	"encoding/json"
	"math"
	"strconv"
)

// Number is the result of a one-shot calculation.
// Computation is always float64; Integral records whether the value has no
// fractional part so callers can render 5 instead of 5.0.
type Number struct {
	Value    float64
	Integral bool
}

// NewNumber wraps v and derives the Integral flag
func NewNumber(v float64) Number {
	return Number{
		Value:    v,
		Integral: !math.IsInf(v, 0) && !math.IsNaN(v) && v == math.Floor(v),
	}
}

// Float returns the float64 value
func (n Number) Float() float64 {
	return n.Value
}

// Int returns the value truncated to int64
func (n Number) Int() int64 {
	return int64(n.Value)
}

// String renders integral values without a fractional part
func (n Number) String() string {
	if n.Integral && math.Abs(n.Value) < 1e15 {
		return strconv.FormatInt(int64(n.Value), 10)
	}
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

// MarshalJSON emits integral values as JSON integers
func (n Number) MarshalJSON() ([]byte, error) {
	if math.IsInf(n.Value, 0) || math.IsNaN(n.Value) {
		return json.Marshal(n.String())
	}
	return []byte(n.String()), nil
}
