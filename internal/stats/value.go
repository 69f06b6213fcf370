package stats

import (
	"fmt"
	"math"
	"strconv"
)

// UnavailableText is the placeholder rendered for statistics undefined on the
// data seen so far.
const UnavailableText = "N/A"

// Value is a statistic that may be undefined. The zero Value is unavailable,
// which is distinct from a defined 0.
type Value struct {
	v  float64
	ok bool
}

// Of wraps a defined statistic.
func Of(v float64) Value {
	return Value{v: v, ok: true}
}

// Unavailable returns the undefined statistic.
func Unavailable() Value {
	return Value{}
}

// Get returns the raw value and whether it is defined.
func (v Value) Get() (float64, bool) {
	return v.v, v.ok
}

// Available reports whether the statistic is defined.
func (v Value) Available() bool {
	return v.ok
}

// Rounded returns the value rounded to two decimals, and whether it is defined.
func (v Value) Rounded() (float64, bool) {
	if !v.ok {
		return 0, false
	}
	return round2(v.v), true
}

// String renders the value with two decimals, or the placeholder.
func (v Value) String() string {
	if !v.ok {
		return UnavailableText
	}
	return strconv.FormatFloat(v.v, 'f', 2, 64)
}

// Percent renders the value with two decimals and a percent sign, or the placeholder.
func (v Value) Percent() string {
	if !v.ok {
		return UnavailableText
	}
	return v.String() + "%"
}

// MarshalJSON encodes an unavailable value as null and a defined one rounded
// to two decimals.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	if math.IsNaN(v.v) || math.IsInf(v.v, 0) {
		return nil, fmt.Errorf("stats: cannot encode %v", v.v)
	}
	return strconv.AppendFloat(nil, round2(v.v), 'f', -1, 64), nil
}

// Ratio is correct responses over prompts shown.
type Ratio struct {
	Correct int   `json:"correct"`
	Prompts int   `json:"prompts"`
	Pct     Value `json:"pct"`
}

// String renders "c/p (pct%)", or the placeholder when no prompt was shown.
func (r Ratio) String() string {
	if !r.Pct.Available() {
		return UnavailableText
	}
	return fmt.Sprintf("%d/%d (%s%%)", r.Correct, r.Prompts, r.Pct)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
