package game

import "strings"

// Indicator is one of the named lights the player reacts to.
type Indicator string

// The reference indicator set: the three keyboard lock lights.
const (
	NumLock    Indicator = "Num_Lock"
	CapsLock   Indicator = "Caps_Lock"
	ScrollLock Indicator = "Scroll_Lock"
)

// Directional inputs accepted by the indicators.
const (
	ArrowLeft  = "ArrowLeft"
	ArrowDown  = "ArrowDown"
	ArrowRight = "ArrowRight"
)

// Indicators lists the indicators in display order.
var Indicators = []Indicator{NumLock, CapsLock, ScrollLock}

var indicatorKeys = map[Indicator]string{
	NumLock:    ArrowLeft,
	CapsLock:   ArrowDown,
	ScrollLock: ArrowRight,
}

// Key returns the directional input the indicator accepts besides a click on itself.
func (i Indicator) Key() string {
	return indicatorKeys[i]
}

// KeyLabel is the upper-cased direction shown in prompts, e.g. "LEFT".
func (i Indicator) KeyLabel() string {
	return strings.ToUpper(strings.TrimPrefix(i.Key(), "Arrow"))
}

// Accepts reports whether source resolves this indicator: its mapped key or
// its own name (a click on the light).
func (i Indicator) Accepts(source string) bool {
	if i == "" {
		return false
	}
	return source == string(i) || source == i.Key()
}
