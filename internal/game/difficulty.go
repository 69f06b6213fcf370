package game

// InitialWindowMs is the reaction window a fresh or reset session starts with.
const InitialWindowMs = 1000

// NextWindow tightens the reaction window after a resolved round: big steps
// while the window is generous, single milliseconds near the floor of 1.
func NextWindow(current int) int {
	var next int
	switch {
	case current > 100:
		next = current - 5
	case current > 50:
		next = current - 2
	case current > 1:
		next = current - 1
	default:
		next = 1
	}
	if next < 1 {
		next = 1
	}
	return next
}
