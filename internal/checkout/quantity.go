package checkout

import "storefront-gateway/internal/model"

// NextCount applies a +1/-1 stepper delta to a cart line count.
// Decrementing below one is blocked: removal is a deliberate action, not
// a side effect of tapping minus once too often. There is no client-side
// upper bound; upstream enforces stock.
func NextCount(current, delta int) (int, bool) {
	next := current + delta
	if next < 1 {
		return current, false
	}
	return next, true
}

// CanDecrement reports whether the line's stepper minus button is active.
func CanDecrement(line model.CartLine) bool {
	return line.Count > 1
}
