package inventory

import "math"

// ExceedsCapacity indica si sumar quantity a onHand desborda int64.
func ExceedsCapacity(onHand, quantity int64) bool {
	return onHand > 0 && quantity > math.MaxInt64-onHand
}

// addQty suma cantidades saturando en los límites de int64.
func addQty(a, b int64) int64 {
	s := a + b
	switch {
	case b > 0 && s < a:
		return math.MaxInt64
	case b < 0 && s > a:
		return math.MinInt64
	}
	return s
}
