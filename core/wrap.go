package core

import "golang.org/x/exp/constraints"

// Elapsed returns how far a wrapping counter moved from "from" to "to".
// A modulus of zero means the counter wraps at the natural width of T.
func Elapsed[T constraints.Unsigned](from, to, modulus T) T {
	if modulus == 0 || to >= from {
		return to - from
	}
	return modulus - from + to
}

// Advance adds n to v on a counter that wraps at modulus (zero: natural width)
func Advance[T constraints.Unsigned](v, n, modulus T) T {
	if modulus == 0 {
		return v + n
	}
	n %= modulus
	if v >= modulus-n {
		return v - (modulus - n)
	}
	return v + n
}
