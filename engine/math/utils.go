package math

import "golang.org/x/exp/constraints"

// Clamp returns f limited to the range [low, high].
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Saturate clamps f to [0, 1], the range a vertex weight can take.
func Saturate[T constraints.Float](f T) T {
	return Clamp(f, 0, 1)
}
