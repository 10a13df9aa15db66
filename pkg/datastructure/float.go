package datastructure

import (
	"math"
)

const (
	EPS = 1e-9
)

// Eq is an equal operator with tolerance EPS. two infinities of the same sign are equal.
func Eq(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= EPS
}

// less than operator
func Lt(a, b float64) bool {
	if math.IsInf(b, 1) {
		return !math.IsInf(a, 1)
	}
	return a+EPS < b
}
