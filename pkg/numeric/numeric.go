// Package numeric abstracts the scalar types used for coordinates and
// distances throughout the clustering and search packages.
package numeric

import "golang.org/x/exp/constraints"

// Number is any scalar that can hold a coordinate or a distance value:
// every built-in integer and floating-point type. Arithmetic and ordering
// operators are usable directly on values of a type parameter constrained
// by Number.
type Number interface {
	constraints.Integer | constraints.Float
}

// AsFloat64 converts a Number to float64, the common currency for
// statistics (mean, standard deviation, local fractal dimension) that mix
// distances of different concrete types.
func AsFloat64[T Number](v T) float64 {
	return float64(v)
}

// FromFloat64 converts a float64 back to a Number type, truncating for
// integer types. Used by algorithms (e.g. adaptive-radius KNN) that do
// their intermediate arithmetic in float64 regardless of the concrete
// distance type.
func FromFloat64[T Number](v float64) T {
	return T(v)
}

// Zero returns the zero value of a Number type.
func Zero[T Number]() T {
	var z T
	return z
}

// One returns the multiplicative identity of a Number type.
func One[T Number]() T {
	var one T = 1
	return one
}
