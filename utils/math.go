package utils

import (
	"gonum.org/v1/gonum/floats"
)

// UnitVector returns the direction of n and its magnitude. A zero vector
// returns a zero direction and zero magnitude.
func UnitVector(n []float64) (unit []float64, mag float64) {
	unit = make([]float64, len(n))
	mag = floats.Norm(n, 2)
	if mag == 0 {
		return
	}
	for i := range n {
		unit[i] = n[i] / mag
	}
	return
}
