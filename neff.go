package particlefilter

import "gonum.org/v1/gonum/floats"

// Neff returns the effective sample size 1 / sum(w^2) of normalised weights.
// It is N for uniform weights and 1 when a single particle holds all the mass.
func Neff(weights []float64) float64 {
	return 1 / floats.Dot(weights, weights)
}
