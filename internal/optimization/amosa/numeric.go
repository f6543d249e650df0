package amosa

import (
	"math"

	"github.com/copyleftdev/amosa/internal/optimization"
)

// sigmoid is 1 / (1 + exp(-z)), evaluated so that exp never overflows.
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// dominationAmount is the product over objectives of |a.f - b.f| / range.
// A zero range contributes a factor of 0.
func dominationAmount(a, b *optimization.Solution, fitnessRange []float64) float64 {
	amount := 1.0
	for i, r := range fitnessRange {
		if r == 0 {
			return 0
		}
		amount *= math.Abs(a.F[i]-b.F[i]) / r
	}
	return amount
}

// meanDominationAmount averages the amounts by which each of dominators
// dominates y. It is 0 for no dominators.
func meanDominationAmount(dominators []*optimization.Solution, y *optimization.Solution, fitnessRange []float64) float64 {
	if len(dominators) == 0 {
		return 0
	}
	sum := 0.0
	for _, d := range dominators {
		sum += dominationAmount(d, y, fitnessRange)
	}
	return sum / float64(len(dominators))
}

// fitnessRange returns max - min of every objective over members, x and y.
func fitnessRange(members []*optimization.Solution, x, y *optimization.Solution) []float64 {
	lo := append([]float64(nil), x.F...)
	hi := append([]float64(nil), x.F...)
	extend := func(f []float64) {
		for i, v := range f {
			lo[i] = math.Min(lo[i], v)
			hi[i] = math.Max(hi[i], v)
		}
	}
	extend(y.F)
	for _, s := range members {
		extend(s.F)
	}
	for i := range hi {
		hi[i] -= lo[i]
	}
	return hi
}
