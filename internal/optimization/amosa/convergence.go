package amosa

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// convergenceTracker follows how the normalized Pareto front moves between
// successive temperatures.
type convergenceTracker struct {
	ideal    []float64
	nadir    []float64
	previous [][]float64
	phi      []float64
}

// update records the current front and returns the relative drift of the
// nadir and ideal points and phi, the mean distance from each point of the
// previous normalized front to its nearest neighbour in the current one.
// The first call, or a call on an empty front, returns +Inf for all three.
func (c *convergenceTracker) update(front [][]float64) (deltaNadir, deltaIdeal, phi float64) {
	inf := math.Inf(1)
	if len(front) == 0 {
		c.phi = append(c.phi, inf)
		return inf, inf, inf
	}

	ideal, nadir := bounds(front)
	if c.ideal == nil {
		c.ideal, c.nadir = ideal, nadir
		c.previous = normalize(front, ideal, nadir)
		c.phi = append(c.phi, inf)
		return inf, inf, inf
	}

	deltaNadir, deltaIdeal = math.Inf(-1), math.Inf(-1)
	for i := range nadir {
		span := c.nadir[i] - ideal[i]
		deltaNadir = math.Max(deltaNadir, ratio(c.nadir[i]-nadir[i], span))
		deltaIdeal = math.Max(deltaIdeal, ratio(c.ideal[i]-ideal[i], span))
	}

	current := normalize(front, c.ideal, c.nadir)
	for _, p := range c.previous {
		nearest := inf
		for _, q := range current {
			nearest = math.Min(nearest, floats.Distance(p, q, 2))
		}
		phi += nearest
	}
	phi /= float64(len(c.previous))

	c.ideal, c.nadir, c.previous = ideal, nadir, current
	c.phi = append(c.phi, phi)
	return deltaNadir, deltaIdeal, phi
}

// converged reports whether the last window phi values are all zero.
func (c *convergenceTracker) converged(window int) bool {
	if window <= 0 || len(c.phi) < window {
		return false
	}
	for _, v := range c.phi[len(c.phi)-window:] {
		if v != 0 {
			return false
		}
	}
	return true
}

// bounds returns the component-wise minimum and maximum of the vectors.
func bounds(front [][]float64) (ideal, nadir []float64) {
	ideal = append([]float64(nil), front[0]...)
	nadir = append([]float64(nil), front[0]...)
	for _, f := range front[1:] {
		for i, v := range f {
			ideal[i] = math.Min(ideal[i], v)
			nadir[i] = math.Max(nadir[i], v)
		}
	}
	return ideal, nadir
}

// normalize maps every vector into the box spanned by ideal and nadir.
// Degenerate objectives map to 0.
func normalize(front [][]float64, ideal, nadir []float64) [][]float64 {
	out := make([][]float64, len(front))
	for k, f := range front {
		p := make([]float64, len(f))
		for i, v := range f {
			p[i] = ratio(v-ideal[i], nadir[i]-ideal[i])
		}
		out[k] = p
	}
	return out
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
