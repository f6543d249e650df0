package amosa

import (
	"math"

	"github.com/copyleftdev/amosa/internal/optimization"
)

// direction picks a variable index and a sign. When prev is a valid index
// and more than one variable exists, prev is never picked again.
func (o *Optimizer) direction(prev int) (d int, up bool) {
	n := o.problem.NumVariables()
	up = o.rng.Float64() > 0.5
	d = o.rng.Intn(n)
	if prev >= 0 && n > 1 {
		for d == prev {
			d = o.rng.Intn(n)
		}
	}
	return d, up
}

// step draws a nonzero move for dimension d of x toward the chosen bound.
// It returns false when x already sits on that bound.
func (o *Optimizer) step(x []float64, d int, up bool) (float64, bool) {
	lower, upper := o.problem.LowerBounds()[d], o.problem.UpperBounds()[d]
	room := upper - x[d]
	if !up {
		room = lower - x[d]
	}
	if room == 0 {
		return 0, false
	}

	if o.problem.Types()[d] == optimization.Integer {
		k := int(math.Abs(math.Round(room)))
		if k < 1 {
			return 0, false
		}
		s := float64(1 + o.rng.Intn(k))
		if !up {
			s = -s
		}
		return s, true
	}

	for {
		target := math.Min(upper, math.Max(lower, x[d]+o.rng.Float64()*room))
		if s := target - x[d]; s != 0 {
			return s, true
		}
	}
}

// randomPerturbation returns a neighbour of s differing in exactly one
// dimension, re-evaluated against the problem.
func (o *Optimizer) randomPerturbation(s *optimization.Solution) (*optimization.Solution, error) {
	for {
		d, up := o.direction(-1)
		step, ok := o.step(s.X, d, up)
		if !ok {
			continue
		}
		return o.move(s, d, step)
	}
}

// randomPoint draws a uniformly random point inside the bounds. Integer
// variables are drawn from the inclusive range.
func (o *Optimizer) randomPoint() (*optimization.Solution, error) {
	types := o.problem.Types()
	lower, upper := o.problem.LowerBounds(), o.problem.UpperBounds()
	x := make([]float64, len(types))
	for i, t := range types {
		switch {
		case lower[i] == upper[i]:
			x[i] = lower[i]
		case t == optimization.Integer:
			x[i] = lower[i] + float64(o.rng.Intn(int(upper[i]-lower[i])+1))
		default:
			x[i] = lower[i] + o.rng.Float64()*(upper[i]-lower[i])
		}
	}
	return o.evaluate(x)
}
