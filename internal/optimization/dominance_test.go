package optimization

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sol(f []float64, g []float64) *Solution {
	return &Solution{X: append([]float64(nil), f...), F: f, G: g}
}

func TestDominatesUnconstrained(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want bool
	}{
		{"strictly better everywhere", []float64{1, 1}, []float64{2, 2}, true},
		{"better in one equal in other", []float64{1, 2}, []float64{2, 2}, true},
		{"equal vectors", []float64{2, 2}, []float64{2, 2}, false},
		{"trade-off", []float64{1, 3}, []float64{2, 2}, false},
		{"worse", []float64{3, 3}, []float64{2, 2}, false},
		{"single objective", []float64{-1}, []float64{0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Dominates(sol(tt.a, nil), sol(tt.b, nil)))
		})
	}
}

func TestDominatesIrreflexive(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		s := sol([]float64{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}, nil)
		assert.False(t, Dominates(s, s))

		c := sol([]float64{rng.NormFloat64()}, []float64{rng.NormFloat64(), rng.NormFloat64()})
		assert.False(t, Dominates(c, c))
	}
}

func TestDominatesFeasibilityPriority(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		feasible := sol([]float64{rng.Float64() * 100}, []float64{-rng.Float64(), 0})
		infeasible := sol([]float64{-rng.Float64() * 100}, []float64{-1, rng.Float64() + 1e-9})

		require.True(t, feasible.Feasible())
		require.False(t, infeasible.Feasible())
		assert.True(t, Dominates(feasible, infeasible), "feasible must dominate infeasible")
		assert.False(t, Dominates(infeasible, feasible), "infeasible must never dominate feasible")
	}
}

func TestDominatesConstrained(t *testing.T) {
	tests := []struct {
		name string
		a, b *Solution
		want bool
	}{
		{
			name: "both infeasible lower violation wins",
			a:    sol([]float64{10}, []float64{1, 1}),
			b:    sol([]float64{0}, []float64{2, 1}),
			want: true,
		},
		{
			name: "both infeasible trade-off in violations",
			a:    sol([]float64{0}, []float64{1, 3}),
			b:    sol([]float64{0}, []float64{2, 1}),
			want: false,
		},
		{
			name: "both feasible falls back to objectives",
			a:    sol([]float64{1, 1}, []float64{0}),
			b:    sol([]float64{1, 2}, []float64{-5}),
			want: true,
		},
		{
			name: "both feasible ignores constraint slack",
			a:    sol([]float64{2}, []float64{-10}),
			b:    sol([]float64{1}, []float64{0}),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Dominates(tt.a, tt.b))
		})
	}
}

// thresholdProblem has f = [x] and g = [x - 5].
type thresholdProblem struct{ Spec }

func (thresholdProblem) Evaluate(x []float64) ([]float64, []float64, error) {
	return []float64{x[0]}, []float64{x[0] - 5}, nil
}

func TestDominatesThresholdScenario(t *testing.T) {
	p := thresholdProblem{Spec{
		VarTypes:    []VariableType{Real},
		Lower:       []float64{0},
		Upper:       []float64{10},
		Objectives:  1,
		Constraints: 1,
	}}

	feasible, err := NewSolution(p, []float64{3})
	require.NoError(t, err)
	infeasible, err := NewSolution(p, []float64{7})
	require.NoError(t, err)

	assert.True(t, Dominates(feasible, infeasible))
	assert.False(t, Dominates(infeasible, feasible))

	// Objective values do not matter once feasibility differs.
	infeasible.F = []float64{-1000}
	assert.True(t, Dominates(feasible, infeasible))
}

func TestClassify(t *testing.T) {
	a := sol([]float64{1, 1}, nil)
	b := sol([]float64{2, 2}, nil)
	c := sol([]float64{0, 3}, nil)

	r, err := Classify(a, b)
	require.NoError(t, err)
	assert.Equal(t, XDominatesY, r)

	r, err = Classify(b, a)
	require.NoError(t, err)
	assert.Equal(t, YDominatesX, r)

	r, err = Classify(a, c)
	require.NoError(t, err)
	assert.Equal(t, NonDominated, r)

	r, err = Classify(a, a)
	require.NoError(t, err)
	assert.Equal(t, NonDominated, r)
}

func TestDominanceViolationUnwrap(t *testing.T) {
	v := &DominanceViolation{
		X:           sol([]float64{1}, nil),
		Y:           sol([]float64{2}, nil),
		Archive:     []*Solution{sol([]float64{0}, nil)},
		XDominatesY: true,
		YDominatesX: true,
	}
	assert.True(t, errors.Is(v, ErrInvariantViolation))
	assert.Contains(t, v.Error(), "archive:")
	assert.Contains(t, v.Error(), "x<y=true y<x=true")
}

func TestIsTheSame(t *testing.T) {
	a := &Solution{X: []float64{1, 2, 3}}
	b := &Solution{X: []float64{1, 2, 3}, F: []float64{9}}
	c := &Solution{X: []float64{1, 2, 4}}
	d := &Solution{X: []float64{1, 2}}

	assert.True(t, IsTheSame(a, b))
	assert.False(t, IsTheSame(a, c))
	assert.False(t, IsTheSame(a, d))
}
