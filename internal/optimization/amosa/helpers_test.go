package amosa

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/amosa/internal/optimization"
)

// funcProblem adapts a closure to optimization.Problem.
type funcProblem struct {
	optimization.Spec
	eval func(x []float64) ([]float64, []float64, error)
}

func (p funcProblem) Evaluate(x []float64) ([]float64, []float64, error) { return p.eval(x) }

// lineProblem has f = [x, 10 - x] on [0, 10]: every pair of points is
// mutually non-dominated.
func lineProblem() funcProblem {
	return funcProblem{
		Spec: optimization.Spec{
			VarTypes:   []optimization.VariableType{optimization.Real},
			Lower:      []float64{0},
			Upper:      []float64{10},
			Objectives: 2,
		},
		eval: func(x []float64) ([]float64, []float64, error) {
			return []float64{x[0], 10 - x[0]}, nil, nil
		},
	}
}

// mixedProblem has two integer and two real variables, one of them fixed.
func mixedProblem() funcProblem {
	return funcProblem{
		Spec: optimization.Spec{
			VarTypes: []optimization.VariableType{
				optimization.Integer, optimization.Integer, optimization.Real, optimization.Real,
			},
			Lower:      []float64{0, -5, -1, 2},
			Upper:      []float64{7, 5, 1, 2},
			Objectives: 2,
		},
		eval: func(x []float64) ([]float64, []float64, error) {
			return []float64{x[0] + x[2]*x[2], x[1]*x[1] - x[2]}, nil, nil
		},
	}
}

// sol builds a solution without a problem.
func sol(x, f, g []float64) *optimization.Solution {
	return &optimization.Solution{X: x, F: f, G: g}
}

// testConfig returns a small, fast, seeded configuration.
func testConfig() Config {
	return Config{
		ArchiveHardLimit:       10,
		ArchiveSoftLimit:       20,
		ArchiveGamma:           1,
		HillClimbingIterations: 5,
		InitialTemperature:     1,
		FinalTemperature:       0.1,
		CoolingFactor:          0.5,
		AnnealingIterations:    50,
		Seed:                   42,
	}
}

// newRun returns an optimizer prepared for p as Minimize would prepare it.
func newRun(t *testing.T, cfg Config, p optimization.Problem) *Optimizer {
	t.Helper()
	o, err := NewOptimizer(cfg)
	require.NoError(t, err)
	o.reset(p)
	return o
}

// assertNonDominated fails if any member dominates another.
func assertNonDominated(t *testing.T, members []*optimization.Solution) {
	t.Helper()
	for i, a := range members {
		for j, b := range members {
			if i != j && optimization.Dominates(a, b) {
				t.Fatalf("member %v dominates member %v", a, b)
			}
		}
	}
}

// assertWithinBounds checks every decision vector against p's bounds and
// the integrality of integer variables.
func assertWithinBounds(t *testing.T, p optimization.Problem, x []float64) {
	t.Helper()
	lower, upper, types := p.LowerBounds(), p.UpperBounds(), p.Types()
	for i, v := range x {
		if v < lower[i] || v > upper[i] {
			t.Fatalf("x[%d] = %v out of [%v, %v]", i, v, lower[i], upper[i])
		}
		if types[i] == optimization.Integer && v != math.Trunc(v) {
			t.Fatalf("integer x[%d] = %v is not whole", i, v)
		}
	}
}
