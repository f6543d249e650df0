package optimization

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Solution is a decision vector together with the objective and constraint
// values it evaluated to. G is nil when the problem has no constraints.
type Solution struct {
	X []float64 `json:"x"`
	F []float64 `json:"f"`
	G []float64 `json:"g,omitempty"`
}

// NewSolution evaluates x against the problem and returns the resulting solution.
// The decision vector is copied.
func NewSolution(p Problem, x []float64) (*Solution, error) {
	s := &Solution{X: append([]float64(nil), x...)}
	if err := s.evaluate(p); err != nil {
		return nil, err
	}
	return s, nil
}

// evaluate derives F and G from the current X.
func (s *Solution) evaluate(p Problem) error {
	f, g, err := p.Evaluate(s.X)
	if err != nil {
		return WrapErrorf(fmt.Errorf("%w: %w", ErrEvaluation, err), "evaluating %v", s.X).
			WithOperation("evaluate").WithComponent("problem")
	}
	if len(f) != p.NumObjectives() {
		return WrapErrorf(ErrEvaluation, "expected %d objective values, got %d", p.NumObjectives(), len(f)).
			WithOperation("evaluate").WithComponent("problem")
	}
	if p.NumConstraints() > 0 {
		if len(g) != p.NumConstraints() {
			return WrapErrorf(ErrEvaluation, "expected %d constraint values, got %d", p.NumConstraints(), len(g)).
				WithOperation("evaluate").WithComponent("problem")
		}
		s.G = append([]float64(nil), g...)
	} else {
		s.G = nil
	}
	s.F = append([]float64(nil), f...)
	return nil
}

// Moved returns a copy of s with dimension d shifted by step and re-evaluated.
func (s *Solution) Moved(p Problem, d int, step float64) (*Solution, error) {
	z := &Solution{X: append([]float64(nil), s.X...)}
	z.X[d] += step
	if err := z.evaluate(p); err != nil {
		return nil, err
	}
	return z, nil
}

// Feasible reports whether every constraint is satisfied.
// Unconstrained solutions are always feasible.
func (s *Solution) Feasible() bool {
	for _, g := range s.G {
		if g > 0 {
			return false
		}
	}
	return true
}

// IsTheSame reports whether a and b have element-wise equal decision vectors.
func IsTheSame(a, b *Solution) bool {
	return len(a.X) == len(b.X) && floats.Equal(a.X, b.X)
}

func (s *Solution) String() string {
	if s.G == nil {
		return fmt.Sprintf("{x: %v, f: %v}", s.X, s.F)
	}
	return fmt.Sprintf("{x: %v, f: %v, g: %v}", s.X, s.F, s.G)
}
