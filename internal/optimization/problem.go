package optimization

import (
	"fmt"
	"math"
)

// VariableType tells whether a decision variable takes integer or real values.
type VariableType int

const (
	// Integer variables hold whole numbers stored as float64.
	Integer VariableType = iota
	// Real variables hold arbitrary values within their bounds.
	Real
)

func (t VariableType) String() string {
	switch t {
	case Integer:
		return "INTEGER"
	case Real:
		return "REAL"
	default:
		return fmt.Sprintf("VariableType(%d)", int(t))
	}
}

// Problem is the contract between the optimizer and the system being optimized.
// Evaluate is treated as a synchronous, possibly slow, blocking call.
type Problem interface {
	// NumVariables returns the size of the decision vector
	NumVariables() int

	// Types returns the type of each decision variable
	Types() []VariableType

	// LowerBounds returns the per-variable lower bounds
	LowerBounds() []float64

	// UpperBounds returns the per-variable upper bounds
	UpperBounds() []float64

	// NumObjectives returns the number of objectives, all to be minimized
	NumObjectives() int

	// NumConstraints returns the number of constraints; 0 means unconstrained
	NumConstraints() int

	// Evaluate returns the objective values f and the constraint values g
	// for the decision vector x. A constraint value <= 0 is satisfied.
	Evaluate(x []float64) (f, g []float64, err error)
}

// Spec is a plain description of a problem's shape. Concrete problems embed
// it to satisfy every Problem method but Evaluate.
type Spec struct {
	VarTypes    []VariableType
	Lower       []float64
	Upper       []float64
	Objectives  int
	Constraints int
}

func (s Spec) NumVariables() int { return len(s.VarTypes) }
func (s Spec) Types() []VariableType { return s.VarTypes }
func (s Spec) LowerBounds() []float64 { return s.Lower }
func (s Spec) UpperBounds() []float64 { return s.Upper }
func (s Spec) NumObjectives() int { return s.Objectives }
func (s Spec) NumConstraints() int { return s.Constraints }

// ValidateProblem checks the structural invariants of a problem before a run.
func ValidateProblem(p Problem) error {
	if p == nil {
		return invalidProblem("problem is nil")
	}
	n := p.NumVariables()
	if n < 1 {
		return invalidProblem("number of variables must be at least 1")
	}
	types, lower, upper := p.Types(), p.LowerBounds(), p.UpperBounds()
	if len(types) != n || len(lower) != n || len(upper) != n {
		return invalidProblem(fmt.Sprintf(
			"types and bounds must have one entry per variable (variables=%d, types=%d, lower=%d, upper=%d)",
			n, len(types), len(lower), len(upper)))
	}
	free := false
	for i := 0; i < n; i++ {
		if math.IsNaN(lower[i]) || math.IsNaN(upper[i]) || math.IsInf(lower[i], 0) || math.IsInf(upper[i], 0) {
			return invalidProblem(fmt.Sprintf("bounds of variable %d must be finite", i))
		}
		if lower[i] > upper[i] {
			return invalidProblem(fmt.Sprintf("lower bound %v exceeds upper bound %v for variable %d", lower[i], upper[i], i))
		}
		if types[i] == Integer && (lower[i] != math.Trunc(lower[i]) || upper[i] != math.Trunc(upper[i])) {
			return invalidProblem(fmt.Sprintf("integer variable %d has non-integer bounds", i))
		}
		if lower[i] < upper[i] {
			free = true
		}
	}
	if !free {
		return invalidProblem("at least one variable must have lower bound < upper bound")
	}
	if p.NumObjectives() < 1 {
		return invalidProblem("number of objectives must be at least 1")
	}
	if p.NumConstraints() < 0 {
		return invalidProblem("number of constraints must not be negative")
	}
	return nil
}

func invalidProblem(msg string) error {
	return WrapError(ErrInvalidProblem, msg).WithOperation("validate").WithComponent("problem")
}
