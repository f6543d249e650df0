package optimization

import (
	"context"
	"time"
)

// Optimizer defines the interface for multi-objective optimization algorithms
type Optimizer interface {
	// Minimize runs the optimization process against the given problem
	Minimize(ctx context.Context, problem Problem) (*Result, error)

	// ParetoFront returns the objective vectors of the final archive
	ParetoFront() [][]float64

	// ParetoSet returns the decision vectors of the final archive
	ParetoSet() [][]float64

	// ConstraintViolation returns the constraint vectors of the final archive
	ConstraintViolation() [][]float64

	// Stop gracefully stops the optimization process
	Stop()
}

// Result contains the result of an optimization run
type Result struct {
	// Archive holds the final non-dominated solutions
	Archive []*Solution

	// Evaluations is the number of Problem.Evaluate calls performed
	Evaluations int

	// Iterations is the number of outer (temperature) iterations completed
	Iterations int

	// FinalTemperature is the temperature when the annealing loop exited
	FinalTemperature float64

	// Converged reports whether the early-termination criterion stopped the run
	Converged bool

	// Duration is the wall-clock time of the run
	Duration time.Duration
}

// ParetoFront returns the objective vectors of the result archive.
func (r *Result) ParetoFront() [][]float64 {
	return collect(r.Archive, func(s *Solution) []float64 { return s.F })
}

// ParetoSet returns the decision vectors of the result archive.
func (r *Result) ParetoSet() [][]float64 {
	return collect(r.Archive, func(s *Solution) []float64 { return s.X })
}

// ConstraintViolation returns the constraint vectors of the result archive.
// Entries are nil for unconstrained problems.
func (r *Result) ConstraintViolation() [][]float64 {
	return collect(r.Archive, func(s *Solution) []float64 { return s.G })
}

func collect(archive []*Solution, field func(*Solution) []float64) [][]float64 {
	out := make([][]float64, len(archive))
	for i, s := range archive {
		v := field(s)
		if v != nil {
			out[i] = append([]float64(nil), v...)
		}
	}
	return out
}
