package problems

import (
	"github.com/copyleftdev/amosa/internal/optimization"
)

// Line has one real variable x in [0, 10] and objectives [x, 10 - x].
// Every point is Pareto optimal.
type Line struct {
	optimization.Spec
}

func NewLine() *Line {
	return &Line{Spec: realSpec(1, 0, 10, 2, 0)}
}

func (p *Line) Evaluate(x []float64) ([]float64, []float64, error) {
	return []float64{x[0], 10 - x[0]}, nil, nil
}

// Threshold has one real variable x in [0, 10], the objective [x] and the
// constraint x - threshold.
type Threshold struct {
	optimization.Spec
	threshold float64
}

func NewThreshold(threshold float64) *Threshold {
	return &Threshold{Spec: realSpec(1, 0, 10, 1, 1), threshold: threshold}
}

func (p *Threshold) Evaluate(x []float64) ([]float64, []float64, error) {
	return []float64{x[0]}, []float64{x[0] - p.threshold}, nil
}

// BinhKorn is the constrained two-objective problem of Binh and Korn.
type BinhKorn struct {
	optimization.Spec
}

func NewBinhKorn() *BinhKorn {
	return &BinhKorn{Spec: optimization.Spec{
		VarTypes:    []optimization.VariableType{optimization.Real, optimization.Real},
		Lower:       []float64{0, 0},
		Upper:       []float64{5, 3},
		Objectives:  2,
		Constraints: 2,
	}}
}

func (p *BinhKorn) Evaluate(v []float64) ([]float64, []float64, error) {
	x, y := v[0], v[1]
	f := []float64{
		4*x*x + 4*y*y,
		(x-5)*(x-5) + (y-5)*(y-5),
	}
	g := []float64{
		(x-5)*(x-5) + y*y - 25,
		7.7 - (x-8)*(x-8) - (y+3)*(y+3),
	}
	return f, g, nil
}
