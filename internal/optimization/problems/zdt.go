package problems

import (
	"fmt"
	"math"

	"github.com/copyleftdev/amosa/internal/optimization"
)

// ZDT1 has a convex Pareto front f2 = 1 - sqrt(f1), reached when every
// variable but the first is 0.
type ZDT1 struct {
	optimization.Spec
}

func NewZDT1(n int) (*ZDT1, error) {
	if n < 2 {
		return nil, problemError("new", fmt.Sprintf("zdt1 needs at least 2 variables, got %d", n))
	}
	return &ZDT1{Spec: realSpec(n, 0, 1, 2, 0)}, nil
}

func (p *ZDT1) Evaluate(x []float64) ([]float64, []float64, error) {
	g := zdtG(x)
	return []float64{x[0], g * (1 - math.Sqrt(x[0]/g))}, nil, nil
}

// ZDT2 has a non-convex Pareto front f2 = 1 - f1^2.
type ZDT2 struct {
	optimization.Spec
}

func NewZDT2(n int) (*ZDT2, error) {
	if n < 2 {
		return nil, problemError("new", fmt.Sprintf("zdt2 needs at least 2 variables, got %d", n))
	}
	return &ZDT2{Spec: realSpec(n, 0, 1, 2, 0)}, nil
}

func (p *ZDT2) Evaluate(x []float64) ([]float64, []float64, error) {
	g := zdtG(x)
	return []float64{x[0], g * (1 - math.Pow(x[0]/g, 2))}, nil, nil
}

func zdtG(x []float64) float64 {
	g := 1.0
	for i := 1; i < len(x); i++ {
		g += 9 * x[i] / float64(len(x)-1)
	}
	return g
}
