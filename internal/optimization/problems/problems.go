// Package problems provides reference problems for the AMOSA optimizer and
// a registry to build them by name.
package problems

import (
	"fmt"
	"sort"

	"github.com/copyleftdev/amosa/internal/optimization"
)

// Options parameterizes problem construction. Fields a problem does not use
// are ignored.
type Options struct {
	// Variables is the decision vector size of the ZDT problems (default 30)
	Variables int `json:"variables,omitempty" yaml:"variables,omitempty"`

	// Threshold is the constraint threshold of Threshold and Catalog
	Threshold *float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`

	// Catalog is the path of the YAML catalog file for the Catalog problem
	Catalog string `json:"catalog,omitempty" yaml:"catalog,omitempty"`

	// Workers bounds the goroutines evaluating Catalog samples (default 1)
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty"`
}

type constructor func(opts Options) (optimization.Problem, error)

var registry = map[string]constructor{
	"binh-korn": func(Options) (optimization.Problem, error) { return NewBinhKorn(), nil },
	"catalog":   newCatalogProblem,
	"line":      func(Options) (optimization.Problem, error) { return NewLine(), nil },
	"threshold": newThresholdProblem,
	"zdt1":      newZDT1Problem,
	"zdt2":      newZDT2Problem,
}

// New builds the problem registered under name.
func New(name string, opts Options) (optimization.Problem, error) {
	build, ok := registry[name]
	if !ok {
		return nil, problemError("new", fmt.Sprintf("unknown problem %q", name))
	}
	return build(opts)
}

// Names returns the registered problem names in order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newThresholdProblem(opts Options) (optimization.Problem, error) {
	if opts.Threshold != nil {
		return NewThreshold(*opts.Threshold), nil
	}
	return NewThreshold(5), nil
}

func newCatalogProblem(opts Options) (optimization.Problem, error) {
	if opts.Catalog == "" {
		return nil, problemError("new", "catalog problem requires a catalog file")
	}
	cfg, err := LoadCatalog(opts.Catalog)
	if err != nil {
		return nil, err
	}
	if opts.Threshold != nil {
		cfg.Threshold = *opts.Threshold
	}
	c, err := NewCatalog(cfg, opts.Workers)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func newZDT1Problem(opts Options) (optimization.Problem, error) {
	p, err := NewZDT1(variables(opts))
	if err != nil {
		return nil, err
	}
	return p, nil
}

func newZDT2Problem(opts Options) (optimization.Problem, error) {
	p, err := NewZDT2(variables(opts))
	if err != nil {
		return nil, err
	}
	return p, nil
}

func variables(opts Options) int {
	if opts.Variables == 0 {
		return 30
	}
	return opts.Variables
}

func problemError(op, msg string) error {
	return optimization.WrapError(optimization.ErrInvalidProblem, msg).
		WithOperation(op).WithComponent("problems")
}

func realSpec(n int, lower, upper float64, objectives, constraints int) optimization.Spec {
	s := optimization.Spec{
		VarTypes:    make([]optimization.VariableType, n),
		Lower:       make([]float64, n),
		Upper:       make([]float64, n),
		Objectives:  objectives,
		Constraints: constraints,
	}
	for i := 0; i < n; i++ {
		s.VarTypes[i] = optimization.Real
		s.Lower[i] = lower
		s.Upper[i] = upper
	}
	return s
}
