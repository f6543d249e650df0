package problems

import (
	"fmt"
	"math"
	"math/bits"
	"math/rand"
	"os"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/copyleftdev/amosa/internal/optimization"
)

// Variant is one implementation of a circuit cell.
type Variant struct {
	Gates     float64 `yaml:"gates"`
	ErrorRate float64 `yaml:"error_rate"`
}

// Cell lists the interchangeable variants of a cell. Variant 0 is exact.
type Cell struct {
	Name     string    `yaml:"name"`
	Variants []Variant `yaml:"variants"`
}

// CatalogConfig describes a Catalog problem.
type CatalogConfig struct {
	Threshold float64 `yaml:"threshold"`
	Samples   int     `yaml:"samples"`
	Seed      int64   `yaml:"seed"`
	Cells     []Cell  `yaml:"cells"`
}

// LoadCatalog reads a CatalogConfig from a YAML file.
func LoadCatalog(path string) (CatalogConfig, error) {
	var cfg CatalogConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, optimization.WrapErrorf(err, "reading catalog %s", path).
			WithComponent("problems").
			WithOperation("load")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, optimization.WrapErrorf(err, "parsing catalog %s", path).
			WithComponent("problems").
			WithOperation("load")
	}
	return cfg, nil
}

// Catalog selects one variant per circuit cell, trading the output error
// probability against the total gate count.
//
// The error behaviour of every variant is sampled once, at construction: for
// each test vector a variant either corrupts the circuit output or not. A
// configuration is wrong on a vector when any selected variant corrupts it.
//
// Objectives are the error probability estimate and the gate count; the
// single constraint is the estimate minus the threshold.
type Catalog struct {
	optimization.Spec
	cells     []Cell
	threshold float64
	samples   int
	workers   int

	// flips[cell][variant] is a bitset over the samples
	flips [][][]uint64
}

// NewCatalog validates cfg and samples the variant error behaviour.
// workers bounds the goroutines used per evaluation.
func NewCatalog(cfg CatalogConfig, workers int) (*Catalog, error) {
	if len(cfg.Cells) == 0 {
		return nil, problemError("new", "catalog has no cells")
	}
	if cfg.Samples < 1 {
		return nil, problemError("new", "catalog needs at least one sample")
	}
	if workers < 1 {
		workers = 1
	}

	n := len(cfg.Cells)
	c := &Catalog{
		Spec: optimization.Spec{
			VarTypes:    make([]optimization.VariableType, n),
			Lower:       make([]float64, n),
			Upper:       make([]float64, n),
			Objectives:  2,
			Constraints: 1,
		},
		cells:     cfg.Cells,
		threshold: cfg.Threshold,
		samples:   cfg.Samples,
		workers:   workers,
		flips:     make([][][]uint64, n),
	}

	words := (cfg.Samples + 63) / 64
	rng := rand.New(rand.NewSource(cfg.Seed))
	for i, cell := range cfg.Cells {
		if len(cell.Variants) == 0 {
			return nil, problemError("new", fmt.Sprintf("cell %d (%s) has no variants", i, cell.Name))
		}
		if cell.Variants[0].ErrorRate != 0 {
			return nil, problemError("new", fmt.Sprintf("variant 0 of cell %d (%s) must be exact", i, cell.Name))
		}
		c.VarTypes[i] = optimization.Integer
		c.Upper[i] = float64(len(cell.Variants) - 1)

		c.flips[i] = make([][]uint64, len(cell.Variants))
		for v, variant := range cell.Variants {
			if variant.ErrorRate < 0 || variant.ErrorRate > 1 {
				return nil, problemError("new", fmt.Sprintf("error rate of cell %d variant %d must be in [0, 1]", i, v))
			}
			set := make([]uint64, words)
			for s := 0; s < cfg.Samples; s++ {
				if variant.ErrorRate > 0 && rng.Float64() < variant.ErrorRate {
					set[s/64] |= 1 << (s % 64)
				}
			}
			c.flips[i][v] = set
		}
	}
	return c, nil
}

// Evaluate returns [error probability, gates] and [error probability - threshold].
func (c *Catalog) Evaluate(x []float64) ([]float64, []float64, error) {
	if len(x) != len(c.cells) {
		return nil, nil, fmt.Errorf("expected %d variables, got %d", len(c.cells), len(x))
	}
	selected := make([]int, len(x))
	gates := 0.0
	for i, v := range x {
		k := int(v)
		if float64(k) != v || k < 0 || k >= len(c.cells[i].Variants) {
			return nil, nil, fmt.Errorf("cell %d has no variant %v", i, v)
		}
		selected[i] = k
		gates += c.cells[i].Variants[k].Gates
	}

	wrong, err := c.countErrors(selected)
	if err != nil {
		return nil, nil, err
	}
	ep := ErrorProbability(wrong, c.samples)
	return []float64{ep, gates}, []float64{ep - c.threshold}, nil
}

// countErrors partitions the sample bitsets across the workers and counts
// the samples on which the selected variants corrupt the output.
func (c *Catalog) countErrors(selected []int) (int, error) {
	words := len(c.flips[0][0])
	workers := c.workers
	if workers > words {
		workers = words
	}
	counts := make([]int, workers)
	chunk := (words + workers - 1) / workers

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		lo, hi := w*chunk, min((w+1)*chunk, words)
		g.Go(func() error {
			for k := lo; k < hi; k++ {
				var word uint64
				for i, v := range selected {
					word |= c.flips[i][v][k]
				}
				counts[w] += bits.OnesCount64(word)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	return total, nil
}

// Baseline returns the gate count of the exact configuration.
func (c *Catalog) Baseline() float64 {
	gates := 0.0
	for _, cell := range c.cells {
		gates += cell.Variants[0].Gates
	}
	return gates
}

// ErrorProbability estimates the error probability from wrong out of
// samples observations, corrected upward for the sample size.
func ErrorProbability(wrong, samples int) float64 {
	ns := float64(samples)
	rs := float64(wrong) / ns
	return rs + 4.5/ns*(1+math.Sqrt(1+4.0/9.0*ns*rs*(1-rs)))
}
