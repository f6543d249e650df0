package amosa

import (
	"math/rand"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/copyleftdev/amosa/internal/optimization"
)

func TestArchiveInsertKeepsNonDomination(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	a := NewArchive(10, 1000, false)
	for i := 0; i < 500; i++ {
		a.Insert(sol([]float64{float64(i)}, []float64{rng.Float64(), rng.Float64(), rng.Float64()}, nil))
		assertNonDominated(t, a.Members())
	}
	assert.Greater(t, a.Len(), 0)
}

func TestArchiveInsert(t *testing.T) {
	a := NewArchive(5, 10, false)

	assert.True(t, a.Insert(sol([]float64{1}, []float64{1, 1}, nil)))
	assert.False(t, a.Insert(sol([]float64{1}, []float64{1, 1}, nil)), "duplicate decision vector")
	assert.False(t, a.Insert(sol([]float64{2}, []float64{2, 2}, nil)), "dominated candidate")
	assert.True(t, a.Insert(sol([]float64{3}, []float64{0, 5}, nil)))

	// A dominating candidate evicts the members it dominates.
	assert.True(t, a.Insert(sol([]float64{4}, []float64{0, 0}, nil)))
	require.Equal(t, 1, a.Len())
	assert.Equal(t, []float64{4}, a.Members()[0].X)
}

func TestArchiveAddClustersAboveSoftLimit(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	a := NewArchive(2, 3, false)
	a.metrics = metrics

	for i, f := range [][]float64{{0, 3}, {1, 2}, {2, 1}} {
		a.Add(sol([]float64{float64(i)}, f, nil))
	}
	assert.Equal(t, 3, a.Len())
	assert.Zero(t, testutil.ToFloat64(metrics.ClusteringRuns))

	a.Add(sol([]float64{3}, []float64{3, 0}, nil))
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ClusteringRuns))
	assertNonDominated(t, a.Members())
}

func TestArchiveReduceConstrained(t *testing.T) {
	feasible := func(x float64, f0 float64) *optimization.Solution {
		return sol([]float64{x}, []float64{f0, 10 - f0}, []float64{-1})
	}
	infeasible := func(x float64, g float64) *optimization.Solution {
		return sol([]float64{x}, []float64{x, 10 - x}, []float64{g})
	}

	t.Run("feasible exceed hard limit", func(t *testing.T) {
		a := NewArchive(2, 5, true)
		a.members = []*optimization.Solution{
			feasible(0, 0), infeasible(1, 3), feasible(2, 5), feasible(3, 10),
		}
		a.Reduce()
		require.Equal(t, 2, a.Len())
		for _, m := range a.Members() {
			assert.True(t, m.Feasible())
		}
	})

	t.Run("infeasible pruned around feasible", func(t *testing.T) {
		a := NewArchive(3, 5, true)
		f := feasible(0, 0)
		a.members = []*optimization.Solution{
			infeasible(1, 1), f, infeasible(2, 2), infeasible(8, 3), infeasible(9, 4),
		}
		a.Reduce()
		require.Equal(t, 3, a.Len())
		members := a.Members()
		assert.Same(t, f, members[len(members)-1], "feasible members come last")
		for _, m := range members[:2] {
			assert.False(t, m.Feasible())
		}
	})

	t.Run("remove infeasible", func(t *testing.T) {
		a := NewArchive(3, 5, true)
		a.members = []*optimization.Solution{infeasible(1, 1), feasible(0, 0), infeasible(2, 2)}
		a.RemoveInfeasible()
		require.Equal(t, 1, a.Len())
		assert.True(t, a.Members()[0].Feasible())
	})
}

func TestArchiveWarnsOnDegenerateClustering(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	a := NewArchive(1, 2, false)
	a.logger = zap.New(core)
	a.members = []*optimization.Solution{
		sol([]float64{1}, []float64{0, 3}, nil),
		sol([]float64{1}, []float64{1, 2}, nil),
		sol([]float64{1}, []float64{2, 1}, nil),
	}

	a.Reduce()
	assert.Equal(t, 3, a.Len())
	assert.Equal(t, 1, logs.FilterMessage("clustering cannot reduce the archive any further").Len())
}

func TestArchiveDominatingAndViolation(t *testing.T) {
	a := NewArchive(5, 10, true)
	a.members = []*optimization.Solution{
		sol([]float64{0}, []float64{0, 1}, []float64{-1, 0}),
		sol([]float64{1}, []float64{1, 0}, []float64{2, -1}),
		sol([]float64{2}, []float64{2, 2}, []float64{4, 1}),
	}

	y := sol([]float64{3}, []float64{5, 5}, []float64{5, 5})
	assert.Len(t, a.Dominating(y), 3)

	feasible, cvMin, cvAvg := a.violation()
	assert.Equal(t, 1, feasible)
	assert.Equal(t, 1.0, cvMin)
	assert.InDelta(t, 7.0/3.0, cvAvg, 1e-12)

	rng := rand.New(rand.NewSource(1))
	assert.Contains(t, a.Members(), a.Random(rng))
	assert.Nil(t, NewArchive(1, 1, false).Random(rng))
}
