package amosa

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/amosa/internal/optimization"
)

func TestDirectionExcludesPrevious(t *testing.T) {
	o := newRun(t, testConfig(), mixedProblem())
	for i := 0; i < 200; i++ {
		d, _ := o.direction(2)
		assert.NotEqual(t, 2, d)
		assert.GreaterOrEqual(t, d, 0)
		assert.Less(t, d, 4)
	}

	// A single variable cannot be excluded.
	o = newRun(t, testConfig(), lineProblem())
	d, _ := o.direction(0)
	assert.Equal(t, 0, d)
}

func TestStepAtBound(t *testing.T) {
	o := newRun(t, testConfig(), mixedProblem())

	_, ok := o.step([]float64{7, 0, 0, 2}, 0, true)
	assert.False(t, ok, "integer variable on its upper bound")
	_, ok = o.step([]float64{0, -5, 0, 2}, 1, false)
	assert.False(t, ok, "integer variable on its lower bound")
	_, ok = o.step([]float64{0, 0, 0, 2}, 3, true)
	assert.False(t, ok, "fixed variable")

	for i := 0; i < 100; i++ {
		s, ok := o.step([]float64{6, 0, 0, 2}, 0, true)
		require.True(t, ok)
		assert.Equal(t, 1.0, s, "only one integer step is left")

		s, ok = o.step([]float64{0, 0, 0.5, 2}, 2, false)
		require.True(t, ok)
		assert.Less(t, s, 0.0)
		assert.GreaterOrEqual(t, s, -1.5)
	}
}

func TestRandomPerturbationChangesOneDimension(t *testing.T) {
	p := mixedProblem()
	o := newRun(t, testConfig(), p)

	x, err := o.randomPoint()
	require.NoError(t, err)
	assertWithinBounds(t, p, x.X)

	for i := 0; i < 500; i++ {
		before := o.evaluations
		y, err := o.randomPerturbation(x)
		require.NoError(t, err)
		assert.Equal(t, before+1, o.evaluations)
		assertWithinBounds(t, p, y.X)

		changed := 0
		for d := range x.X {
			if x.X[d] != y.X[d] {
				changed++
			}
		}
		require.Equal(t, 1, changed, "x=%v y=%v", x.X, y.X)
		assert.Equal(t, 2.0, y.X[3], "fixed variable never moves")
		x = y
	}
}

func TestRandomPointCoversIntegerBounds(t *testing.T) {
	p := mixedProblem()
	o := newRun(t, testConfig(), p)

	seen := map[float64]bool{}
	for i := 0; i < 500; i++ {
		s, err := o.randomPoint()
		require.NoError(t, err)
		assertWithinBounds(t, p, s.X)
		assert.Equal(t, 2.0, s.X[3])
		seen[s.X[0]] = true
	}
	assert.True(t, seen[0], "lower bound reachable")
	assert.True(t, seen[7], "upper bound reachable")
}

func TestHillClimbNeverWorsens(t *testing.T) {
	p := funcProblem{
		Spec: optimization.Spec{
			VarTypes:   []optimization.VariableType{optimization.Real, optimization.Real},
			Lower:      []float64{-5, -5},
			Upper:      []float64{5, 5},
			Objectives: 2,
		},
		eval: func(x []float64) ([]float64, []float64, error) {
			return []float64{x[0]*x[0] + x[1]*x[1], (x[0]-1)*(x[0]-1) + x[1]*x[1]}, nil, nil
		},
	}
	o := newRun(t, testConfig(), p)

	for i := 0; i < 20; i++ {
		start, err := o.randomPoint()
		require.NoError(t, err)
		climbed, err := o.hillClimb(start, 50)
		require.NoError(t, err)
		assertWithinBounds(t, p, climbed.X)
		assert.False(t, optimization.Dominates(start, climbed))
		if !optimization.IsTheSame(start, climbed) {
			assert.True(t, optimization.Dominates(climbed, start))
		}
	}
}

func TestInitializeArchive(t *testing.T) {
	hasPoint := func(members []*optimization.Solution, x float64) bool {
		for _, m := range members {
			if m.X[0] == x {
				return true
			}
		}
		return false
	}

	t.Run("bounds only without hill climbing", func(t *testing.T) {
		cfg := testConfig()
		cfg.HillClimbingIterations = 0
		o := newRun(t, cfg, lineProblem())

		require.NoError(t, o.initializeArchive(context.Background()))
		assert.Equal(t, 2, o.evaluations)
		members := o.archive.Members()
		require.Len(t, members, 2)
		assert.True(t, hasPoint(members, 0))
		assert.True(t, hasPoint(members, 10))
	})

	t.Run("bounds plus hill climbed candidates", func(t *testing.T) {
		cfg := testConfig()
		cfg.HillClimbingIterations = 3
		o := newRun(t, cfg, lineProblem())

		require.NoError(t, o.initializeArchive(context.Background()))
		candidates := cfg.ArchiveGamma * cfg.ArchiveSoftLimit
		assert.GreaterOrEqual(t, o.evaluations, 2+candidates)
		assert.LessOrEqual(t, o.evaluations, 2+candidates*(1+cfg.HillClimbingIterations))
		members := o.archive.Members()
		assert.Greater(t, len(members), 2)
		assert.True(t, hasPoint(members, 0))
		assert.True(t, hasPoint(members, 10))
		assertNonDominated(t, members)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		o := newRun(t, testConfig(), lineProblem())
		assert.ErrorIs(t, o.initializeArchive(ctx), context.Canceled)
	})
}
