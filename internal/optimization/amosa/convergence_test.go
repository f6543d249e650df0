package amosa

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvergenceTracker(t *testing.T) {
	c := &convergenceTracker{}

	dn, di, phi := c.update([][]float64{{0, 1}, {1, 0}})
	assert.True(t, math.IsInf(dn, 1))
	assert.True(t, math.IsInf(di, 1))
	assert.True(t, math.IsInf(phi, 1))
	assert.False(t, c.converged(1))

	dn, di, phi = c.update([][]float64{{0, 1}, {1, 0}})
	assert.Zero(t, dn)
	assert.Zero(t, di)
	assert.Zero(t, phi)
	assert.True(t, c.converged(1))
	assert.False(t, c.converged(2), "the first sample is infinite")

	// The nadir moves from (1, 1) to (2, 2); both points drift by 1 in the
	// previous normalization.
	dn, di, phi = c.update([][]float64{{0, 2}, {2, 0}})
	assert.InDelta(t, -1, dn, 1e-12)
	assert.Zero(t, di)
	assert.InDelta(t, 1, phi, 1e-12)
	assert.False(t, c.converged(1))
}

func TestConvergenceTrackerEmptyFront(t *testing.T) {
	c := &convergenceTracker{}
	_, _, phi := c.update(nil)
	assert.True(t, math.IsInf(phi, 1))
	assert.Len(t, c.phi, 1)
	assert.False(t, c.converged(0))
}

func TestNormalizeDegenerateObjective(t *testing.T) {
	got := normalize([][]float64{{3, 1}, {3, 2}}, []float64{3, 1}, []float64{3, 2})
	assert.Equal(t, [][]float64{{0, 0}, {0, 1}}, got)
}
