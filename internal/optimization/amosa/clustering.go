package amosa

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/copyleftdev/amosa/internal/optimization"
)

// Cluster shrinks members to at most target solutions by repeatedly removing
// one member of the closest pair in objective space. Of the two, the one
// whose row holds more entries at the minimum distance is removed; ties
// remove the second. Pairs with identical decision vectors have no distance.
//
// Cluster returns the surviving members in their original order. degenerate
// is true when the target could not be reached because no finite distance
// was left.
func Cluster(members []*optimization.Solution, target int, pool *MatrixPool) (kept []*optimization.Solution, degenerate bool) {
	if target <= 0 {
		return members[:0], false
	}
	n := len(members)
	if n <= target {
		return members, false
	}

	d := pool.GetSymDense(n)
	defer pool.PutSymDense(d)
	for i := 0; i < n; i++ {
		d.SetSym(i, i, math.NaN())
		for j := i + 1; j < n; j++ {
			if optimization.IsTheSame(members[i], members[j]) {
				d.SetSym(i, j, math.NaN())
				continue
			}
			d.SetSym(i, j, floats.Distance(members[i].F, members[j].F, 2))
		}
	}

	alive := make([]int, n)
	for i := range alive {
		alive[i] = i
	}

	for len(alive) > target {
		r, c := -1, -1
		minDist := math.Inf(1)
		for ai, i := range alive {
			for _, j := range alive[ai+1:] {
				if v := d.At(i, j); v < minDist {
					minDist, r, c = v, i, j
				}
			}
		}
		if r < 0 {
			degenerate = true
			break
		}

		victim := c
		if tiesAt(d, alive, r, minDist) > tiesAt(d, alive, c, minDist) {
			victim = r
		}
		for k, idx := range alive {
			if idx == victim {
				alive = append(alive[:k], alive[k+1:]...)
				break
			}
		}
	}

	kept = make([]*optimization.Solution, len(alive))
	for k, idx := range alive {
		kept[k] = members[idx]
	}
	return kept, degenerate
}

// tiesAt counts the live entries of row i equal to v.
func tiesAt(d mat.Matrix, alive []int, i int, v float64) int {
	n := 0
	for _, j := range alive {
		if d.At(i, j) == v {
			n++
		}
	}
	return n
}
