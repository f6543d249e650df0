package amosa

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/copyleftdev/amosa/internal/optimization"
)

// Archive is the bounded set of mutually non-dominated solutions kept during
// a run. No member dominates another and no two members share a decision
// vector. It is not safe for concurrent use.
type Archive struct {
	members     []*optimization.Solution
	hardLimit   int
	softLimit   int
	constrained bool
	pool        *MatrixPool
	logger      *zap.Logger
	metrics     *Metrics
}

// NewArchive creates an empty archive. constrained selects the
// feasibility-aware reduction.
func NewArchive(hardLimit, softLimit int, constrained bool) *Archive {
	return &Archive{
		members:     make([]*optimization.Solution, 0, softLimit+1),
		hardLimit:   hardLimit,
		softLimit:   softLimit,
		constrained: constrained,
		pool:        NewMatrixPool(),
		logger:      zap.NewNop(),
	}
}

// Len returns the number of members.
func (a *Archive) Len() int {
	return len(a.members)
}

// Members returns a snapshot of the archive members.
func (a *Archive) Members() []*optimization.Solution {
	return append([]*optimization.Solution(nil), a.members...)
}

// Insert removes every member dominated by c, then adds c unless a surviving
// member dominates it or has the same decision vector. It reports whether c
// was added.
func (a *Archive) Insert(c *optimization.Solution) bool {
	if len(a.members) == 0 {
		a.members = append(a.members, c)
		return true
	}

	kept := a.members[:0]
	for _, m := range a.members {
		if !optimization.Dominates(c, m) {
			kept = append(kept, m)
		}
	}
	for i := len(kept); i < len(a.members); i++ {
		a.members[i] = nil
	}
	a.members = kept

	for _, m := range a.members {
		if optimization.Dominates(m, c) || optimization.IsTheSame(m, c) {
			return false
		}
	}
	a.members = append(a.members, c)
	return true
}

// Add inserts c and, when the archive then exceeds the soft limit, reduces it
// to the hard limit.
func (a *Archive) Add(c *optimization.Solution) bool {
	added := a.Insert(c)
	if len(a.members) > a.softLimit {
		a.Reduce()
	}
	return added
}

// Reduce clusters the archive down to the hard limit. With constraints,
// feasible members are kept first: if they alone exceed the limit the
// infeasible ones are dropped, otherwise only infeasible members are pruned.
func (a *Archive) Reduce() {
	a.metrics.observeClustering()

	if !a.constrained {
		a.members = a.cluster(a.members, a.hardLimit)
		return
	}

	var feasible, infeasible []*optimization.Solution
	for _, m := range a.members {
		if m.Feasible() {
			feasible = append(feasible, m)
		} else {
			infeasible = append(infeasible, m)
		}
	}
	if len(feasible) > a.hardLimit {
		a.members = a.cluster(feasible, a.hardLimit)
		return
	}
	infeasible = a.cluster(infeasible, a.hardLimit-len(feasible))
	a.members = append(infeasible, feasible...)
}

func (a *Archive) cluster(members []*optimization.Solution, target int) []*optimization.Solution {
	kept, degenerate := Cluster(members, target, a.pool)
	if degenerate {
		a.logger.Warn("clustering cannot reduce the archive any further",
			zap.Int("size", len(kept)),
			zap.Int("target", target),
		)
	}
	return kept
}

// RemoveInfeasible drops every member violating a constraint.
func (a *Archive) RemoveInfeasible() {
	kept := a.members[:0]
	for _, m := range a.members {
		if m.Feasible() {
			kept = append(kept, m)
		}
	}
	for i := len(kept); i < len(a.members); i++ {
		a.members[i] = nil
	}
	a.members = kept
}

// Dominating returns the members that dominate y.
func (a *Archive) Dominating(y *optimization.Solution) []*optimization.Solution {
	var out []*optimization.Solution
	for _, m := range a.members {
		if optimization.Dominates(m, y) {
			out = append(out, m)
		}
	}
	return out
}

// Random returns a uniformly chosen member, or nil if the archive is empty.
func (a *Archive) Random(rng *rand.Rand) *optimization.Solution {
	if len(a.members) == 0 {
		return nil
	}
	return a.members[rng.Intn(len(a.members))]
}

// objectives returns the objective vectors of the members without copying.
func (a *Archive) objectives() [][]float64 {
	f := make([][]float64, len(a.members))
	for i, m := range a.members {
		f[i] = m.F
	}
	return f
}

// violation returns the number of feasible members and the minimum and
// average of the positive constraint values.
func (a *Archive) violation() (feasible int, cvMin, cvAvg float64) {
	var sum float64
	n := 0
	for _, m := range a.members {
		if m.Feasible() {
			feasible++
		}
		for _, g := range m.G {
			if g <= 0 {
				continue
			}
			if n == 0 || g < cvMin {
				cvMin = g
			}
			sum += g
			n++
		}
	}
	if n > 0 {
		cvAvg = sum / float64(n)
	}
	return feasible, cvMin, cvAvg
}
