package optimization

// Relation classifies a pair of solutions (x, y) under Dominates.
type Relation int

const (
	// XDominatesY means x dominates y.
	XDominatesY Relation = iota
	// NonDominated means neither solution dominates the other.
	NonDominated
	// YDominatesX means y dominates x.
	YDominatesX
)

func (r Relation) String() string {
	switch r {
	case XDominatesY:
		return "x<y"
	case NonDominated:
		return "x~y"
	case YDominatesX:
		return "y<x"
	default:
		return "invalid"
	}
}

// Dominates reports whether a dominates b, minimizing every objective.
//
// When constraints are present feasibility takes priority: a feasible
// solution dominates an infeasible one, two infeasible solutions are
// compared on their constraint vectors, and two feasible solutions fall
// back to Pareto dominance on the objectives.
func Dominates(a, b *Solution) bool {
	if a.G == nil && b.G == nil {
		return paretoLess(a.F, b.F)
	}
	aFeasible, bFeasible := a.Feasible(), b.Feasible()
	switch {
	case aFeasible && !bFeasible:
		return true
	case !aFeasible && !bFeasible:
		return paretoLess(a.G, b.G)
	case aFeasible && bFeasible:
		return paretoLess(a.F, b.F)
	default:
		return false
	}
}

// paretoLess reports whether u is no worse than v everywhere and strictly
// better somewhere.
func paretoLess(u, v []float64) bool {
	if len(u) != len(v) {
		return false
	}
	strictly := false
	for i := range u {
		if u[i] > v[i] {
			return false
		}
		if u[i] < v[i] {
			strictly = true
		}
	}
	return strictly
}

// Classify returns the dominance relation between x and y. Mutual
// dominance is impossible for a strict partial order; it is reported as a
// *DominanceViolation instead of a Relation.
func Classify(x, y *Solution) (Relation, error) {
	xy, yx := Dominates(x, y), Dominates(y, x)
	switch {
	case xy && !yx:
		return XDominatesY, nil
	case !xy && !yx:
		return NonDominated, nil
	case yx && !xy:
		return YDominatesX, nil
	default:
		return 0, &DominanceViolation{X: x, Y: y, XDominatesY: xy, YDominatesX: yx}
	}
}
