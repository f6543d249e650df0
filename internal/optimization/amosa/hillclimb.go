package amosa

import (
	"context"

	"go.uber.org/zap"

	"github.com/copyleftdev/amosa/internal/optimization"
)

// hillClimb refines x for up to iterations steps. A step along the current
// direction is kept only when it dominates the current point; otherwise a
// new direction is drawn, excluding the last dimension.
func (o *Optimizer) hillClimb(x *optimization.Solution, iterations int) (*optimization.Solution, error) {
	d, up := o.direction(-1)
	for i := 0; i < iterations; i++ {
		if step, ok := o.step(x.X, d, up); ok {
			y, err := o.move(x, d, step)
			if err != nil {
				return nil, err
			}
			if optimization.Dominates(y, x) && !optimization.IsTheSame(y, x) {
				x = y
				continue
			}
		}
		d, up = o.direction(d)
	}
	return x, nil
}

// initializeArchive seeds the archive with the lower and upper bound points
// and, when hill climbing is enabled, gamma * soft limit hill-climbed random
// points.
func (o *Optimizer) initializeArchive(ctx context.Context) error {
	lowerPoint, err := o.evaluate(o.problem.LowerBounds())
	if err != nil {
		return err
	}
	upperPoint, err := o.evaluate(o.problem.UpperBounds())
	if err != nil {
		return err
	}
	candidates := []*optimization.Solution{lowerPoint, upperPoint}

	if o.config.HillClimbingIterations > 0 {
		n := o.config.ArchiveGamma * o.config.ArchiveSoftLimit
		o.logger.Info("initializing archive",
			zap.Int("candidates", n),
			zap.Int("hill_climbing_iterations", o.config.HillClimbingIterations),
		)
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			start, err := o.randomPoint()
			if err != nil {
				return err
			}
			climbed, err := o.hillClimb(start, o.config.HillClimbingIterations)
			if err != nil {
				return err
			}
			candidates = append(candidates, climbed)
			o.logger.Debug("initial candidate refined", zap.Int("candidate", i+1), zap.Int("of", n))
		}
	}

	for _, c := range candidates {
		o.archive.Insert(c)
	}
	return nil
}
