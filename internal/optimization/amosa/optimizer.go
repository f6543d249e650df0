package amosa

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	apperrors "github.com/copyleftdev/amosa/internal/errors"
	"github.com/copyleftdev/amosa/internal/optimization"
)

// Stats is the snapshot recorded after initialization, after every outer
// (temperature) iteration and once more when the run ends.
type Stats struct {
	Iteration   int     `json:"iteration"`
	Final       bool    `json:"final"`
	Temperature float64 `json:"temperature"`
	Evaluations int     `json:"evaluations"`
	ArchiveSize int     `json:"archive_size"`
	Feasible    int     `json:"feasible"`
	CVMin       float64 `json:"cv_min"`
	CVAvg       float64 `json:"cv_avg"`
	DeltaIdeal  float64 `json:"delta_ideal"`
	DeltaNadir  float64 `json:"delta_nadir"`
	Phi         float64 `json:"phi"`
}

// Observer receives every Stats snapshot, synchronously, from the goroutine
// running Minimize.
type Observer func(Stats)

// Optimizer implements AMOSA. One Optimizer runs one Minimize call at a time;
// each call starts from a fresh archive.
type Optimizer struct {
	config   Config
	logger   *zap.Logger
	metrics  *Metrics
	runID    string
	observer Observer

	// Per-run state, reset by Minimize
	problem     optimization.Problem
	rng         *rand.Rand
	archive     *Archive
	tracker     *convergenceTracker
	temperature float64
	evaluations int
	result      *optimization.Result

	mu     sync.Mutex
	cancel context.CancelFunc
}

var _ optimization.Optimizer = (*Optimizer)(nil)

// NewOptimizer validates the configuration and creates an optimizer.
func NewOptimizer(config Config) (*Optimizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Optimizer{
		config: config,
		logger: zap.NewNop(),
	}, nil
}

// WithLogger sets the logger used for progress and warnings
func (o *Optimizer) WithLogger(logger *zap.Logger) *Optimizer {
	if logger != nil {
		o.logger = logger
	}
	return o
}

// WithMetrics sets the Prometheus collectors updated during a run
func (o *Optimizer) WithMetrics(metrics *Metrics) *Optimizer {
	o.metrics = metrics
	return o
}

// WithRunID sets the "run" label of the progress gauges. Concurrent
// optimizers sharing Metrics need distinct IDs.
func (o *Optimizer) WithRunID(id string) *Optimizer {
	o.runID = id
	return o
}

// WithObserver sets a callback receiving every Stats snapshot
func (o *Optimizer) WithObserver(observer Observer) *Optimizer {
	o.observer = observer
	return o
}

// Config returns the optimizer parameters.
func (o *Optimizer) Config() Config {
	return o.config
}

// Minimize runs the full AMOSA search on problem and returns the final archive.
// The context is checked between evaluations; a cancelled run returns the
// context error and no result.
func (o *Optimizer) Minimize(ctx context.Context, problem optimization.Problem) (*optimization.Result, error) {
	if err := o.config.Validate(); err != nil {
		return nil, err
	}
	if err := optimization.ValidateProblem(problem); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithCancel(ctx)
	o.mu.Lock()
	o.cancel = cancel
	o.mu.Unlock()
	defer cancel()
	defer o.metrics.forgetRun(o.runID)

	start := time.Now()
	o.reset(problem)

	result, err := o.run(ctx)
	elapsed := time.Since(start)
	switch {
	case err == nil:
		o.metrics.observeRun("completed", elapsed)
	case ctx.Err() != nil:
		o.metrics.observeRun("cancelled", elapsed)
		o.logger.Info("optimization cancelled", zap.Duration("elapsed", elapsed))
		return nil, ctx.Err()
	default:
		o.metrics.observeRun("failed", elapsed)
		return nil, err
	}

	result.Duration = elapsed
	o.result = result
	o.logger.Info("optimization completed",
		zap.Duration("elapsed", elapsed),
		zap.Int("evaluations", result.Evaluations),
		zap.Int("pareto_size", len(result.Archive)),
		zap.Bool("converged", result.Converged),
	)
	return result, nil
}

func (o *Optimizer) reset(problem optimization.Problem) {
	seed := o.config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	o.problem = problem
	o.rng = rand.New(rand.NewSource(seed))
	o.archive = NewArchive(o.config.ArchiveHardLimit, o.config.ArchiveSoftLimit, problem.NumConstraints() > 0)
	o.archive.logger = o.logger
	o.archive.metrics = o.metrics
	o.tracker = &convergenceTracker{}
	o.temperature = 0
	o.evaluations = 0
	o.result = nil
}

func (o *Optimizer) run(ctx context.Context) (*optimization.Result, error) {
	if err := o.initializeArchive(ctx); err != nil {
		return nil, err
	}
	if o.archive.Len() > o.config.ArchiveHardLimit {
		o.archive.Reduce()
	}

	o.temperature = o.config.InitialTemperature
	x := o.archive.Random(o.rng)
	o.recordStatistics(0, false)

	iteration := 0
	converged := false
	for o.temperature > o.config.FinalTemperature {
		for i := 0; i < o.config.AnnealingIterations; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			var err error
			if x, err = o.anneal(x); err != nil {
				return nil, err
			}
		}
		iteration++
		o.recordStatistics(iteration, false)

		if o.config.EarlyTerminationWindow > 0 && o.tracker.converged(o.config.EarlyTerminationWindow) {
			o.logger.Info("early-termination criterion met",
				zap.Int("iteration", iteration),
				zap.Float64("temperature", o.temperature),
			)
			o.temperature = o.config.FinalTemperature
			converged = true
			continue
		}
		o.temperature *= o.config.CoolingFactor
	}

	if o.archive.Len() > o.config.ArchiveHardLimit {
		o.archive.Reduce()
	}
	o.archive.RemoveInfeasible()
	o.recordStatistics(iteration, true)

	return &optimization.Result{
		Archive:          o.archive.Members(),
		Evaluations:      o.evaluations,
		Iterations:       iteration,
		FinalTemperature: o.temperature,
		Converged:        converged,
	}, nil
}

// anneal performs one perturbation of x and returns the next current point.
func (o *Optimizer) anneal(x *optimization.Solution) (*optimization.Solution, error) {
	y, err := o.randomPerturbation(x)
	if err != nil {
		return nil, err
	}
	return o.transition(x, y)
}

// transition applies the acceptance rules to the current point x and its
// neighbour y. Only the incomparable and y-dominates-x cases with no archive
// member dominating y add y to the archive.
func (o *Optimizer) transition(x, y *optimization.Solution) (*optimization.Solution, error) {
	fitness := fitnessRange(o.archive.members, x, y)
	dominatingY := o.archive.Dominating(y)

	relation, err := optimization.Classify(x, y)
	if err != nil {
		var v *optimization.DominanceViolation
		if apperrors.As(err, &v) {
			v.Archive = o.archive.Members()
		}
		return nil, apperrors.Wrap(err, "dominance classification").
			WithComponent("amosa").
			WithOperation("anneal")
	}

	switch relation {
	case optimization.XDominatesY:
		dominators := append([]*optimization.Solution{x}, dominatingY...)
		delta := meanDominationAmount(dominators, y, fitness)
		if o.accept(sigmoid(-delta * o.temperature)) {
			return y, nil
		}
		return x, nil

	case optimization.NonDominated:
		if len(dominatingY) > 0 {
			delta := meanDominationAmount(dominatingY, y, fitness)
			if o.accept(sigmoid(-delta * o.temperature)) {
				return y, nil
			}
			return x, nil
		}
		o.archive.Add(y)
		return y, nil

	case optimization.YDominatesX:
		if len(dominatingY) > 0 {
			amounts := make([]float64, len(dominatingY))
			for i, s := range dominatingY {
				amounts[i] = dominationAmount(s, y, fitness)
			}
			k := floats.MinIdx(amounts)
			if o.accept(sigmoid(amounts[k])) {
				return dominatingY[k], nil
			}
			return x, nil
		}
		o.archive.Add(y)
		return y, nil
	}

	return nil, apperrors.Errorf("unknown dominance relation %v", relation).
		WithComponent("amosa").
		WithOperation("anneal")
}

func (o *Optimizer) accept(probability float64) bool {
	return o.rng.Float64() < probability
}

// evaluate builds a solution for x and counts the evaluation.
func (o *Optimizer) evaluate(x []float64) (*optimization.Solution, error) {
	o.evaluations++
	o.metrics.observeEvaluation()
	return optimization.NewSolution(o.problem, x)
}

// move shifts dimension d of s by step and counts the evaluation.
func (o *Optimizer) move(s *optimization.Solution, d int, step float64) (*optimization.Solution, error) {
	o.evaluations++
	o.metrics.observeEvaluation()
	return s.Moved(o.problem, d, step)
}

func (o *Optimizer) recordStatistics(iteration int, final bool) Stats {
	deltaNadir, deltaIdeal, phi := o.tracker.update(o.archive.objectives())
	s := Stats{
		Iteration:   iteration,
		Final:       final,
		Temperature: o.temperature,
		Evaluations: o.evaluations,
		ArchiveSize: o.archive.Len(),
		DeltaIdeal:  deltaIdeal,
		DeltaNadir:  deltaNadir,
		Phi:         phi,
	}
	fields := []zap.Field{
		zap.Int("iteration", iteration),
		zap.Float64("temperature", s.Temperature),
		zap.Int("evaluations", s.Evaluations),
		zap.Int("nds", s.ArchiveSize),
	}
	if o.problem.NumConstraints() > 0 {
		s.Feasible, s.CVMin, s.CVAvg = o.archive.violation()
		fields = append(fields,
			zap.Int("feasible", s.Feasible),
			zap.Float64("cv_min", s.CVMin),
			zap.Float64("cv_avg", s.CVAvg),
		)
	} else {
		s.Feasible = s.ArchiveSize
	}
	fields = append(fields,
		zap.Float64("d_ideal", s.DeltaIdeal),
		zap.Float64("d_nadir", s.DeltaNadir),
		zap.Float64("phi", s.Phi),
	)
	o.logger.Info("annealing statistics", fields...)

	o.metrics.observeStats(o.runID, s)
	if o.observer != nil {
		o.observer(s)
	}
	return s
}

// ParetoFront returns the objective vectors of the last completed run.
func (o *Optimizer) ParetoFront() [][]float64 {
	if o.result == nil {
		return nil
	}
	return o.result.ParetoFront()
}

// ParetoSet returns the decision vectors of the last completed run.
func (o *Optimizer) ParetoSet() [][]float64 {
	if o.result == nil {
		return nil
	}
	return o.result.ParetoSet()
}

// ConstraintViolation returns the constraint vectors of the last completed run.
func (o *Optimizer) ConstraintViolation() [][]float64 {
	if o.result == nil {
		return nil
	}
	return o.result.ConstraintViolation()
}

// Stop cancels a running Minimize.
func (o *Optimizer) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
	}
}
