package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/copyleftdev/amosa/internal/logging"
	"github.com/copyleftdev/amosa/internal/optimization"
	"github.com/copyleftdev/amosa/internal/optimization/amosa"
	"github.com/copyleftdev/amosa/internal/optimization/problems"
)

// Job states
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

var (
	// ErrJobNotFound is returned for unknown or expired job IDs.
	ErrJobNotFound = errors.New("optimization not found")
	// ErrInvalidParams marks malformed or semantically invalid requests.
	ErrInvalidParams = errors.New("invalid parameters")
)

// StartRequest describes a new optimization job. Config holds AMOSA
// parameters overriding the service defaults; absent fields keep them.
type StartRequest struct {
	Problem string           `json:"problem"`
	Options problems.Options `json:"options"`
	Config  json.RawMessage  `json:"config,omitempty"`
}

// OptimizationState represents the state of an optimization job.
// Fields are guarded by the server mutex.
type OptimizationState struct {
	ID          string
	Problem     string
	Status      string
	StartTime   time.Time
	EndTime     *time.Time
	Progress    float64
	Stats       amosa.Stats
	Result      *optimization.Result
	Err         error
	Optimizer   *amosa.Optimizer
	CancelFunc  context.CancelFunc
	LastUpdated time.Time

	problem optimization.Problem
	config  amosa.Config
}

func (st *OptimizationState) terminal() bool {
	switch st.Status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// JobStatus is the wire form of an OptimizationState.
type JobStatus struct {
	ID          string     `json:"optimization_id"`
	Problem     string     `json:"problem"`
	Status      string     `json:"status"`
	Progress    float64    `json:"progress"`
	StartTime   string     `json:"start_time"`
	EndTime     string     `json:"end_time,omitempty"`
	LastUpdate  string     `json:"last_update"`
	Error       string     `json:"error,omitempty"`
	Iteration   int        `json:"iteration"`
	Temperature float64    `json:"temperature"`
	Evaluations int        `json:"evaluations"`
	ArchiveSize int        `json:"archive_size"`
	Feasible    int        `json:"feasible"`
	Phi         *float64   `json:"phi,omitempty"`
	Result      *JobResult `json:"result,omitempty"`
}

// JobResult is the final archive of a completed job.
type JobResult struct {
	ParetoFront         [][]float64 `json:"pareto_front"`
	ParetoSet           [][]float64 `json:"pareto_set"`
	ConstraintViolation [][]float64 `json:"constraint_violation,omitempty"`
	Evaluations         int         `json:"evaluations"`
	Iterations          int         `json:"iterations"`
	Converged           bool        `json:"converged"`
	DurationMS          int64       `json:"duration_ms"`
}

func (st *OptimizationState) status() JobStatus {
	js := JobStatus{
		ID:          st.ID,
		Problem:     st.Problem,
		Status:      st.Status,
		Progress:    st.Progress,
		StartTime:   st.StartTime.Format(time.RFC3339),
		LastUpdate:  st.LastUpdated.Format(time.RFC3339),
		Iteration:   st.Stats.Iteration,
		Temperature: st.Stats.Temperature,
		Evaluations: st.Stats.Evaluations,
		ArchiveSize: st.Stats.ArchiveSize,
		Feasible:    st.Stats.Feasible,
	}
	if st.EndTime != nil {
		js.EndTime = st.EndTime.Format(time.RFC3339)
	}
	if st.Err != nil {
		js.Error = st.Err.Error()
	}
	if !math.IsInf(st.Stats.Phi, 0) && !math.IsNaN(st.Stats.Phi) {
		phi := st.Stats.Phi
		js.Phi = &phi
	}
	if r := st.Result; r != nil {
		js.Result = &JobResult{
			ParetoFront: r.ParetoFront(),
			ParetoSet:   r.ParetoSet(),
			Evaluations: r.Evaluations,
			Iterations:  r.Iterations,
			Converged:   r.Converged,
			DurationMS:  r.Duration.Milliseconds(),
		}
		if st.problem.NumConstraints() > 0 {
			js.Result.ConstraintViolation = r.ConstraintViolation()
		}
	}
	return js
}

// startJob validates the request, registers a pending job and launches it.
func (s *Server) startJob(req StartRequest) (*OptimizationState, error) {
	if req.Problem == "" {
		return nil, fmt.Errorf("%w: problem is required", ErrInvalidParams)
	}

	cfg := s.cfg.AMOSAConfig()
	if len(req.Config) > 0 {
		dec := json.NewDecoder(bytes.NewReader(req.Config))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("%w: config: %v", ErrInvalidParams, err)
		}
	}
	optimizer, err := amosa.NewOptimizer(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}

	opts := req.Options
	if opts.Catalog != "" {
		opts.Catalog = filepath.Join(s.cfg.Optimization.CatalogDir, filepath.Base(opts.Catalog))
	}
	if opts.Workers == 0 {
		opts.Workers = s.cfg.Optimization.EvaluationWorkers
	}
	problem, err := problems.New(req.Problem, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if err := optimization.ValidateProblem(problem); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now()
	state := &OptimizationState{
		ID:          id,
		Problem:     req.Problem,
		Status:      StatusPending,
		StartTime:   now,
		Optimizer:   optimizer,
		CancelFunc:  cancel,
		LastUpdated: now,
		problem:     problem,
		config:      cfg,
	}

	s.optimizationsMu.Lock()
	s.pruneLocked(now)
	s.optimizations[id] = state
	s.optimizationsMu.Unlock()

	s.wg.Add(1)
	go s.runOptimization(ctx, state)

	s.logger.Info("Optimization queued", map[string]interface{}{
		"optimization_id": id,
		"problem":         req.Problem,
	})
	return state, nil
}

// runOptimization waits for a worker slot and runs the job to completion.
func (s *Server) runOptimization(ctx context.Context, state *OptimizationState) {
	defer s.wg.Done()
	defer state.CancelFunc()

	if err := s.sem.Acquire(ctx, 1); err != nil {
		s.finish(state, nil, err)
		return
	}
	defer s.sem.Release(1)

	s.optimizationsMu.Lock()
	if state.terminal() {
		s.optimizationsMu.Unlock()
		return
	}
	state.Status = StatusRunning
	state.LastUpdated = time.Now()
	s.optimizationsMu.Unlock()

	jobLogger := logging.NewZapLogger(s.logger.WithFields(map[string]interface{}{
		"optimization_id": state.ID,
		"problem":         state.Problem,
	}))
	state.Optimizer.
		WithLogger(jobLogger.With(zap.String("component", "amosa"))).
		WithMetrics(s.metrics).
		WithRunID(state.ID).
		WithObserver(func(stats amosa.Stats) {
			s.optimizationsMu.Lock()
			state.Stats = stats
			state.Progress = progress(state.config, stats)
			state.LastUpdated = time.Now()
			s.optimizationsMu.Unlock()
		})

	result, err := state.Optimizer.Minimize(ctx, state.problem)
	s.finish(state, result, err)
}

func (s *Server) finish(state *OptimizationState, result *optimization.Result, err error) {
	s.optimizationsMu.Lock()
	defer s.optimizationsMu.Unlock()

	now := time.Now()
	state.LastUpdated = now
	if state.Status == StatusCancelled {
		return
	}
	state.EndTime = &now

	switch {
	case err == nil:
		state.Status = StatusCompleted
		state.Result = result
		state.Progress = 1
		s.logger.Info("Optimization completed", map[string]interface{}{
			"optimization_id": state.ID,
			"pareto_size":     len(result.Archive),
			"evaluations":     result.Evaluations,
		})
	case errors.Is(err, context.Canceled):
		state.Status = StatusCancelled
	default:
		state.Status = StatusFailed
		state.Err = err
		s.logger.Error("Optimization failed", map[string]interface{}{
			"optimization_id": state.ID,
			"error":           err.Error(),
		})
	}
}

// cancelJob cancels a pending or running job.
func (s *Server) cancelJob(id string) error {
	s.optimizationsMu.Lock()
	defer s.optimizationsMu.Unlock()

	state, exists := s.optimizations[id]
	if !exists {
		return ErrJobNotFound
	}
	if state.terminal() {
		return fmt.Errorf("%w: cannot cancel optimization with status: %s", ErrInvalidParams, state.Status)
	}

	state.CancelFunc()
	state.Status = StatusCancelled
	now := time.Now()
	state.EndTime = &now
	state.LastUpdated = now

	s.logger.Info("Optimization cancelled", map[string]interface{}{
		"optimization_id": id,
	})
	return nil
}

func (s *Server) jobStatus(id string) (JobStatus, error) {
	s.optimizationsMu.RLock()
	defer s.optimizationsMu.RUnlock()

	state, exists := s.optimizations[id]
	if !exists {
		return JobStatus{}, ErrJobNotFound
	}
	return state.status(), nil
}

// pruneLocked drops terminal jobs older than the retention period.
func (s *Server) pruneLocked(now time.Time) {
	retention := s.cfg.Optimization.JobRetention
	if retention <= 0 {
		return
	}
	for id, state := range s.optimizations {
		if state.terminal() && state.EndTime != nil && now.Sub(*state.EndTime) > retention {
			delete(s.optimizations, id)
		}
	}
}

// progress maps the temperature onto [0, 1] on a log scale between the
// initial and final temperatures.
func progress(cfg amosa.Config, stats amosa.Stats) float64 {
	if stats.Final {
		return 1
	}
	if stats.Temperature <= 0 {
		return 0
	}
	p := math.Log(cfg.InitialTemperature/stats.Temperature) / math.Log(cfg.InitialTemperature/cfg.FinalTemperature)
	return math.Max(0, math.Min(1, p))
}
