package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/semaphore"

	"github.com/copyleftdev/amosa/internal/config"
	"github.com/copyleftdev/amosa/internal/logging"
	"github.com/copyleftdev/amosa/internal/optimization/amosa"
	"github.com/copyleftdev/amosa/internal/optimization/problems"
	"github.com/copyleftdev/amosa/internal/report"
)

// Logger defines the logging interface used by the server
// This allows us to be flexible with our logging implementation
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	Fatal(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// JSON-RPC 2.0 error codes
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
	codeJobNotFound    = -32004
)

// Server implements the HTTP and JSON-RPC server for the optimization service.
// It runs AMOSA jobs in the background, at most Optimization.WorkerCount at a time.
type Server struct {
	cfg     *config.Config
	logger  Logger
	metrics *amosa.Metrics
	sem     *semaphore.Weighted
	wg      sync.WaitGroup

	// Optimization state management
	optimizations   map[string]*OptimizationState
	optimizationsMu sync.RWMutex // Protects the optimizations map and every state
}

// NewServer creates a new server instance with the given config and logger.
// metrics may be nil.
func NewServer(cfg *config.Config, logger Logger, metrics *amosa.Metrics) *Server {
	workers := cfg.Optimization.WorkerCount
	if workers < 1 {
		workers = 1
	}
	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       metrics,
		sem:           semaphore.NewWeighted(int64(workers)),
		optimizations: make(map[string]*OptimizationState),
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/problems", s.handleProblems)
		r.Post("/optimize", s.handleOptimize)
		r.Get("/status/{id}", s.handleStatus)
		r.Get("/optimization/{id}/front.csv", s.handleFrontCSV)
		r.Delete("/optimization/{id}", s.handleCancel)
	})

	// JSON-RPC 2.0 endpoint
	r.Post("/rpc", s.handleJSONRPC)
}

type rpcRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      interface{}       `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params,omitempty"`
}

type jobRef struct {
	ID string `json:"optimization_id"`
}

// handleJSONRPC handles JSON-RPC 2.0 requests. Every method takes a single
// object as its first positional parameter.
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	var request rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.respondWithError(w, codeParseError, "Parse error", nil)
		return
	}

	// Validate JSON-RPC 2.0 request
	if request.JSONRPC != "2.0" || request.Method == "" {
		s.respondWithError(w, codeInvalidRequest, "Invalid Request", request.ID)
		return
	}

	var result interface{}
	var err error

	switch request.Method {
	case "optimization.start":
		var req StartRequest
		if err = decodeParam(request.Params, &req); err == nil {
			var state *OptimizationState
			if state, err = s.startJob(req); err == nil {
				result = map[string]interface{}{
					"optimization_id": state.ID,
					"status":          StatusPending,
				}
			}
		}
	case "optimization.status":
		var ref jobRef
		if err = decodeRef(request.Params, &ref); err == nil {
			result, err = s.jobStatus(ref.ID)
		}
	case "optimization.cancel":
		var ref jobRef
		if err = decodeRef(request.Params, &ref); err == nil {
			if err = s.cancelJob(ref.ID); err == nil {
				result = map[string]string{"status": StatusCancelled}
			}
		}
	case "problems.list":
		result = problems.Names()
	default:
		s.respondWithError(w, codeMethodNotFound, "Method not found", request.ID)
		return
	}

	if err != nil {
		code := codeServerError
		switch {
		case errors.Is(err, ErrJobNotFound):
			code = codeJobNotFound
		case errors.Is(err, ErrInvalidParams):
			code = codeInvalidParams
		}
		s.respondWithError(w, code, err.Error(), request.ID)
		return
	}

	// Send successful response
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      request.ID,
		"result":  result,
	})
}

func decodeParam(params []json.RawMessage, v interface{}) error {
	if len(params) == 0 {
		return fmt.Errorf("%w: missing required parameters", ErrInvalidParams)
	}
	if err := json.Unmarshal(params[0], v); err != nil {
		return fmt.Errorf("%w: invalid parameter format, expected object: %v", ErrInvalidParams, err)
	}
	return nil
}

func decodeRef(params []json.RawMessage, ref *jobRef) error {
	if err := decodeParam(params, ref); err != nil {
		return err
	}
	if ref.ID == "" {
		return fmt.Errorf("%w: optimization_id is required", ErrInvalidParams)
	}
	return nil
}

// respondWithError sends a JSON-RPC 2.0 error response
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string, id interface{}) {
	s.logger.Warn("RPC error", map[string]interface{}{
		"code":    code,
		"message": message,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jsonrpc": "2.0",
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
		"id": id,
	})
}

// Close cancels every job and waits for the workers to return.
func (s *Server) Close() error {
	s.optimizationsMu.Lock()
	for _, opt := range s.optimizations {
		if opt.CancelFunc != nil {
			opt.CancelFunc()
		}
	}
	s.optimizationsMu.Unlock()

	s.wg.Wait()
	return nil
}

// handleProblems lists the problems jobs can run.
func (s *Server) handleProblems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"problems": problems.Names()})
}

// handleOptimize handles POST /optimize, starting a new job
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	state, err := s.startJob(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"optimization_id": state.ID,
		"status":          StatusPending,
	})
}

// handleStatus handles GET /status/{id}
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.jobStatus(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// handleFrontCSV streams the final archive of a completed job as CSV.
func (s *Server) handleFrontCSV(w http.ResponseWriter, r *http.Request) {
	s.optimizationsMu.RLock()
	state, exists := s.optimizations[chi.URLParam(r, "id")]
	if !exists {
		s.optimizationsMu.RUnlock()
		writeError(w, http.StatusNotFound, ErrJobNotFound)
		return
	}
	result, problem, status := state.Result, state.problem, state.Status
	s.optimizationsMu.RUnlock()

	if result == nil {
		writeError(w, http.StatusConflict, fmt.Errorf("optimization is %s", status))
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	if err := report.WriteCSV(w, result.Archive, problem.NumObjectives(), problem.NumVariables()); err != nil {
		s.logger.Error("Writing CSV failed", map[string]interface{}{"error": err.Error()})
	}
}

// handleCancel handles DELETE /optimization/{id}
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	err := s.cancelJob(chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, ErrJobNotFound):
		writeError(w, http.StatusNotFound, err)
	case err != nil:
		writeError(w, http.StatusConflict, err)
	default:
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "cancellation requested",
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]interface{}{
		"error": err.Error(),
	})
}
