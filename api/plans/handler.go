// Package plans exposes planning runs over HTTP.
package plans

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kilianp07/pumpplan/core/logger"
	"github.com/kilianp07/pumpplan/core/plan"
	"github.com/kilianp07/pumpplan/core/reference"
	"github.com/kilianp07/pumpplan/infra/store"
)

// Runner computes a plan and hands it to the configured sinks.
type Runner interface {
	Plan(ctx context.Context, req plan.Request) (*plan.Result, error)
}

// Store reads finished runs.
type Store interface {
	ListRuns(ctx context.Context, year int) ([]store.RunRecord, error)
	GetRun(ctx context.Context, id string) (store.RunRecord, error)
	Cells(ctx context.Context, id string, from, to int) ([]store.CellRecord, error)
}

// Options configures the router.
type Options struct {
	Runner Runner
	// Store may be nil; the read endpoints then answer 501.
	Store Store
	// Token, when set, must be presented as a Bearer token.
	Token string
	// Timeout bounds one plan request; it defaults to two minutes.
	Timeout time.Duration
	Log     logger.Logger
}

type server struct {
	runner  Runner
	store   Store
	token   string
	timeout time.Duration
	log     logger.Logger
}

// RunResponse is the answer to a plan request.
type RunResponse struct {
	RunID   string       `json:"run_id"`
	Year    int          `json:"year"`
	Target  int          `json:"target"`
	Summary plan.Summary `json:"summary"`
	Error   string       `json:"error,omitempty"`
}

// NewRouter returns the HTTP handler of the plans API.
func NewRouter(opts Options) http.Handler {
	s := &server{
		runner:  opts.Runner,
		store:   opts.Store,
		token:   opts.Token,
		timeout: opts.Timeout,
		log:     logger.OrNop(opts.Log),
	}
	if s.timeout <= 0 {
		s.timeout = 2 * time.Minute
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api/plans", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)
		r.Get("/{id}", s.handleGet)
		r.Get("/{id}/cells", s.handleCells)
	})
	return r
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debugw("http request", map[string]any{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		})
	})
}

func (s *server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			next.ServeHTTP(w, r)
			return
		}
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req plan.Request
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	res, err := s.runner.Plan(ctx, req)
	status := statusOf(err)
	if res == nil {
		s.log.Errorf("plan %d: %v", req.Year, err)
		respondError(w, status, err.Error())
		return
	}
	resp := RunResponse{RunID: res.RunID, Year: res.Year, Target: res.Target, Summary: res.Summary}
	if err != nil {
		s.log.Warnf("plan %d finished with error: %v", req.Year, err)
		resp.Error = err.Error()
	}
	respondJSON(w, status, resp)
}

// statusOf maps run errors to HTTP status codes.
func statusOf(err error) int {
	var iv *plan.InputValidationError
	var uc *plan.UnreachableConstraintError
	var ce *reference.ConfigurationError
	switch {
	case err == nil:
		return http.StatusCreated
	case errors.As(err, &iv):
		return http.StatusBadRequest
	case errors.As(err, &uc):
		return http.StatusUnprocessableEntity
	case errors.As(err, &ce):
		return http.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *server) handleList(w http.ResponseWriter, r *http.Request) {
	if !s.hasStore(w) {
		return
	}
	year := 0
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = y
	}
	runs, err := s.store.ListRuns(r.Context(), year)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []store.RunRecord{}
	}
	respondJSON(w, http.StatusOK, runs)
}

func (s *server) handleGet(w http.ResponseWriter, r *http.Request) {
	if !s.hasStore(w) {
		return
	}
	run, err := s.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, run)
}

func (s *server) handleCells(w http.ResponseWriter, r *http.Request) {
	if !s.hasStore(w) {
		return
	}
	from, to := 0, -1
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "invalid from")
			return
		}
		from = n
	}
	if v := q.Get("to"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < from {
			respondError(w, http.StatusBadRequest, "invalid to")
			return
		}
		to = n
	}
	cells, err := s.store.Cells(r.Context(), chi.URLParam(r, "id"), from, to)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if cells == nil {
		cells = []store.CellRecord{}
	}
	respondJSON(w, http.StatusOK, cells)
}

func (s *server) hasStore(w http.ResponseWriter) bool {
	if s.store == nil {
		respondError(w, http.StatusNotImplemented, "run store disabled")
		return false
	}
	return true
}

func (s *server) respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	s.log.Errorf("store: %v", err)
	respondError(w, http.StatusInternalServerError, err.Error())
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
