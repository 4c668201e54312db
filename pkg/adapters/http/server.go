package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aretw0/journey"
	"github.com/aretw0/journey/internal/dto"
	"github.com/aretw0/journey/pkg/analysis"
	"github.com/aretw0/journey/pkg/domain"
	"github.com/aretw0/journey/pkg/schema"
	"github.com/aretw0/journey/pkg/simulation"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Request limits. A single request may not simulate more than
// MaxCohortSize customers per run nor more than MaxSeeds runs.
const (
	MaxBodyBytes  = 1 << 20
	MaxCohortSize = 100_000
	MaxSeeds      = 64
)

// Engine is the subset of *journey.Engine served over HTTP.
type Engine interface {
	Create(ctx context.Context, name string, states []schema.StateSpec, transitions []schema.TransitionSpec) (*domain.Journey, error)
	Get(ctx context.Context, id string) (*domain.Journey, error)
	List(ctx context.Context) ([]journey.Summary, error)
	Delete(ctx context.Context, id string) error
	Simulate(ctx context.Context, id string, cohortSize int, seed int64) (*simulation.Result, error)
	SimulateBatch(ctx context.Context, id string, cohortSize int, seeds []int64) ([]*simulation.Result, error)
	AnalyzeBottleneck(ctx context.Context, id string, observed map[string]float64) (*analysis.BottleneckReport, error)
	MapTouchpoints(ctx context.Context, id string) (*analysis.TouchpointReport, error)
	Graph(ctx context.Context, id string, res *simulation.Result) (string, error)
}

var _ Engine = (*journey.Engine)(nil)

// Server routes REST requests to the engine.
type Server struct {
	Engine  Engine
	logger  *slog.Logger
	metrics http.Handler
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// SimulateRequest is the body of POST /journeys/{id}/simulate.
// A non-empty Seeds runs a batch and returns one result per seed.
type SimulateRequest struct {
	CohortSize int     `json:"cohort_size"`
	Seed       *int64  `json:"seed,omitempty"`
	Seeds      []int64 `json:"seeds,omitempty"`
}

// BottleneckRequest is the body of POST /journeys/{id}/bottleneck.
// Omitting ObservedData analyzes the theoretical flow.
type BottleneckRequest struct {
	ObservedData map[string]float64 `json:"observed_data,omitempty"`
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error      string   `json:"error"`
	Violations []string `json:"violations,omitempty"`
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{Engine: engine}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/journeys", func(r chi.Router) {
		r.Get("/", s.listJourneys)
		r.Post("/", s.createJourney)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getJourney)
			r.Delete("/", s.deleteJourney)
			r.Post("/simulate", s.simulate)
			r.Get("/bottleneck", s.bottleneck)
			r.Post("/bottleneck", s.bottleneck)
			r.Get("/touchpoints", s.touchpoints)
			r.Get("/graph", s.graph)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listJourneys(w http.ResponseWriter, r *http.Request) {
	list, err := s.Engine.List(r.Context())
	if err != nil {
		s.writeError(w, "list", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// createJourney accepts the same JSON (or YAML) document as definition files.
func (s *Server) createJourney(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		s.badRequest(w, "create", err)
		return
	}
	def, err := dto.Parse(body)
	if err != nil {
		s.badRequest(w, "create", err)
		return
	}

	states, transitions := def.Specs()
	j, err := s.Engine.Create(r.Context(), def.Name, states, transitions)
	if err != nil {
		s.writeError(w, "create", err)
		return
	}
	writeJSON(w, http.StatusCreated, j)
}

func (s *Server) getJourney(w http.ResponseWriter, r *http.Request) {
	j, err := s.Engine.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func (s *Server) deleteJourney(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) simulate(w http.ResponseWriter, r *http.Request) {
	req := SimulateRequest{CohortSize: journey.DefaultCohortSize}
	if err := decodeOptional(w, r, &req); err != nil {
		s.badRequest(w, "simulate", err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := checkLimits(req.CohortSize, len(req.Seeds)); err != nil {
		s.writeError(w, "simulate", err)
		return
	}

	if len(req.Seeds) > 0 {
		results, err := s.Engine.SimulateBatch(r.Context(), id, req.CohortSize, req.Seeds)
		if err != nil {
			s.writeError(w, "simulate", err)
			return
		}
		writeJSON(w, http.StatusOK, results)
		return
	}

	seed := int64(journey.DefaultSeed)
	if req.Seed != nil {
		seed = *req.Seed
	}
	res, err := s.Engine.Simulate(r.Context(), id, req.CohortSize, seed)
	if err != nil {
		s.writeError(w, "simulate", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) bottleneck(w http.ResponseWriter, r *http.Request) {
	var req BottleneckRequest
	if r.Method == http.MethodPost {
		if err := decodeOptional(w, r, &req); err != nil {
			s.badRequest(w, "bottleneck", err)
			return
		}
	}
	report, err := s.Engine.AnalyzeBottleneck(r.Context(), chi.URLParam(r, "id"), req.ObservedData)
	if err != nil {
		s.writeError(w, "bottleneck", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) touchpoints(w http.ResponseWriter, r *http.Request) {
	report, err := s.Engine.MapTouchpoints(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, "touchpoints", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// graph returns Mermaid source. With ?simulate=true the funnel overlay of a
// run with cohort_size and seed (query parameters) is included.
func (s *Server) graph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q := r.URL.Query()

	var res *simulation.Result
	if on, _ := strconv.ParseBool(q.Get("simulate")); on {
		cohort, err := intParam(q.Get("cohort_size"), journey.DefaultCohortSize)
		if err != nil {
			s.badRequest(w, "graph", err)
			return
		}
		seed, err := intParam(q.Get("seed"), journey.DefaultSeed)
		if err != nil {
			s.badRequest(w, "graph", err)
			return
		}
		if err := checkLimits(cohort, 0); err != nil {
			s.writeError(w, "graph", err)
			return
		}
		res, err = s.Engine.Simulate(r.Context(), id, cohort, int64(seed))
		if err != nil {
			s.writeError(w, "graph", err)
			return
		}
	}

	out, err := s.Engine.Graph(r.Context(), id, res)
	if err != nil {
		s.writeError(w, "graph", err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.mermaid; charset=utf-8")
	io.WriteString(w, out)
}

// decodeOptional decodes a JSON body into v, leaving v untouched when the body is empty.
func decodeOptional(w http.ResponseWriter, r *http.Request, v any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func checkLimits(cohortSize, seeds int) error {
	if cohortSize > MaxCohortSize {
		return domain.NewUsageError("simulate", "cohort size %d exceeds the maximum of %d", cohortSize, MaxCohortSize)
	}
	if seeds > MaxSeeds {
		return domain.NewUsageError("simulate", "%d seeds exceed the maximum of %d", seeds, MaxSeeds)
	}
	return nil
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// StatusFor maps engine errors to HTTP status codes.
func StatusFor(err error) int {
	var vErr *schema.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUsage):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrJourneyNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "op", op, "error", err)
	} else {
		s.logger.Debug("request rejected", "op", op, "status", status, "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Violations: schema.Messages(err)})
}

func (s *Server) badRequest(w http.ResponseWriter, op string, err error) {
	s.logger.Debug("bad request", "op", op, "error", err)
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}
