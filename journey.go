package journey

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/aretw0/journey/internal/presentation/graph"
	"github.com/aretw0/journey/pkg/adapters/memory"
	"github.com/aretw0/journey/pkg/analysis"
	"github.com/aretw0/journey/pkg/domain"
	"github.com/aretw0/journey/pkg/ports"
	"github.com/aretw0/journey/pkg/schema"
	"github.com/aretw0/journey/pkg/simulation"
)

// Default run parameters used by the CLI and servers.
const (
	DefaultCohortSize = 1000
	DefaultSeed       = 42

	lockTTL = 10 * time.Second
)

// Observer receives simulation results and a record of every operation.
// *observability.Collector implements it.
type Observer interface {
	simulation.Observer
	ObserveOperation(op string, err error)
}

// Summary is the listing view of a stored or catalogued journey.
type Summary struct {
	ID          string    `json:"journey_id"`
	Name        string    `json:"name"`
	States      int       `json:"states"`
	Transitions int       `json:"transitions"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// Summary sources.
const (
	SourceStore   = "store"
	SourceCatalog = "catalog"
)

// Engine is the high-level entry point for building, storing, simulating and
// analyzing journeys. Stored journeys are never mutated by analysis calls.
type Engine struct {
	store    ports.JourneyStore
	catalog  ports.JourneyReader
	locker   ports.DistributedLocker
	observer Observer
	logger   *slog.Logger
	clock    func() time.Time
	workers  int

	simulator *simulation.Simulator
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore sets the journey store (default: in-memory).
func WithStore(s ports.JourneyStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithCatalog adds a read-only source consulted when a journey is not in the store.
func WithCatalog(r ports.JourneyReader) Option {
	return func(e *Engine) {
		e.catalog = r
	}
}

// WithLocker sets the lock used to serialize Create calls for the same journey.
func WithLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithObserver registers metrics for simulations and operations.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// WithClock overrides the time source used for CreatedAt/UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.clock = now
	}
}

// WithBatchWorkers bounds the goroutines used by SimulateBatch (0 = one per seed).
func WithBatchWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		e.store = memory.NewStore()
	}
	if e.locker == nil {
		e.locker = memory.NewLocker()
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if e.clock == nil {
		e.clock = time.Now
	}

	simOpts := []simulation.Option{simulation.WithLogger(e.logger)}
	if e.observer != nil {
		simOpts = append(simOpts, simulation.WithObserver(e.observer))
	}
	e.simulator = simulation.New(simOpts...)
	return e
}

// Create validates and stores a journey. Creating a journey whose derived ID
// already exists replaces it, keeping the original CreatedAt.
func (e *Engine) Create(ctx context.Context, name string, states []schema.StateSpec, transitions []schema.TransitionSpec) (j *domain.Journey, err error) {
	defer func() { e.observe("create", err) }()

	j, err = schema.Build(name, states, transitions)
	if err != nil {
		return nil, err
	}

	id := j.ID
	unlock, err := e.locker.Lock(ctx, "create:"+id, lockTTL)
	if err != nil {
		return nil, fmt.Errorf("lock journey %s: %w", id, err)
	}
	defer func() {
		if uerr := unlock(context.WithoutCancel(ctx)); uerr != nil {
			e.logger.Warn("failed to release lock", "journey_id", id, "error", uerr)
		}
	}()

	now := e.clock().UTC()
	j.CreatedAt, j.UpdatedAt = now, now

	existing, err := e.store.Load(ctx, j.ID)
	switch {
	case err == nil:
		j.CreatedAt = existing.CreatedAt
		e.logger.Info("replacing journey", "journey_id", j.ID)
	case errors.Is(err, domain.ErrJourneyNotFound):
	default:
		return nil, fmt.Errorf("load journey %s: %w", j.ID, err)
	}

	if err := e.store.Save(ctx, j); err != nil {
		return nil, fmt.Errorf("save journey %s: %w", j.ID, err)
	}

	e.logger.Info("journey created",
		"journey_id", j.ID,
		"states", len(j.States),
		"transitions", len(j.Transitions),
	)
	return j.Clone(), nil
}

// Get loads a journey from the store, then from the catalog.
func (e *Engine) Get(ctx context.Context, id string) (j *domain.Journey, err error) {
	defer func() { e.observe("get", err) }()
	return e.load(ctx, id)
}

func (e *Engine) load(ctx context.Context, id string) (*domain.Journey, error) {
	j, err := e.store.Load(ctx, id)
	if err == nil {
		return j, nil
	}
	if !errors.Is(err, domain.ErrJourneyNotFound) || e.catalog == nil {
		return nil, err
	}
	return e.catalog.Load(ctx, id)
}

// List returns a summary of every stored and catalogued journey, sorted by ID.
// A stored journey shadows a catalogued one with the same ID.
func (e *Engine) List(ctx context.Context) (out []Summary, err error) {
	defer func() { e.observe("list", err) }()

	seen := make(map[string]bool)
	collect := func(r ports.JourneyReader, source string) error {
		ids, err := r.List(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if seen[id] {
				continue
			}
			j, err := r.Load(ctx, id)
			if errors.Is(err, domain.ErrJourneyNotFound) {
				continue // removed or expired since List
			}
			if err != nil {
				return fmt.Errorf("load journey %s: %w", id, err)
			}
			seen[id] = true
			out = append(out, Summary{
				ID:          j.ID,
				Name:        j.Name,
				States:      len(j.States),
				Transitions: len(j.Transitions),
				Source:      source,
				CreatedAt:   j.CreatedAt,
			})
		}
		return nil
	}

	if err := collect(e.store, SourceStore); err != nil {
		return nil, err
	}
	if e.catalog != nil {
		if err := collect(e.catalog, SourceCatalog); err != nil {
			return nil, err
		}
	}

	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	if out == nil {
		out = []Summary{}
	}
	return out, nil
}

// Delete removes a journey from the store. Catalogued journeys are read-only.
func (e *Engine) Delete(ctx context.Context, id string) (err error) {
	defer func() { e.observe("delete", err) }()

	if err := e.store.Delete(ctx, id); err != nil {
		return err
	}
	e.logger.Info("journey deleted", "journey_id", id)
	return nil
}

// Simulate runs a cohort through the journey with the given seed.
func (e *Engine) Simulate(ctx context.Context, id string, cohortSize int, seed int64) (res *simulation.Result, err error) {
	defer func() { e.observe("simulate", err) }()

	j, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.simulator.Run(ctx, j, cohortSize, seed)
}

// SimulateBatch runs one cohort per seed; results are in seed order.
func (e *Engine) SimulateBatch(ctx context.Context, id string, cohortSize int, seeds []int64) (res []*simulation.Result, err error) {
	defer func() { e.observe("simulate_batch", err) }()

	j, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.simulator.RunBatch(ctx, j, cohortSize, seeds, e.workers)
}

// AnalyzeBottleneck finds the worst relative drop. A nil observed map analyzes
// the theoretical flow implied by the transition probabilities.
func (e *Engine) AnalyzeBottleneck(ctx context.Context, id string, observed map[string]float64) (r *analysis.BottleneckReport, err error) {
	defer func() { e.observe("analyze_bottleneck", err) }()

	j, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return analysis.AnalyzeBottleneck(j, observed)
}

// MapTouchpoints aggregates the journey's transitions by channel.
func (e *Engine) MapTouchpoints(ctx context.Context, id string) (r *analysis.TouchpointReport, err error) {
	defer func() { e.observe("map_touchpoints", err) }()

	j, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return analysis.MapTouchpoints(j), nil
}

// Graph renders the journey as a Mermaid flowchart. When res is not nil the
// states carry their simulated reach and the bottleneck is highlighted.
func (e *Engine) Graph(ctx context.Context, id string, res *simulation.Result) (out string, err error) {
	defer func() { e.observe("graph", err) }()

	j, err := e.load(ctx, id)
	if err != nil {
		return "", err
	}
	return graph.GenerateMermaid(j, graph.OverlayFromResult(res)), nil
}

func (e *Engine) observe(op string, err error) {
	if err != nil {
		e.logger.Debug("operation failed", "op", op, "error", err)
	}
	if e.observer != nil {
		e.observer.ObserveOperation(op, err)
	}
}
