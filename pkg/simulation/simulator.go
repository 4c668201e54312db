package simulation

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/aretw0/journey/pkg/domain"
)

// pcgStream is the fixed PCG stream selector; only the seed varies per run.
const pcgStream = 0x9e3779b97f4a7c15

// DefaultCheckpointEvery is how many customers are simulated between context checks.
const DefaultCheckpointEvery = 1024

// Observer receives every completed simulation.
type Observer interface {
	ObserveSimulation(res *Result, elapsed time.Duration)
}

// Simulator runs cohorts through journeys.
type Simulator struct {
	logger          *slog.Logger
	observer        Observer
	checkpointEvery int
}

// Option defines a functional option for configuring the Simulator.
type Option func(*Simulator)

// WithLogger sets a structured logger for run summaries.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulator) {
		s.logger = logger
	}
}

// WithObserver registers an observer notified after each successful run.
func WithObserver(o Observer) Option {
	return func(s *Simulator) {
		s.observer = o
	}
}

// WithCheckpointEvery sets how many customers run between cancellation checks.
// Checks happen between customers only, so they never alter the draw order.
func WithCheckpointEvery(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.checkpointEvery = n
		}
	}
}

// New creates a Simulator.
func New(opts ...Option) *Simulator {
	s := &Simulator{
		checkpointEvery: DefaultCheckpointEvery,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// Simulate runs cohortSize synthetic customers through j using the given seed.
func Simulate(j *domain.Journey, cohortSize int, seed int64) (*Result, error) {
	return New().Run(context.Background(), j, cohortSize, seed)
}

// Run simulates a cohort. It returns ctx.Err() if the context is cancelled
// before the cohort completes; no partial result is returned.
func (s *Simulator) Run(ctx context.Context, j *domain.Journey, cohortSize int, seed int64) (*Result, error) {
	if err := checkInput(j, cohortSize); err != nil {
		return nil, err
	}

	start := time.Now()
	p := compile(j)
	rng := rand.New(rand.NewPCG(uint64(seed), pcgStream))
	t := newTally(p)

	for c := 0; c < cohortSize; c++ {
		if c > 0 && c%s.checkpointEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		p.walk(rng, t, c+1)
	}

	res := t.result(p, j.ID, cohortSize, seed)
	elapsed := time.Since(start)

	s.logger.Debug("simulation finished",
		"journey", j.ID,
		"cohort_size", cohortSize,
		"seed", seed,
		"converted", res.Converted,
		"stuck", res.Stuck,
		"elapsed", elapsed,
	)
	if s.observer != nil {
		s.observer.ObserveSimulation(res, elapsed)
	}

	return res, nil
}

func checkInput(j *domain.Journey, cohortSize int) error {
	if j == nil {
		return domain.NewUsageError("simulate", "journey is nil")
	}
	if len(j.States) == 0 {
		return domain.NewUsageError("simulate", "journey %q has no states", j.ID)
	}
	if cohortSize <= 0 {
		return domain.NewUsageError("simulate", "cohort size must be positive, got %d", cohortSize)
	}
	return nil
}

// edge is a compiled transition; indices refer to declared state order.
type edge struct {
	to          int
	probability float64
	channel     string
}

// plan is the index-based form of a journey used by the customer loop.
type plan struct {
	names []string
	dwell []float64
	edges [][]edge
	goal  int
}

func compile(j *domain.Journey) *plan {
	p := &plan{
		names: j.StateNames(),
		dwell: make([]float64, len(j.States)),
		edges: make([][]edge, len(j.States)),
		goal:  len(j.States) - 1,
	}
	index := make(map[string]int, len(j.States))
	for i, st := range j.States {
		index[st.Name] = i
		p.dwell[i] = st.DwellDays
	}
	for _, tr := range j.Transitions {
		from, okFrom := index[tr.FromState]
		to, okTo := index[tr.ToState]
		if !okFrom || !okTo {
			continue
		}
		p.edges[from] = append(p.edges[from], edge{to: to, probability: tr.Probability, channel: tr.Channel})
	}
	return p
}

type outcome int

const (
	outcomeTerminal outcome = iota
	outcomeAbandoned
	outcomeStuck
)

// tally accumulates cohort statistics.
type tally struct {
	reach     []int
	visits    []int
	seen      []int // customer stamp of the last first-reach per state
	channels  map[string]int
	touches   int
	days      float64
	converted int
	abandoned int
	stuck     int
}

func newTally(p *plan) *tally {
	return &tally{
		reach:    make([]int, len(p.names)),
		visits:   make([]int, len(p.names)),
		seen:     make([]int, len(p.names)),
		channels: make(map[string]int),
	}
}

// walk simulates one customer. stamp is unique and non-zero per customer.
func (p *plan) walk(rng *rand.Rand, t *tally, stamp int) {
	current := 0
	steps := 0
	result := outcomeTerminal

	for {
		t.visits[current]++
		if t.seen[current] != stamp {
			t.seen[current] = stamp
			t.reach[current]++
		}
		t.days += p.dwell[current]

		out := p.edges[current]
		if len(out) == 0 {
			break
		}

		roll := rng.Float64()
		next := -1
		cumulative := 0.0
		for _, e := range out {
			cumulative += e.probability
			if roll < cumulative {
				next = e.to
				t.channels[e.channel]++
				t.touches++
				break
			}
		}
		if next < 0 {
			result = outcomeAbandoned
			break
		}

		current = next
		steps++
		if steps >= domain.MaxSimulationSteps {
			result = outcomeStuck
			break
		}
	}

	switch result {
	case outcomeStuck:
		t.stuck++
		return
	case outcomeAbandoned:
		t.abandoned++
	}
	if current == p.goal {
		t.converted++
	}
}

func (t *tally) result(p *plan, journeyID string, cohortSize int, seed int64) *Result {
	n := float64(cohortSize)
	res := &Result{
		JourneyID:            journeyID,
		CohortSize:           cohortSize,
		Seed:                 seed,
		Converted:            t.converted,
		ConversionRate:       float64(t.converted) / n * 100,
		AvgTouchpoints:       float64(t.touches) / n,
		AvgTimeToConvertDays: t.days / n,
		Abandoned:            t.abandoned,
		Stuck:                t.stuck,
		Funnel:               make([]FunnelStep, len(p.names)),
		DropOffs:             make([]DropOff, 0, len(p.names)),
		ChannelTouchpoints:   make(map[string]int, len(t.channels)),
		ChannelDistribution:  make(map[string]float64, len(t.channels)),
	}

	for i, name := range p.names {
		res.Funnel[i] = FunnelStep{
			State:       name,
			Reached:     t.reach[i],
			Visits:      t.visits[i],
			PctOfCohort: float64(t.reach[i]) / n * 100,
		}
	}

	for i := 1; i < len(p.names); i++ {
		rate := 0.0
		if prev := t.reach[i-1]; prev > 0 {
			rate = (1 - float64(t.reach[i])/float64(prev)) * 100
		}
		res.DropOffs = append(res.DropOffs, DropOff{From: p.names[i-1], To: p.names[i], Rate: rate})
	}

	for i := range res.DropOffs {
		if res.Bottleneck == nil || res.DropOffs[i].Rate > res.Bottleneck.Rate {
			d := res.DropOffs[i]
			res.Bottleneck = &d
		}
	}

	for ch, count := range t.channels {
		res.ChannelTouchpoints[ch] = count
		res.ChannelDistribution[ch] = float64(count) / float64(t.touches) * 100
	}

	return res
}
