package observability

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/journey/pkg/domain"
	"github.com/aretw0/journey/pkg/schema"
	"github.com/aretw0/journey/pkg/simulation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation outcomes used as the "outcome" label.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Collector bundles the journey metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	Simulations        *prometheus.CounterVec
	SimulationDuration *prometheus.HistogramVec
	Customers          *prometheus.CounterVec
	ConversionRate     *prometheus.GaugeVec
	Operations         *prometheus.CounterVec
}

var _ simulation.Observer = (*Collector)(nil)

// NewCollector registers the metrics against reg, defaulting to the global
// Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	simulations, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "journey_simulations_total",
		Help: "Completed cohort simulations, labeled by journey.",
	}, []string{"journey_id"}), "journey_simulations_total")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "journey_simulation_duration_seconds",
		Help:    "Wall time of one cohort simulation.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	}, []string{"journey_id"}), "journey_simulation_duration_seconds")
	if err != nil {
		return nil, err
	}

	customers, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "journey_simulated_customers_total",
		Help: "Simulated customers by final outcome (converted, abandoned, stuck, other).",
	}, []string{"journey_id", "outcome"}), "journey_simulated_customers_total")
	if err != nil {
		return nil, err
	}

	rate, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "journey_last_conversion_rate_percent",
		Help: "Conversion rate of the most recent simulation of a journey.",
	}, []string{"journey_id"}), "journey_last_conversion_rate_percent")
	if err != nil {
		return nil, err
	}

	ops, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "journey_operations_total",
		Help: "Engine operations, labeled by operation and outcome.",
	}, []string{"operation", "outcome"}), "journey_operations_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:           gatherer,
		Simulations:        simulations,
		SimulationDuration: duration,
		Customers:          customers,
		ConversionRate:     rate,
		Operations:         ops,
	}, nil
}

// ObserveSimulation records one finished simulation.
func (c *Collector) ObserveSimulation(res *simulation.Result, elapsed time.Duration) {
	if c == nil || res == nil {
		return
	}
	id := res.JourneyID
	c.Simulations.WithLabelValues(id).Inc()
	c.SimulationDuration.WithLabelValues(id).Observe(elapsed.Seconds())
	c.ConversionRate.WithLabelValues(id).Set(res.ConversionRate)

	other := res.CohortSize - res.Converted - res.Abandoned - res.Stuck
	c.Customers.WithLabelValues(id, "converted").Add(float64(res.Converted))
	c.Customers.WithLabelValues(id, "abandoned").Add(float64(res.Abandoned))
	c.Customers.WithLabelValues(id, "stuck").Add(float64(res.Stuck))
	if other > 0 {
		c.Customers.WithLabelValues(id, "other").Add(float64(other))
	}
}

// ObserveOperation counts one engine operation and classifies err.
func (c *Collector) ObserveOperation(op string, err error) {
	if c == nil {
		return
	}
	c.Operations.WithLabelValues(op, Outcome(err)).Inc()
}

// Outcome maps an error to an outcome label.
func Outcome(err error) string {
	var vErr *schema.ValidationError
	var uErr *domain.UsageError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrJourneyNotFound):
		return OutcomeNotFound
	case errors.As(err, &vErr), errors.As(err, &uErr):
		return OutcomeInvalid
	}
	return OutcomeError
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
