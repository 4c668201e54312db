package analysis

import (
	"math"

	"github.com/aretw0/journey/pkg/domain"
	"github.com/aretw0/journey/pkg/simulation"
)

// Mode tells where the flow values of a report came from.
type Mode string

const (
	ModeEmpirical   Mode = "empirical"
	ModeTheoretical Mode = "theoretical"
)

// Band is the coarse funnel position of a bottleneck.
type Band string

const (
	BandTop    Band = "top"
	BandMiddle Band = "middle"
	BandBottom Band = "bottom"
)

// Band boundaries on the normalised position idx/(n-1).
const (
	topBandLimit    = 0.3
	middleBandLimit = 0.6
)

var interventions = map[Band][]string{
	BandTop: {
		"Improve awareness messaging and targeting",
		"Test alternative acquisition channels",
		"Review entry criteria alignment with audience",
	},
	BandMiddle: {
		"Strengthen mid-funnel content and nurture sequences",
		"Add social proof and case studies at this stage",
		"Reduce friction in the transition to next stage",
	},
	BandBottom: {
		"Simplify the conversion/purchase process",
		"Add urgency or incentive at decision point",
		"Implement retargeting for drop-offs at this stage",
		"Review pricing or offer alignment",
	},
}

// Pair is a consecutive pair of declared states.
type Pair struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// String renders the pair as "From -> To".
func (p Pair) String() string {
	return p.From + " -> " + p.To
}

// FlowPoint is the flow value used for one state.
type FlowPoint struct {
	State string  `json:"state"`
	Flow  float64 `json:"flow"`
}

// BottleneckReport is the result of AnalyzeBottleneck.
// Pair is nil when the journey has fewer than two states.
type BottleneckReport struct {
	JourneyID       string  `json:"journey_id"`
	Mode            Mode    `json:"mode"`
	BottleneckState string  `json:"bottleneck_state,omitempty"`
	Pair            *Pair   `json:"pair,omitempty"`
	DropOffRate     float64 `json:"drop_off_rate"`

	StateFlow      []FlowPoint `json:"state_flow"`
	UpstreamStates []string    `json:"upstream_states"`

	Band                     Band     `json:"band,omitempty"`
	RecommendedInterventions []string `json:"recommended_interventions"`
}

// Flow returns the flow value of a state, or 0 when it is not in the report.
func (r *BottleneckReport) Flow(state string) float64 {
	for _, p := range r.StateFlow {
		if p.State == state {
			return p.Flow
		}
	}
	return 0
}

// TheoreticalFlow propagates a unit of flow from the entry state.
// States are processed once each in declared order, and each passes its
// accumulated flow along its outbound transitions. Flow arriving at an
// already processed state through a back edge is recorded but not propagated.
func TheoreticalFlow(j *domain.Journey) map[string]float64 {
	flow := make(map[string]float64, len(j.States))
	if len(j.States) == 0 {
		return flow
	}
	for _, st := range j.States {
		flow[st.Name] = 0
	}
	flow[j.Entry()] = 1

	for _, st := range j.States {
		for _, tr := range j.Outbound(st.Name) {
			flow[tr.ToState] += flow[st.Name] * tr.Probability
		}
	}
	return flow
}

// ObservedFlow converts a simulation funnel into per-state reach fractions,
// suitable as the observed input of AnalyzeBottleneck.
func ObservedFlow(res *simulation.Result) map[string]float64 {
	flow := make(map[string]float64, len(res.Funnel))
	if res.CohortSize <= 0 {
		return flow
	}
	for _, f := range res.Funnel {
		flow[f.State] = float64(f.Reached) / float64(res.CohortSize)
	}
	return flow
}

// AnalyzeBottleneck locates the consecutive declared-state pair with the
// largest relative drop. A nil observed map selects theoretical mode.
// Observed states missing from the map count as 0.
func AnalyzeBottleneck(j *domain.Journey, observed map[string]float64) (*BottleneckReport, error) {
	if j == nil || len(j.States) == 0 {
		return nil, domain.NewUsageError("analyze bottleneck", "journey has no states")
	}

	report := &BottleneckReport{
		JourneyID:                j.ID,
		Mode:                     ModeTheoretical,
		UpstreamStates:           []string{},
		RecommendedInterventions: []string{},
	}

	flow := observed
	if observed != nil {
		for state, v := range observed {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, domain.NewUsageError("analyze bottleneck", "observed value for %q must be a finite non-negative number, got %v", state, v)
			}
		}
		report.Mode = ModeEmpirical
	} else {
		flow = TheoreticalFlow(j)
	}

	names := j.StateNames()
	report.StateFlow = make([]FlowPoint, len(names))
	for i, name := range names {
		report.StateFlow[i] = FlowPoint{State: name, Flow: flow[name]}
	}

	worst := -1
	worstDrop := 0.0
	for i := 0; i+1 < len(names); i++ {
		drop := relativeDrop(flow[names[i]], flow[names[i+1]])
		if worst < 0 || drop > worstDrop {
			worst, worstDrop = i, drop
		}
	}
	if worst < 0 {
		return report, nil
	}

	report.BottleneckState = names[worst]
	report.Pair = &Pair{From: names[worst], To: names[worst+1]}
	report.DropOffRate = math.Max(worstDrop, 0) * 100
	report.UpstreamStates = append(report.UpstreamStates, names[:worst+1]...)
	report.Band = bandOf(worst, len(names))
	report.RecommendedInterventions = append(report.RecommendedInterventions, interventions[report.Band]...)

	return report, nil
}

// relativeDrop is (prev-next)/prev, or 1 when nothing arrives upstream.
func relativeDrop(prev, next float64) float64 {
	if prev <= 0 {
		return 1
	}
	return (prev - next) / prev
}

func bandOf(idx, n int) Band {
	position := float64(idx) / float64(max(n-1, 1))
	switch {
	case position < topBandLimit:
		return BandTop
	case position < middleBandLimit:
		return BandMiddle
	default:
		return BandBottom
	}
}
