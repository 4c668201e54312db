package schema

import (
	"fmt"
	"math"
	"strings"

	"github.com/aretw0/journey/pkg/domain"
)

// StateSpec is the unvalidated description of a state.
// A zero DwellDays means domain.DefaultDwellDays.
type StateSpec struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	DwellDays   float64 `json:"dwell_days,omitempty" yaml:"dwell_days,omitempty"`
}

// TransitionSpec is the unvalidated description of a transition.
type TransitionSpec struct {
	FromState    string  `json:"from_state" yaml:"from_state"`
	ToState      string  `json:"to_state" yaml:"to_state"`
	Trigger      string  `json:"trigger,omitempty" yaml:"trigger,omitempty"`
	Probability  float64 `json:"probability" yaml:"probability"`
	Channel      string  `json:"channel,omitempty" yaml:"channel,omitempty"`
	ContentBrief string  `json:"content_brief,omitempty" yaml:"content_brief,omitempty"`
}

// Build validates a journey definition and returns the immutable Journey.
// On failure the error is a *ValidationError listing every violation.
func Build(name string, states []StateSpec, transitions []TransitionSpec) (*domain.Journey, error) {
	var errs []*Violation
	add := func(field, reason string, value any) {
		errs = append(errs, &Violation{Field: field, Reason: reason, Value: value})
	}

	if strings.TrimSpace(name) == "" {
		add("name", "journey name must not be empty", name)
	} else if domain.JourneyID(name) == "" {
		add("name", fmt.Sprintf("journey name %q has no letters or digits to derive an id from", name), name)
	}

	// 1. States: unique, named, positive dwell
	declared := make(map[string]bool, len(states))
	for i, s := range states {
		field := fmt.Sprintf("states[%d]", i)
		switch {
		case s.Name == "":
			add(field+".name", "state name must not be empty", s.Name)
		case declared[s.Name]:
			add(field+".name", fmt.Sprintf("duplicate state name %q", s.Name), s.Name)
		default:
			declared[s.Name] = true
		}

		if s.DwellDays < 0 || math.IsNaN(s.DwellDays) || math.IsInf(s.DwellDays, 0) {
			add(field+".dwell_days", fmt.Sprintf("dwell days %v must be a positive number", s.DwellDays), s.DwellDays)
		}
	}

	// 2. Transitions: known endpoints, probability in [0, 1]
	outbound := make(map[string]float64)
	for i, t := range transitions {
		field := fmt.Sprintf("transitions[%d]", i)
		if !declared[t.FromState] {
			add(field+".from_state", fmt.Sprintf("from_state %q not in states", t.FromState), t.FromState)
		}
		if !declared[t.ToState] {
			add(field+".to_state", fmt.Sprintf("to_state %q not in states", t.ToState), t.ToState)
		}
		if math.IsNaN(t.Probability) || t.Probability < 0 || t.Probability > 1 {
			add(field+".probability", fmt.Sprintf("probability %v not in [0, 1]", t.Probability), t.Probability)
			continue
		}
		outbound[t.FromState] += t.Probability
	}

	// 3. Outbound mass per state; the remainder is attrition.
	for _, s := range states {
		if sum, ok := outbound[s.Name]; ok && sum > 1+domain.ProbabilityTolerance {
			add(fmt.Sprintf("states[%q]", s.Name),
				fmt.Sprintf("outbound probabilities sum to %.4f (>1)", sum), sum)
			delete(outbound, s.Name)
		}
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Violations: errs}
	}

	j := &domain.Journey{
		ID:          domain.JourneyID(name),
		Name:        name,
		States:      make([]domain.State, len(states)),
		Transitions: make([]domain.Transition, len(transitions)),
	}
	for i, s := range states {
		dwell := s.DwellDays
		if dwell == 0 {
			dwell = domain.DefaultDwellDays
		}
		j.States[i] = domain.State{Name: s.Name, Description: s.Description, DwellDays: dwell}
	}
	for i, t := range transitions {
		channel := t.Channel
		if channel == "" {
			channel = domain.DefaultChannel
		}
		j.Transitions[i] = domain.Transition{
			FromState:    t.FromState,
			ToState:      t.ToState,
			Trigger:      t.Trigger,
			Probability:  t.Probability,
			Channel:      channel,
			ContentBrief: t.ContentBrief,
		}
	}

	return j, nil
}

// Specs converts a validated journey back into its raw specifications.
// Feeding them back to Build with j.Name yields an equivalent journey.
func Specs(j *domain.Journey) ([]StateSpec, []TransitionSpec) {
	states := make([]StateSpec, len(j.States))
	for i, s := range j.States {
		states[i] = StateSpec{Name: s.Name, Description: s.Description, DwellDays: s.DwellDays}
	}
	transitions := make([]TransitionSpec, len(j.Transitions))
	for i, t := range j.Transitions {
		transitions[i] = TransitionSpec(t)
	}
	return states, transitions
}
