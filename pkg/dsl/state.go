package dsl

import (
	"fmt"

	"github.com/aretw0/journey/pkg/domain"
	"github.com/aretw0/journey/pkg/schema"
)

// StateBuilder provides a fluent API for configuring a state and its
// outbound transitions.
type StateBuilder struct {
	spec        schema.StateSpec
	transitions []schema.TransitionSpec
	builder     *Builder
}

// Describe sets the description of the state.
func (s *StateBuilder) Describe(text string) *StateBuilder {
	s.spec.Description = text
	return s
}

// Dwell sets the days a customer spends in the state per visit.
func (s *StateBuilder) Dwell(days float64) *StateBuilder {
	s.spec.DwellDays = days
	return s
}

// Go adds an outbound transition to target taken with the given probability.
// Transitions keep their call order, which is the order the simulator draws in.
// The target does not need to be declared yet.
func (s *StateBuilder) Go(target string, probability float64) *StateBuilder {
	s.transitions = append(s.transitions, schema.TransitionSpec{
		FromState:   s.spec.Name,
		ToState:     target,
		Probability: probability,
	})
	return s
}

// Via sets the channel of the last transition added with Go.
func (s *StateBuilder) Via(channel string) *StateBuilder {
	if t := s.last("Via"); t != nil {
		t.Channel = channel
	}
	return s
}

// On sets the trigger of the last transition added with Go.
func (s *StateBuilder) On(trigger string) *StateBuilder {
	if t := s.last("On"); t != nil {
		t.Trigger = trigger
	}
	return s
}

// Brief sets the content brief of the last transition added with Go.
func (s *StateBuilder) Brief(text string) *StateBuilder {
	if t := s.last("Brief"); t != nil {
		t.ContentBrief = text
	}
	return s
}

// State jumps back to the journey builder to declare another state.
func (s *StateBuilder) State(name string) *StateBuilder {
	return s.builder.State(name)
}

// Build finishes the chain by building the whole journey.
func (s *StateBuilder) Build() (*domain.Journey, error) {
	return s.builder.Build()
}

// MustBuild finishes the chain like Build but panics on error.
func (s *StateBuilder) MustBuild() *domain.Journey {
	return s.builder.MustBuild()
}

func (s *StateBuilder) last(method string) *schema.TransitionSpec {
	if len(s.transitions) == 0 {
		s.builder.errs = append(s.builder.errs,
			fmt.Errorf("%s called on state %q before any Go", method, s.spec.Name))
		return nil
	}
	return &s.transitions[len(s.transitions)-1]
}
