package dsl

import (
	"fmt"

	"github.com/aretw0/journey/pkg/domain"
	"github.com/aretw0/journey/pkg/schema"
)

// Builder manages the journey construction.
// States are declared in the order of their first State call; the first one
// is the entry and the last one is the goal.
type Builder struct {
	name   string
	order  []string
	states map[string]*StateBuilder
	errs   []error
}

// New creates a new journey builder.
func New(name string) *Builder {
	return &Builder{
		name:   name,
		states: make(map[string]*StateBuilder),
	}
}

// State declares a state in the journey.
// If the state already exists, it returns the existing builder without
// changing its position.
func (b *Builder) State(name string) *StateBuilder {
	if sb, ok := b.states[name]; ok {
		return sb
	}
	sb := &StateBuilder{
		spec:    schema.StateSpec{Name: name},
		builder: b,
	}
	b.states[name] = sb
	b.order = append(b.order, name)
	return sb
}

// Build validates the declared states and transitions into a Journey.
// Validation failures are returned as a *schema.ValidationError.
func (b *Builder) Build() (*domain.Journey, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("dsl: %w", b.errs[0])
	}

	states := make([]schema.StateSpec, 0, len(b.order))
	var transitions []schema.TransitionSpec
	for _, name := range b.order {
		sb := b.states[name]
		states = append(states, sb.spec)
		transitions = append(transitions, sb.transitions...)
	}

	return schema.Build(b.name, states, transitions)
}

// MustBuild is like Build but panics on error. Intended for tests and examples.
func (b *Builder) MustBuild() *domain.Journey {
	j, err := b.Build()
	if err != nil {
		panic(err)
	}
	return j
}
