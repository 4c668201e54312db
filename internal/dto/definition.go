package dto

import (
	"fmt"
	"reflect"

	"github.com/aretw0/journey/pkg/domain"
	"github.com/aretw0/journey/pkg/schema"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Definition is the file representation of a journey.
// It uses "mapstructure" tags so the same shape decodes from YAML, JSON and
// Markdown frontmatter. States may also be given as bare names.
type Definition struct {
	Name        string            `json:"name" yaml:"name" mapstructure:"name"`
	States      []StateDef        `json:"states" yaml:"states" mapstructure:"states"`
	Transitions []TransitionDef   `json:"transitions" yaml:"transitions" mapstructure:"transitions"`
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty" mapstructure:"metadata"`
}

type StateDef struct {
	Name        string  `json:"name" yaml:"name" mapstructure:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	DwellDays   float64 `json:"dwell_days,omitempty" yaml:"dwell_days,omitempty" mapstructure:"dwell_days"`
}

// TransitionDef accepts both the short (from, to) and the full
// (from_state, to_state) endpoint keys. The full keys win when both are set.
type TransitionDef struct {
	From         string  `json:"from,omitempty" yaml:"from,omitempty" mapstructure:"from"`
	FromState    string  `json:"from_state,omitempty" yaml:"from_state,omitempty" mapstructure:"from_state"`
	To           string  `json:"to,omitempty" yaml:"to,omitempty" mapstructure:"to"`
	ToState      string  `json:"to_state,omitempty" yaml:"to_state,omitempty" mapstructure:"to_state"`
	Trigger      string  `json:"trigger,omitempty" yaml:"trigger,omitempty" mapstructure:"trigger"`
	Probability  float64 `json:"probability" yaml:"probability" mapstructure:"probability"`
	Channel      string  `json:"channel,omitempty" yaml:"channel,omitempty" mapstructure:"channel"`
	ContentBrief string  `json:"content_brief,omitempty" yaml:"content_brief,omitempty" mapstructure:"content_brief"`
}

// Parse decodes a YAML or JSON journey definition.
func Parse(data []byte) (*Definition, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse journey definition: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("journey definition is empty")
	}
	return Decode(raw)
}

// Decode maps generic key/value data, such as parsed frontmatter, onto a Definition.
func Decode(raw map[string]any) (*Definition, error) {
	var def Definition
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: stateNameHook,
		Result:     &def,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode journey definition: %w", err)
	}
	return &def, nil
}

// stateNameHook turns a bare string state entry into a StateDef.
func stateNameHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() == reflect.String && to == reflect.TypeOf(StateDef{}) {
		return StateDef{Name: data.(string)}, nil
	}
	return data, nil
}

// Specs returns the schema input described by the definition.
func (d *Definition) Specs() ([]schema.StateSpec, []schema.TransitionSpec) {
	states := make([]schema.StateSpec, len(d.States))
	for i, s := range d.States {
		states[i] = schema.StateSpec{Name: s.Name, Description: s.Description, DwellDays: s.DwellDays}
	}
	transitions := make([]schema.TransitionSpec, len(d.Transitions))
	for i, t := range d.Transitions {
		transitions[i] = schema.TransitionSpec{
			FromState:    firstNonEmpty(t.FromState, t.From),
			ToState:      firstNonEmpty(t.ToState, t.To),
			Trigger:      t.Trigger,
			Probability:  t.Probability,
			Channel:      t.Channel,
			ContentBrief: t.ContentBrief,
		}
	}
	return states, transitions
}

// Build validates the definition into a Journey.
func (d *Definition) Build() (*domain.Journey, error) {
	states, transitions := d.Specs()
	return schema.Build(d.Name, states, transitions)
}

// FromJourney renders a journey as a definition using the full endpoint keys.
func FromJourney(j *domain.Journey) *Definition {
	def := &Definition{
		Name:        j.Name,
		States:      make([]StateDef, len(j.States)),
		Transitions: make([]TransitionDef, len(j.Transitions)),
	}
	for i, s := range j.States {
		def.States[i] = StateDef(s)
	}
	for i, t := range j.Transitions {
		def.Transitions[i] = TransitionDef{
			FromState:    t.FromState,
			ToState:      t.ToState,
			Trigger:      t.Trigger,
			Probability:  t.Probability,
			Channel:      t.Channel,
			ContentBrief: t.ContentBrief,
		}
	}
	return def
}

// Map renders the definition as generic data, the inverse of Decode.
func (d *Definition) Map() (map[string]any, error) {
	var raw map[string]any
	out, err := yaml.Marshal(d)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(out, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
