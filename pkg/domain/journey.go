package domain

import "time"

// State is a stage of the journey a customer can occupy.
type State struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// DwellDays is the time a customer spends here before moving on.
	DwellDays float64 `json:"dwell_days" yaml:"dwell_days"`
}

// Transition moves a customer from one state to another with a given probability.
// Trigger and ContentBrief are descriptive only; Channel is used for reporting.
type Transition struct {
	FromState    string  `json:"from_state" yaml:"from_state"`
	ToState      string  `json:"to_state" yaml:"to_state"`
	Trigger      string  `json:"trigger,omitempty" yaml:"trigger,omitempty"`
	Probability  float64 `json:"probability" yaml:"probability"`
	Channel      string  `json:"channel" yaml:"channel"`
	ContentBrief string  `json:"content_brief,omitempty" yaml:"content_brief,omitempty"`
}

// Journey is a validated customer journey.
// Instances are produced by schema.Build and must be treated as read-only.
type Journey struct {
	ID          string       `json:"journey_id" yaml:"journey_id"`
	Name        string       `json:"name" yaml:"name"`
	States      []State      `json:"states" yaml:"states"`
	Transitions []Transition `json:"transitions" yaml:"transitions"`

	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Entry returns the name of the first declared state, or "" for an empty journey.
func (j *Journey) Entry() string {
	if len(j.States) == 0 {
		return ""
	}
	return j.States[0].Name
}

// Goal returns the name of the last declared state, which counts as conversion.
func (j *Journey) Goal() string {
	if len(j.States) == 0 {
		return ""
	}
	return j.States[len(j.States)-1].Name
}

// StateNames returns the state names in declared order.
func (j *Journey) StateNames() []string {
	names := make([]string, len(j.States))
	for i, s := range j.States {
		names[i] = s.Name
	}
	return names
}

// IndexOf returns the declared position of a state, or -1.
func (j *Journey) IndexOf(name string) int {
	for i, s := range j.States {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// Outbound returns the transitions leaving the given state in declared order.
func (j *Journey) Outbound(name string) []Transition {
	var out []Transition
	for _, t := range j.Transitions {
		if t.FromState == name {
			out = append(out, t)
		}
	}
	return out
}

// Clone returns a deep copy of the journey.
func (j *Journey) Clone() *Journey {
	if j == nil {
		return nil
	}
	c := *j
	c.States = append([]State(nil), j.States...)
	c.Transitions = append([]Transition(nil), j.Transitions...)
	return &c
}
