package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleJourney() *Journey {
	return &Journey{
		ID:   "sample",
		Name: "Sample",
		States: []State{
			{Name: "Awareness", DwellDays: 3},
			{Name: "Consideration", DwellDays: 5},
			{Name: "Conversion", DwellDays: 1},
		},
		Transitions: []Transition{
			{FromState: "Awareness", ToState: "Consideration", Probability: 0.4, Channel: "paid_search"},
			{FromState: "Awareness", ToState: "Conversion", Probability: 0.1, Channel: "direct"},
			{FromState: "Consideration", ToState: "Conversion", Probability: 0.3, Channel: "email"},
		},
	}
}

func TestJourney_PositionalAccessors(t *testing.T) {
	j := sampleJourney()

	assert.Equal(t, "Awareness", j.Entry())
	assert.Equal(t, "Conversion", j.Goal())
	assert.Equal(t, []string{"Awareness", "Consideration", "Conversion"}, j.StateNames())
	assert.Equal(t, 1, j.IndexOf("Consideration"))
	assert.Equal(t, -1, j.IndexOf("Ghost"))

	empty := &Journey{}
	assert.Empty(t, empty.Entry())
	assert.Empty(t, empty.Goal())
}

func TestJourney_OutboundKeepsDeclaredOrder(t *testing.T) {
	out := sampleJourney().Outbound("Awareness")

	if assert.Len(t, out, 2) {
		assert.Equal(t, "Consideration", out[0].ToState)
		assert.Equal(t, "Conversion", out[1].ToState)
	}
	assert.Empty(t, sampleJourney().Outbound("Conversion"))
}

func TestJourney_CloneIsDeep(t *testing.T) {
	orig := sampleJourney()
	c := orig.Clone()

	c.States[0].Name = "Changed"
	c.Transitions[0].Probability = 0.9

	assert.Equal(t, "Awareness", orig.States[0].Name)
	assert.Equal(t, 0.4, orig.Transitions[0].Probability)
	assert.Nil(t, (*Journey)(nil).Clone())
}

func TestUsageError_MatchesSentinel(t *testing.T) {
	err := NewUsageError("simulate", "cohort size must be positive, got %d", 0)

	assert.True(t, errors.Is(err, ErrUsage))
	assert.Equal(t, "simulate: cohort size must be positive, got 0", err.Error())

	var ue *UsageError
	assert.True(t, errors.As(error(err), &ue))
	assert.Equal(t, "simulate", ue.Op)
}
