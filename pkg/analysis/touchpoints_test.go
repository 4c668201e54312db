package analysis

import (
	"testing"

	"github.com/aretw0/journey/pkg/domain"
	"github.com/aretw0/journey/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapTouchpoints(t *testing.T) {
	j, err := schema.Build("Onboarding Flow",
		[]schema.StateSpec{{Name: "Awareness"}, {Name: "Consideration"}, {Name: "Trial"}, {Name: "Paid"}},
		[]schema.TransitionSpec{
			{FromState: "Awareness", ToState: "Consideration", Trigger: "ad_click", Probability: 0.4, Channel: "paid_search", ContentBrief: "Search ad"},
			{FromState: "Consideration", ToState: "Trial", Trigger: "signup", Probability: 0.3, Channel: "email"},
			{FromState: "Trial", ToState: "Paid", Trigger: "day_7", Probability: 0.5, Channel: "email", ContentBrief: "Upgrade nudge"},
			{FromState: "Trial", ToState: "Consideration", Probability: 0.1},
		})
	require.NoError(t, err)

	report := MapTouchpoints(j)

	assert.Equal(t, "onboarding-flow", report.JourneyID)
	assert.Equal(t, []string{"email", "paid_search", domain.DefaultChannel}, report.ChannelsUsed)
	assert.Equal(t, map[string]int{"email": 2, "paid_search": 1, domain.DefaultChannel: 1}, report.TouchpointsPerChannel)
	assert.Equal(t, 4, report.TotalTouchpoints)

	email := report.TouchpointsDetail["email"]
	require.Len(t, email, 2)
	assert.Equal(t, Touchpoint{FromState: "Consideration", ToState: "Trial", Trigger: "signup"}, email[0])
	assert.Equal(t, "Upgrade nudge", email[1].ContentBrief)

	require.Len(t, report.SequenceFlow, 4)
	assert.Equal(t, SequenceStep{
		Step:         "Awareness -> Consideration",
		Channel:      "paid_search",
		Trigger:      "ad_click",
		ContentBrief: "Search ad",
		Probability:  0.4,
	}, report.SequenceFlow[0])
	assert.Equal(t, "Trial -> Consideration", report.SequenceFlow[3].Step)
}

func TestMapTouchpoints_NoTransitions(t *testing.T) {
	j, err := schema.Build("Solo", []schema.StateSpec{{Name: "Only"}}, nil)
	require.NoError(t, err)

	report := MapTouchpoints(j)
	assert.Zero(t, report.TotalTouchpoints)
	assert.Empty(t, report.ChannelsUsed)
	assert.NotNil(t, report.SequenceFlow)

	assert.Empty(t, MapTouchpoints(nil).JourneyID)
}
