package simulation

import (
	"testing"

	"github.com/aretw0/journey/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare_IdenticalRuns(t *testing.T) {
	res, err := Simulate(threeStep(t), 1000, 9)
	require.NoError(t, err)

	diff := Compare(res, res)
	require.NotNil(t, diff)

	assert.Zero(t, diff.ConversionDelta)
	assert.Zero(t, diff.AvgTouchpointsDelta)
	assert.False(t, diff.BottleneckChanged)
	for _, r := range diff.Reach {
		assert.Zero(t, r.Delta, r.State)
	}
}

func TestCompare_JourneyEdit(t *testing.T) {
	before, err := Simulate(threeStep(t), 5000, 42)
	require.NoError(t, err)

	// Higher rates plus an unreachable goal move the bottleneck to the new last pair.
	edited := mustBuild(t, "Three Step",
		[]schema.StateSpec{{Name: "Awareness"}, {Name: "Consideration"}, {Name: "Conversion"}, {Name: "Advocacy"}},
		[]schema.TransitionSpec{
			{FromState: "Awareness", ToState: "Consideration", Probability: 0.8, Channel: "paid_search"},
			{FromState: "Consideration", ToState: "Conversion", Probability: 0.9, Channel: "email"},
		})
	after, err := Simulate(edited, 5000, 42)
	require.NoError(t, err)

	diff := Compare(before, after)
	require.NotNil(t, diff)

	assert.Greater(t, diff.Reach[1].Delta, 30.0, "consideration reach should roughly double")
	assert.Equal(t, "Advocacy", diff.Reach[3].State)
	assert.Zero(t, diff.Reach[3].Before)
	assert.True(t, diff.BottleneckChanged)
	assert.Equal(t, "Conversion -> Advocacy", diff.BottleneckAfter.Key())
}

func TestCompare_NilInputs(t *testing.T) {
	res, err := Simulate(threeStep(t), 10, 1)
	require.NoError(t, err)

	assert.Nil(t, Compare(res, nil))

	initial := Compare(nil, res)
	require.NotNil(t, initial)
	assert.Equal(t, res.ConversionRate, initial.ConversionDelta)
	assert.True(t, initial.BottleneckChanged)
}
