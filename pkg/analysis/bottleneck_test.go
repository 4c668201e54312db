package analysis

import (
	"math"
	"testing"

	"github.com/aretw0/journey/pkg/domain"
	"github.com/aretw0/journey/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, names []string, transitions ...schema.TransitionSpec) *domain.Journey {
	t.Helper()
	states := make([]schema.StateSpec, len(names))
	for i, n := range names {
		states[i] = schema.StateSpec{Name: n}
	}
	j, err := schema.Build("Fixture", states, transitions)
	require.NoError(t, err)
	return j
}

func tr(from, to string, p float64) schema.TransitionSpec {
	return schema.TransitionSpec{FromState: from, ToState: to, Probability: p, Channel: "email"}
}

func threeStep(t *testing.T) *domain.Journey {
	return build(t, []string{"Awareness", "Consideration", "Conversion"},
		tr("Awareness", "Consideration", 0.4),
		tr("Consideration", "Conversion", 0.3),
	)
}

func TestTheoreticalFlow(t *testing.T) {
	flow := TheoreticalFlow(threeStep(t))

	assert.Equal(t, 1.0, flow["Awareness"])
	assert.InDelta(t, 0.4, flow["Consideration"], 1e-12)
	assert.InDelta(t, 0.12, flow["Conversion"], 1e-12)
}

func TestTheoreticalFlow_MergesAndBackEdges(t *testing.T) {
	j := build(t, []string{"A", "B", "C"},
		tr("A", "B", 0.5),
		tr("A", "C", 0.25),
		tr("B", "C", 0.5),
		tr("C", "A", 0.1),
	)
	flow := TheoreticalFlow(j)

	assert.InDelta(t, 0.5, flow["B"], 1e-12)
	assert.InDelta(t, 0.5, flow["C"], 1e-12, "0.25 direct plus 0.5*0.5 via B")
	assert.InDelta(t, 1.05, flow["A"], 1e-12, "back edge is recorded but not propagated")
}

func TestTheoreticalFlow_Empty(t *testing.T) {
	assert.Empty(t, TheoreticalFlow(&domain.Journey{}))
}

func TestAnalyzeBottleneck_Theoretical(t *testing.T) {
	report, err := AnalyzeBottleneck(threeStep(t), nil)
	require.NoError(t, err)

	assert.Equal(t, ModeTheoretical, report.Mode)
	assert.Equal(t, "fixture", report.JourneyID)
	require.NotNil(t, report.Pair)
	assert.Equal(t, "Consideration -> Conversion", report.Pair.String())
	assert.Equal(t, "Consideration", report.BottleneckState)
	assert.InDelta(t, 70.0, report.DropOffRate, 1e-9)
	assert.Equal(t, []string{"Awareness", "Consideration"}, report.UpstreamStates)
	assert.Equal(t, BandMiddle, report.Band)
	assert.Equal(t, interventions[BandMiddle], report.RecommendedInterventions)

	require.Len(t, report.StateFlow, 3)
	assert.Equal(t, "Awareness", report.StateFlow[0].State)
	assert.InDelta(t, 0.12, report.Flow("Conversion"), 1e-12)
}

func TestAnalyzeBottleneck_Empirical(t *testing.T) {
	observed := map[string]float64{
		"Awareness":     1.0,
		"Consideration": 0.2,
		"Conversion":    0.15,
	}
	report, err := AnalyzeBottleneck(threeStep(t), observed)
	require.NoError(t, err)

	assert.Equal(t, ModeEmpirical, report.Mode)
	assert.Equal(t, "Awareness -> Consideration", report.Pair.String())
	assert.InDelta(t, 80.0, report.DropOffRate, 1e-9)
	assert.Equal(t, BandTop, report.Band)
	assert.Equal(t, []string{"Awareness"}, report.UpstreamStates)
	assert.Len(t, report.RecommendedInterventions, 3)
}

func TestAnalyzeBottleneck_MissingAndZeroUpstream(t *testing.T) {
	// Consideration is missing, so it reads as 0 and the pair after it drops by 1.0.
	observed := map[string]float64{"Awareness": 1.0, "Conversion": 0.5}
	report, err := AnalyzeBottleneck(threeStep(t), observed)
	require.NoError(t, err)

	assert.Equal(t, "Awareness -> Consideration", report.Pair.String(), "first of equal drops wins")
	assert.Equal(t, 100.0, report.DropOffRate)
	assert.Equal(t, 0.0, report.Flow("Consideration"))
}

func TestAnalyzeBottleneck_GainsAreNotDrops(t *testing.T) {
	observed := map[string]float64{"Awareness": 0.1, "Consideration": 0.5, "Conversion": 0.9}
	report, err := AnalyzeBottleneck(threeStep(t), observed)
	require.NoError(t, err)

	require.NotNil(t, report.Pair)
	assert.Equal(t, "Consideration -> Conversion", report.Pair.String(), "smallest gain is the worst pair")
	assert.Equal(t, 0.0, report.DropOffRate)
}

func TestAnalyzeBottleneck_Bands(t *testing.T) {
	names := []string{"S0", "S1", "S2", "S3", "S4", "S5"}
	cases := []struct {
		worst int
		band  Band
	}{
		{0, BandTop},
		{1, BandTop},
		{2, BandMiddle},
		{3, BandBottom},
		{4, BandBottom},
	}
	j := build(t, names)

	for _, tc := range cases {
		observed := make(map[string]float64, len(names))
		for i, n := range names {
			observed[n] = 1.0 - 0.01*float64(i)
		}
		observed[names[tc.worst+1]] = observed[names[tc.worst]] * 0.1
		for i := tc.worst + 2; i < len(names); i++ {
			observed[names[i]] = observed[names[tc.worst+1]]
		}

		report, err := AnalyzeBottleneck(j, observed)
		require.NoError(t, err)
		assert.Equal(t, names[tc.worst], report.BottleneckState)
		assert.Equal(t, tc.band, report.Band, "bottleneck at %d of %d", tc.worst, len(names))
	}
}

func TestAnalyzeBottleneck_SingleState(t *testing.T) {
	report, err := AnalyzeBottleneck(build(t, []string{"Only"}), nil)
	require.NoError(t, err)

	assert.Nil(t, report.Pair)
	assert.Empty(t, report.BottleneckState)
	assert.Empty(t, report.RecommendedInterventions)
	assert.Equal(t, []FlowPoint{{State: "Only", Flow: 1}}, report.StateFlow)
}

func TestAnalyzeBottleneck_UsageErrors(t *testing.T) {
	_, err := AnalyzeBottleneck(&domain.Journey{ID: "empty"}, nil)
	assert.ErrorIs(t, err, domain.ErrUsage)

	_, err = AnalyzeBottleneck(nil, nil)
	assert.ErrorIs(t, err, domain.ErrUsage)

	for _, bad := range []float64{-0.1, math.NaN(), math.Inf(1)} {
		_, err = AnalyzeBottleneck(threeStep(t), map[string]float64{"Awareness": bad})
		assert.ErrorIs(t, err, domain.ErrUsage, "value %v", bad)
	}
}
