package report

import (
	"strings"
	"testing"

	"github.com/aretw0/journey"
	"github.com/aretw0/journey/pkg/analysis"
	"github.com/aretw0/journey/pkg/domain"
	"github.com/aretw0/journey/pkg/dsl"
	"github.com/aretw0/journey/pkg/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T) *domain.Journey {
	t.Helper()
	j, err := dsl.New("Report").
		State("Awareness").Describe("Sees | an ad").
		Go("Conversion", 0.5).Via("social").On("click").Brief("Carousel").
		State("Conversion").
		Build()
	require.NoError(t, err)
	return j
}

func TestJourney(t *testing.T) {
	j := fixture(t)
	out := Journey(j)

	assert.Contains(t, out, "# Report")
	assert.Contains(t, out, "entry **Awareness** · goal **Conversion**")
	assert.Contains(t, out, `| 1 | Awareness | 3 | Sees \| an ad |`)
	assert.Contains(t, out, "| Awareness | Conversion | 0.50 | social | click |")
}

func TestSimulation(t *testing.T) {
	res, err := simulation.Simulate(fixture(t), 1000, 42)
	require.NoError(t, err)

	out := Simulation(res)
	assert.Contains(t, out, "Cohort **1000** · seed **42**")
	assert.Contains(t, out, "| Awareness | 1000 | 100.0% |")
	assert.Contains(t, out, "| Awareness -> Conversion |")
	assert.Contains(t, out, "**bottleneck**")
	assert.Contains(t, out, "| social |")
	assert.NotContains(t, out, "Stuck")
}

func TestBottleneck(t *testing.T) {
	r, err := analysis.AnalyzeBottleneck(fixture(t), nil)
	require.NoError(t, err)

	out := Bottleneck(r)
	assert.Contains(t, out, "Mode: **theoretical**")
	assert.Contains(t, out, "**Awareness -> Conversion** (50.0%, top of funnel)")
	assert.Contains(t, out, "- Improve awareness messaging and targeting")
}

func TestBottleneck_SingleState(t *testing.T) {
	j, err := dsl.New("Solo").State("Only").Build()
	require.NoError(t, err)
	r, err := analysis.AnalyzeBottleneck(j, nil)
	require.NoError(t, err)
	assert.Contains(t, Bottleneck(r), "single state")
}

func TestTouchpoints(t *testing.T) {
	out := Touchpoints(analysis.MapTouchpoints(fixture(t)))

	assert.Contains(t, out, "1 touchpoints across 1 channels")
	assert.Contains(t, out, "## social (1)")
	assert.Contains(t, out, "- Awareness -> Conversion on `click`: Carousel")
}

func TestDiff(t *testing.T) {
	j := fixture(t)
	before, err := simulation.Simulate(j, 500, 1)
	require.NoError(t, err)

	out := Diff(simulation.Compare(before, before))
	assert.Contains(t, out, "Conversion +0.00 pp")
	assert.Contains(t, out, "| Awareness | 100.0% | 100.0% | +0.0 |")
	assert.NotContains(t, out, "Bottleneck moved")
}

func TestSummaries(t *testing.T) {
	assert.Equal(t, "_No journeys._\n", Summaries(nil))

	out := Summaries([]journey.Summary{
		{ID: "onboarding", Name: "Onboarding | EU", States: 3, Transitions: 2, Source: journey.SourceStore},
	})
	assert.Contains(t, out, "| onboarding | Onboarding \\| EU | 3 | 2 | store |")
}

func TestChannels(t *testing.T) {
	out := Channels(map[string]int{"web": 1, "email": 4, "ads": 1})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "| email | 4 |", lines[2])
	assert.Equal(t, "| ads | 1 |", lines[3])
	assert.Equal(t, "| web | 1 |", lines[4])
}
