package loam_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/journey/internal/dto"
	"github.com/aretw0/journey/internal/testutils"
	adapter "github.com/aretw0/journey/pkg/adapters/loam"
	"github.com/aretw0/journey/pkg/domain"
	"github.com/aretw0/journey/pkg/ports"
	"github.com/aretw0/journey/pkg/schema"
	"github.com/aretw0/loam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const onboardingMD = `---
name: Onboarding Flow
states:
  - name: Awareness
    description: First touch
  - name: Consideration
    dwell_days: 5
  - name: Conversion
transitions:
  - from: Awareness
    to: Consideration
    trigger: ad_click
    probability: 0.4
    channel: paid_search
    content_brief: Search ad
  - from_state: Consideration
    to_state: Conversion
    probability: 0.3
    channel: email
---
Top of funnel journey used by the growth team.
`

const retentionJSON = `{
  "name": "Retention",
  "states": [{"name": "Active"}, {"name": "Renewed"}],
  "transitions": [{"from_state": "Active", "to_state": "Renewed", "probability": 1, "channel": "in_app"}]
}`

func newCatalog(t *testing.T, files map[string]string, opts ...adapter.Option) *adapter.Catalog {
	t.Helper()
	dir, repo := testutils.SetupTestRepo(t)
	testutils.WriteFiles(t, dir, files)
	return adapter.New(loam.NewTypedRepository[dto.Definition](repo), opts...)
}

func mustBuild(t *testing.T, name string, states []schema.StateSpec, transitions []schema.TransitionSpec) *domain.Journey {
	t.Helper()
	j, err := schema.Build(name, states, transitions)
	require.NoError(t, err)
	return j
}

func TestCatalog_Contract(t *testing.T) {
	catalog := newCatalog(t, map[string]string{
		"onboarding.md":  onboardingMD,
		"retention.json": retentionJSON,
	})

	want := map[string]*domain.Journey{
		"onboarding-flow": mustBuild(t, "Onboarding Flow",
			[]schema.StateSpec{{Name: "Awareness", Description: "First touch"}, {Name: "Consideration", DwellDays: 5}, {Name: "Conversion"}},
			[]schema.TransitionSpec{
				{FromState: "Awareness", ToState: "Consideration", Trigger: "ad_click", Probability: 0.4, Channel: "paid_search", ContentBrief: "Search ad"},
				{FromState: "Consideration", ToState: "Conversion", Probability: 0.3, Channel: "email"},
			}),
		"retention": mustBuild(t, "Retention",
			[]schema.StateSpec{{Name: "Active"}, {Name: "Renewed"}},
			[]schema.TransitionSpec{{FromState: "Active", ToState: "Renewed", Probability: 1, Channel: "in_app"}}),
	}

	ports.RunJourneyReaderContract(t, catalog, want)
}

func TestCatalog_NameDefaultsToFile(t *testing.T) {
	catalog := newCatalog(t, map[string]string{
		"win-back.md": "---\nstates:\n  - name: Lapsed\n---\n",
	})

	ids, err := catalog.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"win-back"}, ids)

	j, err := catalog.Load(context.Background(), "win-back")
	require.NoError(t, err)
	assert.Equal(t, "win-back", j.Name)
}

func TestCatalog_InvalidDocumentsAreSkipped(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	catalog := newCatalog(t, map[string]string{
		"good.json": retentionJSON,
		"bad.md": `---
name: Broken
states:
  - name: A
transitions:
  - from: A
    to: Nowhere
    probability: 0.5
---
`,
	}, adapter.WithLogger(logger))

	ids, err := catalog.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"retention"}, ids)
	assert.Contains(t, buf.String(), "skipping invalid journey document")

	_, err = catalog.Load(context.Background(), "broken")
	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), `to_state "Nowhere" not in states`)
}

func TestCatalog_DetectsCollisions(t *testing.T) {
	catalog := newCatalog(t, map[string]string{
		"retention.json":  retentionJSON,
		"retention-2.md": "---\nname: Retention\nstates:\n  - name: Only\n---\n",
	})

	_, err := catalog.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
}
