package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/journey"
	"github.com/aretw0/journey/pkg/analysis"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func onboardingArgs() map[string]any {
	return map[string]any{
		"name":   "Onboarding",
		"states": []any{"Awareness", "Consideration", map[string]any{"name": "Conversion"}},
		"transitions": []any{
			map[string]any{"from_state": "Awareness", "to_state": "Consideration", "probability": 0.4, "channel": "paid_search"},
			map[string]any{"from_state": "Consideration", "to_state": "Conversion", "probability": 0.3, "channel": "email"},
		},
	}
}

func request(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func newServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer(journey.New())
	_, err := s.handleCreate(context.Background(), request("create_journey", nil), onboardingArgs())
	require.NoError(t, err)
	return s
}

func TestCreateJourney(t *testing.T) {
	s := NewServer(journey.New())

	j, err := s.handleCreate(context.Background(), request("create_journey", nil), onboardingArgs())
	require.NoError(t, err)
	assert.Equal(t, "onboarding", j.ID)
	assert.Equal(t, "Conversion", j.Goal())
}

func TestCreateJourney_ListsEveryViolation(t *testing.T) {
	s := NewServer(journey.New())
	args := map[string]any{
		"name":   "Broken",
		"states": []any{"A", "B"},
		"transitions": []any{
			map[string]any{"from_state": "A", "to_state": "Z", "probability": 0.2},
			map[string]any{"from_state": "B", "to_state": "A", "probability": 2.0},
		},
	}

	_, err := s.handleCreate(context.Background(), request("create_journey", nil), args)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `to_state "Z" not in states`)
	assert.Contains(t, err.Error(), "probability 2 not in [0, 1]")
}

func TestListAndGet(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	list, err := s.handleList(ctx, request("list_journeys", nil), nil)
	require.NoError(t, err)
	require.Len(t, list.Journeys, 1)
	assert.Equal(t, "onboarding", list.Journeys[0].ID)

	j, err := s.handleGet(ctx, request("get_journey", nil), JourneyArgs{JourneyID: "onboarding"})
	require.NoError(t, err)
	assert.Len(t, j.Transitions, 2)

	_, err = s.handleGet(ctx, request("get_journey", nil), JourneyArgs{JourneyID: "ghost"})
	assert.Error(t, err)
}

func TestSimulateJourney(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	out, err := s.handleSimulate(ctx, request("simulate_journey", nil), SimulateArgs{JourneyID: "onboarding"})
	require.NoError(t, err)
	require.NotNil(t, out.Result)
	assert.Equal(t, journey.DefaultCohortSize, out.Result.CohortSize)
	assert.Equal(t, int64(journey.DefaultSeed), out.Result.Seed)

	batch, err := s.handleSimulate(ctx, request("simulate_journey", nil), SimulateArgs{JourneyID: "onboarding", CohortSize: 50, Seeds: []int64{4, 5}})
	require.NoError(t, err)
	assert.Nil(t, batch.Result)
	assert.Len(t, batch.Results, 2)

	_, err = s.handleSimulate(ctx, request("simulate_journey", nil), SimulateArgs{JourneyID: "onboarding", CohortSize: -5})
	assert.Error(t, err)
}

func TestAnalyzeAndTouchpoints(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	report, err := s.handleBottleneck(ctx, request("analyze_bottleneck", nil), BottleneckArgs{JourneyID: "onboarding"})
	require.NoError(t, err)
	assert.Equal(t, analysis.ModeTheoretical, report.Mode)
	assert.Equal(t, "Consideration -> Conversion", report.Pair.String())

	tp, err := s.handleTouchpoints(ctx, request("map_touchpoints", nil), JourneyArgs{JourneyID: "onboarding"})
	require.NoError(t, err)
	assert.Equal(t, 2, tp.TotalTouchpoints)
}

func TestJourneyGraph(t *testing.T) {
	s := newServer(t)

	res, err := s.handleGraph(context.Background(), request("journey_graph", map[string]any{
		"journey_id":  "onboarding",
		"simulate":    true,
		"cohort_size": 300,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "graph TD")
	assert.Contains(t, text.Text, "classDef bottleneck")

	res, err = s.handleGraph(context.Background(), request("journey_graph", map[string]any{"journey_id": "ghost"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestCatalogResource(t *testing.T) {
	s := newServer(t)

	contents, err := s.readCatalog(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, CatalogURI, text.URI)

	var list []journey.Summary
	require.NoError(t, json.Unmarshal([]byte(text.Text), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "onboarding", list[0].ID)
}
