package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/journey"
	"github.com/aretw0/journey/pkg/analysis"
	"github.com/aretw0/journey/pkg/domain"
	"github.com/aretw0/journey/pkg/simulation"
)

// Journey renders the states and transitions of a journey.
func Journey(j *domain.Journey) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", j.Name)
	fmt.Fprintf(&sb, "`%s` · entry **%s** · goal **%s**\n\n", j.ID, j.Entry(), j.Goal())

	sb.WriteString("## States\n\n")
	sb.WriteString("| # | State | Dwell (days) | Description |\n")
	sb.WriteString("|---|---|---:|---|\n")
	for i, st := range j.States {
		fmt.Fprintf(&sb, "| %d | %s | %g | %s |\n", i+1, cell(st.Name), st.DwellDays, cell(st.Description))
	}

	if len(j.Transitions) > 0 {
		sb.WriteString("\n## Transitions\n\n")
		sb.WriteString("| From | To | Probability | Channel | Trigger |\n")
		sb.WriteString("|---|---|---:|---|---|\n")
		for _, t := range j.Transitions {
			fmt.Fprintf(&sb, "| %s | %s | %.2f | %s | %s |\n",
				cell(t.FromState), cell(t.ToState), t.Probability, cell(t.Channel), cell(t.Trigger))
		}
	}
	return sb.String()
}

// Simulation renders a simulation result.
func Simulation(res *simulation.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Simulation: %s\n\n", res.JourneyID)
	fmt.Fprintf(&sb, "Cohort **%d** · seed **%d**\n\n", res.CohortSize, res.Seed)

	sb.WriteString("| Metric | Value |\n|---|---:|\n")
	fmt.Fprintf(&sb, "| Conversion rate | %.2f%% |\n", res.ConversionRate)
	fmt.Fprintf(&sb, "| Converted | %d |\n", res.Converted)
	fmt.Fprintf(&sb, "| Abandoned | %d |\n", res.Abandoned)
	if res.Stuck > 0 {
		fmt.Fprintf(&sb, "| Stuck (step limit) | %d |\n", res.Stuck)
	}
	fmt.Fprintf(&sb, "| Avg touchpoints | %.1f |\n", res.AvgTouchpoints)
	fmt.Fprintf(&sb, "| Avg time (days) | %.1f |\n", res.AvgTimeToConvertDays)

	sb.WriteString("\n## Funnel\n\n")
	sb.WriteString("| State | Reached | % of cohort |\n|---|---:|---:|\n")
	for _, f := range res.Funnel {
		fmt.Fprintf(&sb, "| %s | %d | %.1f%% |\n", cell(f.State), f.Reached, f.PctOfCohort)
	}

	if len(res.DropOffs) > 0 {
		sb.WriteString("\n## Drop-off\n\n")
		sb.WriteString("| Step | Drop-off |\n|---|---:|\n")
		for _, d := range res.DropOffs {
			marker := ""
			if res.Bottleneck != nil && d.Key() == res.Bottleneck.Key() {
				marker = " **bottleneck**"
			}
			fmt.Fprintf(&sb, "| %s | %.1f%%%s |\n", cell(d.Key()), d.Rate, marker)
		}
	}

	if len(res.ChannelDistribution) > 0 {
		sb.WriteString("\n## Channels\n\n")
		sb.WriteString("| Channel | Touchpoints | Share |\n|---|---:|---:|\n")
		for _, ch := range sortedKeys(res.ChannelTouchpoints) {
			fmt.Fprintf(&sb, "| %s | %d | %.1f%% |\n", cell(ch), res.ChannelTouchpoints[ch], res.ChannelDistribution[ch])
		}
	}
	return sb.String()
}

// Bottleneck renders a bottleneck report.
func Bottleneck(r *analysis.BottleneckReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Bottleneck: %s\n\n", r.JourneyID)
	fmt.Fprintf(&sb, "Mode: **%s**\n\n", r.Mode)

	if r.Pair == nil {
		sb.WriteString("The journey has a single state; there is nothing to compare.\n")
		return sb.String()
	}

	fmt.Fprintf(&sb, "Largest drop: **%s** (%.1f%%, %s of funnel)\n\n", r.Pair, r.DropOffRate, r.Band)

	sb.WriteString("| State | Flow |\n|---|---:|\n")
	for _, p := range r.StateFlow {
		fmt.Fprintf(&sb, "| %s | %.4f |\n", cell(p.State), p.Flow)
	}

	sb.WriteString("\n## Recommended interventions\n\n")
	for _, rec := range r.RecommendedInterventions {
		fmt.Fprintf(&sb, "- %s\n", rec)
	}
	return sb.String()
}

// Touchpoints renders a touchpoint map.
func Touchpoints(r *analysis.TouchpointReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Touchpoints: %s\n\n", r.JourneyID)
	fmt.Fprintf(&sb, "%d touchpoints across %d channels\n\n", r.TotalTouchpoints, len(r.ChannelsUsed))

	for _, ch := range r.ChannelsUsed {
		fmt.Fprintf(&sb, "## %s (%d)\n\n", ch, r.TouchpointsPerChannel[ch])
		for _, tp := range r.TouchpointsDetail[ch] {
			fmt.Fprintf(&sb, "- %s -> %s", tp.FromState, tp.ToState)
			if tp.Trigger != "" {
				fmt.Fprintf(&sb, " on `%s`", tp.Trigger)
			}
			if tp.ContentBrief != "" {
				fmt.Fprintf(&sb, ": %s", tp.ContentBrief)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Diff renders the comparison of two simulations.
func Diff(d *simulation.Diff) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Comparison: %s\n\n", d.JourneyID)
	fmt.Fprintf(&sb, "Conversion %+.2f pp · touchpoints %+.2f · time %+.1f days\n\n",
		d.ConversionDelta, d.AvgTouchpointsDelta, d.AvgTimeDelta)

	sb.WriteString("| State | Before | After | Δ |\n|---|---:|---:|---:|\n")
	for _, r := range d.Reach {
		fmt.Fprintf(&sb, "| %s | %.1f%% | %.1f%% | %+.1f |\n", cell(r.State), r.Before, r.After, r.Delta)
	}
	if d.BottleneckChanged && d.BottleneckAfter != nil {
		fmt.Fprintf(&sb, "\nBottleneck moved to **%s**\n", d.BottleneckAfter.Key())
	}
	return sb.String()
}

// Summaries renders the journey listing.
func Summaries(list []journey.Summary) string {
	if len(list) == 0 {
		return "_No journeys._\n"
	}
	var sb strings.Builder
	sb.WriteString("| ID | Name | States | Transitions | Source |\n|---|---|---:|---:|---|\n")
	for _, s := range list {
		fmt.Fprintf(&sb, "| %s | %s | %d | %d | %s |\n", cell(s.ID), cell(s.Name), s.States, s.Transitions, s.Source)
	}
	return sb.String()
}

// Channels renders transition counts per channel, busiest first.
func Channels(usage map[string]int) string {
	keys := sortedKeys(usage)
	sort.SliceStable(keys, func(a, b int) bool { return usage[keys[a]] > usage[keys[b]] })

	var sb strings.Builder
	sb.WriteString("| Channel | Transitions |\n|---|---:|\n")
	for _, k := range keys {
		fmt.Fprintf(&sb, "| %s | %d |\n", cell(k), usage[k])
	}
	return sb.String()
}

// cell escapes pipes so free text cannot break a table row.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
