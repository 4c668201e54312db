package simulation

// ReachDelta is the change in reach of one state between two runs.
// Before and After are percentages of their respective cohorts.
type ReachDelta struct {
	State  string  `json:"state"`
	Before float64 `json:"before"`
	After  float64 `json:"after"`
	Delta  float64 `json:"delta"`
}

// Diff summarises how a simulation changed, typically before and after a
// journey edit simulated with the same cohort size and seed.
type Diff struct {
	JourneyID string `json:"journey_id"`

	ConversionDelta     float64 `json:"conversion_delta"`
	AvgTouchpointsDelta float64 `json:"avg_touchpoints_delta"`
	AvgTimeDelta        float64 `json:"avg_time_delta"`

	Reach []ReachDelta `json:"reach"`

	BottleneckBefore  *DropOff `json:"bottleneck_before,omitempty"`
	BottleneckAfter   *DropOff `json:"bottleneck_after,omitempty"`
	BottleneckChanged bool     `json:"bottleneck_changed"`
}

// Compare calculates the difference between before and after.
// If before is nil, every metric of after is reported as new.
// States present in only one run appear with 0 on the missing side.
func Compare(before, after *Result) *Diff {
	if after == nil {
		return nil
	}
	if before == nil {
		before = &Result{}
	}

	diff := &Diff{
		JourneyID:           after.JourneyID,
		ConversionDelta:     after.ConversionRate - before.ConversionRate,
		AvgTouchpointsDelta: after.AvgTouchpoints - before.AvgTouchpoints,
		AvgTimeDelta:        after.AvgTimeToConvertDays - before.AvgTimeToConvertDays,
		BottleneckBefore:    before.Bottleneck,
		BottleneckAfter:     after.Bottleneck,
	}

	seen := make(map[string]bool, len(after.Funnel))
	for _, f := range after.Funnel {
		seen[f.State] = true
		prev := before.ReachPct(f.State)
		diff.Reach = append(diff.Reach, ReachDelta{
			State:  f.State,
			Before: prev,
			After:  f.PctOfCohort,
			Delta:  f.PctOfCohort - prev,
		})
	}
	for _, f := range before.Funnel {
		if seen[f.State] {
			continue
		}
		diff.Reach = append(diff.Reach, ReachDelta{
			State:  f.State,
			Before: f.PctOfCohort,
			Delta:  -f.PctOfCohort,
		})
	}

	diff.BottleneckChanged = bottleneckKey(before.Bottleneck) != bottleneckKey(after.Bottleneck)

	return diff
}

func bottleneckKey(d *DropOff) string {
	if d == nil {
		return ""
	}
	return d.Key()
}
