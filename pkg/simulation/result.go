package simulation

// FunnelStep is the reach of one state across the cohort.
type FunnelStep struct {
	State       string  `json:"state"`
	Reached     int     `json:"reached"`
	Visits      int     `json:"visits"`
	PctOfCohort float64 `json:"pct_of_cohort"`
}

// DropOff is the relative loss between two consecutive declared states.
// Rate is a percentage of the upstream reach.
type DropOff struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Rate float64 `json:"rate"`
}

// Key renders the pair as "From -> To".
func (d DropOff) Key() string {
	return d.From + " -> " + d.To
}

// Result aggregates one simulated cohort. Percentages are in [0, 100].
type Result struct {
	JourneyID  string `json:"journey_id"`
	CohortSize int    `json:"cohort_size"`
	Seed       int64  `json:"seed"`

	Converted            int     `json:"converted"`
	ConversionRate       float64 `json:"conversion_rate"`
	AvgTouchpoints       float64 `json:"avg_touchpoints"`
	AvgTimeToConvertDays float64 `json:"avg_time_to_convert_days"`

	// Abandoned counts customers lost to attrition mass.
	Abandoned int `json:"abandoned"`
	// Stuck counts customers stopped by the step limit.
	Stuck int `json:"stuck"`

	Funnel     []FunnelStep `json:"state_funnel"`
	DropOffs   []DropOff    `json:"drop_off_rates"`
	Bottleneck *DropOff     `json:"bottleneck,omitempty"`

	ChannelTouchpoints  map[string]int     `json:"channel_touchpoints"`
	ChannelDistribution map[string]float64 `json:"channel_distribution"`
}

// Reach returns the number of customers that reached the state at least once.
func (r *Result) Reach(state string) int {
	for _, f := range r.Funnel {
		if f.State == state {
			return f.Reached
		}
	}
	return 0
}

// ReachPct returns the reach of a state as a percentage of the cohort.
func (r *Result) ReachPct(state string) float64 {
	for _, f := range r.Funnel {
		if f.State == state {
			return f.PctOfCohort
		}
	}
	return 0
}
