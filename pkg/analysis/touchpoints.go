package analysis

import (
	"sort"

	"github.com/aretw0/journey/pkg/domain"
)

// Touchpoint is one transition as seen from its channel.
type Touchpoint struct {
	FromState    string `json:"from_state"`
	ToState      string `json:"to_state"`
	Trigger      string `json:"trigger"`
	ContentBrief string `json:"content_brief"`
}

// SequenceStep is one transition in the flattened sequence view.
type SequenceStep struct {
	Step         string  `json:"step"`
	Channel      string  `json:"channel"`
	Trigger      string  `json:"trigger"`
	ContentBrief string  `json:"content_brief"`
	Probability  float64 `json:"probability"`
}

// TouchpointReport groups the transitions of a journey by channel.
type TouchpointReport struct {
	JourneyID             string                  `json:"journey_id"`
	ChannelsUsed          []string                `json:"channels_used"`
	TouchpointsPerChannel map[string]int          `json:"touchpoints_per_channel"`
	TouchpointsDetail     map[string][]Touchpoint `json:"touchpoints_detail"`
	SequenceFlow          []SequenceStep          `json:"sequence_flow"`
	TotalTouchpoints      int                     `json:"total_touchpoints"`
}

// MapTouchpoints summarises transitions by channel. Transitions keep their
// declared order within each channel and in SequenceFlow.
func MapTouchpoints(j *domain.Journey) *TouchpointReport {
	report := &TouchpointReport{
		ChannelsUsed:          []string{},
		TouchpointsPerChannel: map[string]int{},
		TouchpointsDetail:     map[string][]Touchpoint{},
		SequenceFlow:          []SequenceStep{},
	}
	if j == nil {
		return report
	}
	report.JourneyID = j.ID

	for _, tr := range j.Transitions {
		ch := tr.Channel
		if ch == "" {
			ch = domain.DefaultChannel
		}
		if _, ok := report.TouchpointsPerChannel[ch]; !ok {
			report.ChannelsUsed = append(report.ChannelsUsed, ch)
		}
		report.TouchpointsPerChannel[ch]++
		report.TouchpointsDetail[ch] = append(report.TouchpointsDetail[ch], Touchpoint{
			FromState:    tr.FromState,
			ToState:      tr.ToState,
			Trigger:      tr.Trigger,
			ContentBrief: tr.ContentBrief,
		})
		report.SequenceFlow = append(report.SequenceFlow, SequenceStep{
			Step:         tr.FromState + " -> " + tr.ToState,
			Channel:      ch,
			Trigger:      tr.Trigger,
			ContentBrief: tr.ContentBrief,
			Probability:  tr.Probability,
		})
	}

	sort.Strings(report.ChannelsUsed)
	report.TotalTouchpoints = len(j.Transitions)
	return report
}
