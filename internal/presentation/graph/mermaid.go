package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/journey/pkg/domain"
	"github.com/aretw0/journey/pkg/simulation"
)

// Overlay contains simulated funnel data to visualize on the graph.
type Overlay struct {
	// ReachPct maps state names to the percentage of the cohort that reached them.
	ReachPct map[string]float64
	// BottleneckFrom and BottleneckTo name the worst consecutive pair.
	BottleneckFrom string
	BottleneckTo   string
}

// OverlayFromResult builds an overlay from a simulation result.
func OverlayFromResult(res *simulation.Result) *Overlay {
	if res == nil {
		return nil
	}
	o := &Overlay{ReachPct: make(map[string]float64, len(res.Funnel))}
	for _, f := range res.Funnel {
		o.ReachPct[f.State] = f.PctOfCohort
	}
	if res.Bottleneck != nil {
		o.BottleneckFrom = res.Bottleneck.From
		o.BottleneckTo = res.Bottleneck.To
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart for a journey.
// States are numbered by declared position so any state name is safe.
// It applies semantic styling:
// - Entry: ((Circle))
// - Goal: ([Stadium])
// - Default: [Rectangle]
// Edges are labelled with channel and probability. With an overlay, state
// labels carry their reach and the bottleneck pair is highlighted.
func GenerateMermaid(j *domain.Journey, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ids := make(map[string]string, len(j.States))
	last := len(j.States) - 1
	for i, st := range j.States {
		id := fmt.Sprintf("s%d", i)
		ids[st.Name] = id

		opener, closer := "[", "]"
		switch i {
		case 0:
			opener, closer = "((", "))"
		case last:
			opener, closer = "([", "])"
		}

		label := escape(st.Name)
		if overlay != nil {
			label = fmt.Sprintf("%s<br/>%.1f%%", label, overlay.ReachPct[st.Name])
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, label, closer))
	}

	for _, t := range j.Transitions {
		from, okFrom := ids[t.FromState]
		to, okTo := ids[t.ToState]
		if !okFrom || !okTo {
			continue
		}

		label := fmt.Sprintf("%s %.0f%%", escape(t.Channel), t.Probability*100)
		arrow := fmt.Sprintf("-- \"%s\" -->", label)
		// Back edges (towards an earlier declared state) are dotted.
		if j.IndexOf(t.ToState) <= j.IndexOf(t.FromState) {
			arrow = fmt.Sprintf("-. \"%s\" .->", label)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", from, arrow, to))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast regardless of theme.
		sb.WriteString("    classDef unreached fill:#eeeeee,stroke:#9e9e9e,stroke-dasharray:4,color:#000;\n")
		sb.WriteString("    classDef bottleneck fill:#ffcdd2,stroke:#c62828,stroke-width:3px,color:#000;\n")

		for _, st := range j.States {
			if overlay.ReachPct[st.Name] == 0 {
				sb.WriteString(fmt.Sprintf("    class %s unreached;\n", ids[st.Name]))
			}
		}
		if from, ok := ids[overlay.BottleneckFrom]; ok {
			if to, ok := ids[overlay.BottleneckTo]; ok {
				sb.WriteString(fmt.Sprintf("    class %s,%s bottleneck;\n", from, to))
			}
		}
	}

	return sb.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
