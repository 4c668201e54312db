// Package schema validates raw journey definitions and builds domain.Journey values.
//
// Build is the only way to obtain a validated journey. It checks every
// structural invariant in a single pass and reports all violations together,
// so a caller fixing a definition sees every problem at once:
//
//	j, err := schema.Build("Onboarding Flow",
//	    []schema.StateSpec{{Name: "Awareness"}, {Name: "Consideration"}},
//	    []schema.TransitionSpec{{FromState: "Awareness", ToState: "Consideration", Probability: 0.4}},
//	)
//	if err != nil {
//	    for _, msg := range schema.Messages(err) {
//	        fmt.Println(msg)
//	    }
//	}
//
// Construction fails closed: when any invariant is violated no journey is
// returned.
package schema
