/*
Package journey models customer journeys as probabilistic state machines and
simulates synthetic cohorts through them.

A journey is an ordered list of states (the first is the entry, the last is
the conversion goal) joined by transitions that carry a probability, a
marketing channel and an optional trigger and content brief. Outbound
probabilities of a state may sum to less than one; the remainder is silent
attrition.

# Usage

	eng := journey.New()

	j, err := eng.Create(ctx, "Onboarding",
		[]schema.StateSpec{{Name: "Awareness"}, {Name: "Consideration"}, {Name: "Conversion"}},
		[]schema.TransitionSpec{
			{FromState: "Awareness", ToState: "Consideration", Probability: 0.4, Channel: "paid_search"},
			{FromState: "Consideration", ToState: "Conversion", Probability: 0.3, Channel: "email"},
		},
	)
	if err != nil {
		log.Fatal(err)
	}

	res, err := eng.Simulate(ctx, j.ID, journey.DefaultCohortSize, journey.DefaultSeed)
	report, err := eng.AnalyzeBottleneck(ctx, j.ID, analysis.ObservedFlow(res))

Simulations are reproducible: the same journey, cohort size and seed always
produce the same Result.

The Engine stores journeys through a ports.JourneyStore (memory, file, redis
or sqlite adapters) and can fall back to a read-only catalog of definition
files (pkg/adapters/loam). Command line, HTTP and MCP front ends live under
cmd/journey and pkg/adapters.
*/
package journey
