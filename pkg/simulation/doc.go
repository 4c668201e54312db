/*
Package simulation runs Monte Carlo cohorts through a validated journey.

Each call to Simulate (or Simulator.Run) owns a single pseudo-random generator
seeded once from the caller's seed. Customers are simulated one after the
other, customer 0 completely before customer 1, and every customer consumes at
most one draw per state it leaves. Because of this fixed consumption order the
whole Result is reproducible: the same journey, cohort size and seed always
produce the same bytes when marshalled.

# Customer walk

Starting at the first declared state, a customer repeatedly:

 1. records a visit (and a first reach) of the current state,
 2. accumulates the state's dwell days,
 3. stops if the state has no outbound transitions,
 4. draws a uniform value in [0,1) and follows the first transition, in declared
    order, whose cumulative probability exceeds the draw; a draw that falls in
    the unassigned remainder is silent attrition and ends the walk,
 5. stops after domain.MaxSimulationSteps transitions (cycle guard). Such
    customers are reported as Stuck and never count as converted.

A customer converts when the walk ends in the last declared state.

# Concurrency

A Simulator holds no per-run state and may be shared between goroutines.
RunBatch fans independent seeds out to a bounded worker group; each run keeps
its own generator so results do not depend on scheduling.
*/
package simulation
