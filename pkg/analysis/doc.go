/*
Package analysis derives reports from a journey without simulating it.

AnalyzeBottleneck finds the consecutive declared-state pair with the largest
relative drop in flow. Flow is either observed (a caller-supplied map of
per-state fractions) or theoretical, propagated forward from the entry state
through the transition probabilities. The theoretical flow of a state is the
expected number of visits per customer, so for journeys declared in
topological order it converges to the simulator's reach fraction.

The recommended interventions are picked by the position of the bottleneck in
the declared order. This banding is a coarse heuristic; it says where a loss
happens, not why.

MapTouchpoints flattens the transitions of a journey by channel for reporting.
*/
package analysis
