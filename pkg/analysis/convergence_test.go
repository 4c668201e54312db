package analysis

import (
	"math"
	"testing"

	"github.com/aretw0/journey/pkg/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// For a journey declared in topological order each state is reached at most
// once, so simulated reach fractions must approach the propagated flow.
func TestSimulatedReachConvergesToTheoreticalFlow(t *testing.T) {
	j := build(t, []string{"Visit", "Browse", "Compare", "Cart", "Checkout", "Purchase"},
		tr("Visit", "Browse", 0.7),
		tr("Visit", "Cart", 0.05),
		tr("Browse", "Compare", 0.5),
		tr("Browse", "Cart", 0.2),
		tr("Compare", "Cart", 0.6),
		tr("Cart", "Checkout", 0.55),
		tr("Checkout", "Purchase", 0.8),
	)
	expected := TheoreticalFlow(j)
	theory, err := AnalyzeBottleneck(j, nil)
	require.NoError(t, err)

	seeds := []int64{1, 42, 2024}
	var maxErrs []float64
	for _, cohort := range []int{100, 1000, 10000, 100000} {
		// Reach fractions are binomial, so the standard error is at most 0.5/sqrt(n).
		bound := 2.5 / math.Sqrt(float64(cohort))

		maxErr := 0.0
		for _, seed := range seeds {
			res, err := simulation.Simulate(j, cohort, seed)
			require.NoError(t, err)

			observed := ObservedFlow(res)
			for state, want := range expected {
				diff := math.Abs(want - observed[state])
				assert.LessOrEqual(t, diff, bound, "cohort %d seed %d state %s", cohort, seed, state)
				maxErr = math.Max(maxErr, diff)
			}

			// Both modes should agree on the bottleneck once the noise is well
			// below the gap between drops.
			if cohort >= 10000 {
				empirical, err := AnalyzeBottleneck(j, observed)
				require.NoError(t, err)
				assert.Equal(t, theory.Pair, empirical.Pair, "cohort %d seed %d", cohort, seed)
			}
		}
		maxErrs = append(maxErrs, maxErr)
	}

	for i := 1; i < len(maxErrs); i++ {
		assert.Less(t, maxErrs[i], maxErrs[i-1], "error should shrink as the cohort grows: %v", maxErrs)
	}
}
