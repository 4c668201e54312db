package simulation

import (
	"context"
	"testing"

	"github.com/aretw0/journey/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBatch_MatchesSequentialRuns(t *testing.T) {
	j := threeStep(t)
	seeds := []int64{1, 2, 3, 42, 1000, -7}

	results, err := New().RunBatch(context.Background(), j, 2000, seeds, 3)
	require.NoError(t, err)
	require.Len(t, results, len(seeds))

	for i, seed := range seeds {
		want, err := Simulate(j, 2000, seed)
		require.NoError(t, err)
		assert.Equal(t, want, results[i], "seed %d", seed)
	}
}

func TestRunBatch_UsageError(t *testing.T) {
	_, err := New().RunBatch(context.Background(), threeStep(t), 0, []int64{1}, 0)
	assert.ErrorIs(t, err, domain.ErrUsage)
}

func TestRunBatch_Empty(t *testing.T) {
	results, err := New().RunBatch(context.Background(), threeStep(t), 10, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}
