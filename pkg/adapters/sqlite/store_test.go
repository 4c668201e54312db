package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/journey/pkg/adapters/sqlite"
	"github.com/aretw0/journey/pkg/domain"
	"github.com/aretw0/journey/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.JourneyStore = (*sqlite.Store)(nil)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_Contract(t *testing.T) {
	ports.RunJourneyStoreContract(t, newStore(t))
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journeys.db")
	ctx := context.Background()

	store, err := sqlite.New(path)
	require.NoError(t, err)
	j := &domain.Journey{
		ID:   "reopen",
		Name: "Reopen",
		States: []domain.State{
			{Name: "B", DwellDays: 1},
			{Name: "A", DwellDays: 2},
		},
		Transitions: []domain.Transition{
			{FromState: "B", ToState: "A", Probability: 0.5, Channel: "email"},
		},
	}
	require.NoError(t, store.Save(ctx, j))
	require.NoError(t, store.Close())

	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(ctx, "reopen")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, loaded.StateNames(), "declared order survives")
	assert.Equal(t, j.Transitions, loaded.Transitions)
}

func TestSQLiteStore_EmptyJourneyKeepsEmptySlices(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.Journey{ID: "empty", Name: "Empty"}))

	loaded, err := store.Load(ctx, "empty")
	require.NoError(t, err)
	assert.NotNil(t, loaded.States)
	assert.Empty(t, loaded.States)
	assert.Empty(t, loaded.Transitions)
}

func TestSQLiteStore_ChannelUsage(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	for _, id := range []string{"one", "two"} {
		j := &domain.Journey{
			ID:     id,
			Name:   id,
			States: []domain.State{{Name: "A"}, {Name: "B"}},
			Transitions: []domain.Transition{
				{FromState: "A", ToState: "B", Probability: 0.3, Channel: "email"},
				{FromState: "A", ToState: "A", Probability: 0.1, Channel: id},
			},
		}
		require.NoError(t, store.Save(ctx, j))
	}

	usage, err := store.ChannelUsage(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"email": 2, "one": 1, "two": 1}, usage)

	require.NoError(t, store.Delete(ctx, "one"))
	usage, err = store.ChannelUsage(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"email": 1, "two": 1}, usage)
}
