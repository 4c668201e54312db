package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/journey/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// contractJourney returns a small valid journey with second-precision UTC
// timestamps so that every serialization round-trips it exactly.
func contractJourney(id string) *domain.Journey {
	ts := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	return &domain.Journey{
		ID:   id,
		Name: "Contract " + id,
		States: []domain.State{
			{Name: "Awareness", Description: "First touch", DwellDays: 2},
			{Name: "Consideration", DwellDays: domain.DefaultDwellDays},
			{Name: "Conversion", DwellDays: 1.5},
		},
		Transitions: []domain.Transition{
			{FromState: "Awareness", ToState: "Consideration", Trigger: "ad_click", Probability: 0.4, Channel: "paid_search", ContentBrief: "Search ad"},
			{FromState: "Consideration", ToState: "Conversion", Probability: 0.3, Channel: "email"},
		},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

// RunJourneyStoreContract runs a suite of tests to verify that a JourneyStore implementation
// adheres to the defined interface contract.
func RunJourneyStoreContract(t *testing.T, store JourneyStore) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		j := contractJourney(prefix + "-save")

		err := store.Save(ctx, j)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, j.ID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, j, loaded)
	})

	t.Run("Save Replaces", func(t *testing.T) {
		j := contractJourney(prefix + "-replace")
		require.NoError(t, store.Save(ctx, j))

		j.Name = "Renamed"
		j.States = j.States[:2]
		j.Transitions = j.Transitions[:1]
		j.UpdatedAt = j.UpdatedAt.Add(time.Hour)
		require.NoError(t, store.Save(ctx, j))

		loaded, err := store.Load(ctx, j.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", loaded.Name)
		assert.Len(t, loaded.States, 2)
		assert.Equal(t, j.UpdatedAt, loaded.UpdatedAt)
	})

	t.Run("Isolation", func(t *testing.T) {
		j := contractJourney(prefix + "-isolation")
		require.NoError(t, store.Save(ctx, j))

		// Mutating the saved value must not leak into the store.
		j.States[0].Name = "Mutated"

		loaded, err := store.Load(ctx, j.ID)
		require.NoError(t, err)
		assert.Equal(t, "Awareness", loaded.States[0].Name)

		// Nor may mutating a loaded value.
		loaded.Transitions[0].Probability = 0.99
		again, err := store.Load(ctx, j.ID)
		require.NoError(t, err)
		assert.Equal(t, 0.4, again.Transitions[0].Probability)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, prefix+"-missing")
		assert.ErrorIs(t, err, domain.ErrJourneyNotFound)
	})

	t.Run("Save Without ID", func(t *testing.T) {
		err := store.Save(ctx, contractJourney(""))
		assert.Error(t, err)
	})

	t.Run("Delete", func(t *testing.T) {
		j := contractJourney(prefix + "-delete")
		require.NoError(t, store.Save(ctx, j))

		err := store.Delete(ctx, j.ID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, j.ID)
		assert.ErrorIs(t, err, domain.ErrJourneyNotFound, "Load after Delete should return ErrJourneyNotFound")

		err = store.Delete(ctx, j.ID)
		assert.ErrorIs(t, err, domain.ErrJourneyNotFound, "Deleting twice should return ErrJourneyNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := prefix + "-list-1"
		id2 := prefix + "-list-2"
		require.NoError(t, store.Save(ctx, contractJourney(id1)))
		require.NoError(t, store.Save(ctx, contractJourney(id2)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
		assert.NotContains(t, ids, prefix+"-delete")
	})
}

// RunJourneyReaderContract verifies a read-only JourneyReader seeded with want.
func RunJourneyReaderContract(t *testing.T, reader JourneyReader, want map[string]*domain.Journey) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load", func(t *testing.T) {
		for id, expected := range want {
			loaded, err := reader.Load(ctx, id)
			require.NoError(t, err, "loading %s", id)
			assert.Equal(t, expected.ID, loaded.ID)
			assert.Equal(t, expected.Name, loaded.Name)
			assert.Equal(t, expected.States, loaded.States)
			assert.Equal(t, expected.Transitions, loaded.Transitions)
		}
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := reader.Load(ctx, "non-existent-journey")
		assert.ErrorIs(t, err, domain.ErrJourneyNotFound)
	})

	t.Run("List", func(t *testing.T) {
		ids, err := reader.List(ctx)
		require.NoError(t, err)
		assert.Len(t, ids, len(want))
		for id := range want {
			assert.Contains(t, ids, id)
		}
	})
}
