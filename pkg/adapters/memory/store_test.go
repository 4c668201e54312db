package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/journey/pkg/adapters/memory"
	"github.com/aretw0/journey/pkg/domain"
	"github.com/aretw0/journey/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunJourneyStoreContract(t, store)
}

func TestMemoryStore_Seed(t *testing.T) {
	seed := &domain.Journey{ID: "seeded", Name: "Seeded", States: []domain.State{{Name: "Only"}}}
	store := memory.NewStore(seed)

	seed.Name = "changed after seeding"

	loaded, err := store.Load(context.Background(), "seeded")
	require.NoError(t, err)
	assert.Equal(t, "Seeded", loaded.Name)

	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"seeded"}, ids)
}
