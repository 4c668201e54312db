package main

import (
	"context"
	"testing"

	"github.com/aretw0/journey/internal/dto"
	"github.com/aretw0/journey/internal/testutils"
	loamAdapter "github.com/aretw0/journey/pkg/adapters/loam"
	"github.com/aretw0/loam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_ReadableByCatalog(t *testing.T) {
	ctx := context.Background()
	_, repo := testutils.SetupTestRepo(t, loam.WithVersioning(false))

	written, err := generate(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, []string{"saas-trial.md", "ecommerce-checkout.md", "win-back.md"}, written)

	catalog := loamAdapter.New(loam.NewTypedRepository[dto.Definition](repo))
	ids, err := catalog.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ecommerce-checkout", "saas-trial", "win-back"}, ids)

	for _, want := range samples() {
		got, err := catalog.Load(ctx, want.ID)
		require.NoError(t, err, want.ID)
		assert.Equal(t, want.StateNames(), got.StateNames())
		assert.Equal(t, want.Transitions, got.Transitions)
	}
}
