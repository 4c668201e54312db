package memory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/journey/pkg/adapters/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_Contention(t *testing.T) {
	locker := memory.NewLocker()
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "journey-a", time.Second)
	require.NoError(t, err)

	// A second holder times out while the first one holds the key.
	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(waitCtx, "journey-a", time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Other keys are independent.
	unlockB, err := locker.Lock(ctx, "journey-b", time.Second)
	require.NoError(t, err)
	require.NoError(t, unlockB(ctx))

	require.NoError(t, unlock(ctx))
	require.NoError(t, unlock(ctx), "unlock is idempotent")

	unlock2, err := locker.Lock(ctx, "journey-a", time.Second)
	require.NoError(t, err)
	assert.NoError(t, unlock2(ctx))
}

func TestLocker_ReleasesKeys(t *testing.T) {
	locker := memory.NewLocker()
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		unlock, err := locker.Lock(ctx, fmt.Sprintf("journey-%d", i), time.Second)
		require.NoError(t, err)
		require.NoError(t, unlock(ctx))
	}
	assert.Equal(t, 0, locker.Len())

	// A waiter keeps the key alive until it is done too.
	unlock, err := locker.Lock(ctx, "busy", time.Second)
	require.NoError(t, err)

	acquired := make(chan func(context.Context) error)
	go func() {
		u, err := locker.Lock(ctx, "busy", time.Second)
		if err != nil {
			close(acquired)
			return
		}
		acquired <- u
	}()

	require.Eventually(t, func() bool { return locker.Len() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, unlock(ctx))

	second, ok := <-acquired
	require.True(t, ok, "waiter should acquire after release")
	assert.Equal(t, 1, locker.Len())
	require.NoError(t, second(ctx))
	assert.Equal(t, 0, locker.Len())

	// A waiter that gives up does not leak its key.
	unlock, err = locker.Lock(ctx, "held", time.Second)
	require.NoError(t, err)
	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(waitCtx, "held", time.Second)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NoError(t, unlock(ctx))
	assert.Equal(t, 0, locker.Len())
}
