package redis_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"solana-sell-engine/internal/storage"
	redisstore "solana-sell-engine/internal/storage/redis"
)

// setupTestStore creates a Redis container and returns a connected store.
func setupTestStore(t *testing.T) (*redisstore.CooldownStore, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "failed to start redis container")

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err, "failed to get connection string")

	store, err := redisstore.NewCooldownStore(ctx, redisstore.Options{
		Addr: strings.TrimPrefix(uri, "redis://"),
	})
	require.NoError(t, err, "failed to create store")

	cleanup := func() {
		store.Close()
		_ = container.Terminate(ctx)
	}

	return store, cleanup
}

func TestCooldownStore_StampAndLastSellAt(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.StampSell(ctx, "MintA", 1700000001000))

	at, err := store.LastSellAt(ctx, "MintA")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000001000), at)

	// A later stamp replaces the earlier one
	require.NoError(t, store.StampSell(ctx, "MintA", 1700000002000))

	at, err = store.LastSellAt(ctx, "MintA")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000002000), at)
}

func TestCooldownStore_LastSellAtNotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	_, err := store.LastSellAt(ctx, "MintUnknown")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCooldownStore_Clear(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.StampSell(ctx, "MintA", 1700000001000))
	require.NoError(t, store.Clear(ctx, "MintA"))

	_, err := store.LastSellAt(ctx, "MintA")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Clearing an unknown mint is a no-op
	require.NoError(t, store.Clear(ctx, "MintB"))
}

func TestCooldownStore_Validation(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	_, err := store.LastSellAt(ctx, "")
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
	assert.ErrorIs(t, store.StampSell(ctx, "", 1000), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.StampSell(ctx, "MintA", 0), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Clear(ctx, ""), storage.ErrInvalidInput)
}

func TestCooldownStore_PerMintIsolation(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.StampSell(ctx, "MintA", 1000))
	require.NoError(t, store.StampSell(ctx, "MintB", 2000))

	atA, err := store.LastSellAt(ctx, "MintA")
	require.NoError(t, err)
	atB, err := store.LastSellAt(ctx, "MintB")
	require.NoError(t, err)

	assert.Equal(t, int64(1000), atA)
	assert.Equal(t, int64(2000), atB)
}
