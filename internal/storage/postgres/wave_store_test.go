package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-sell-engine/internal/domain"
	"solana-sell-engine/internal/storage"
	"solana-sell-engine/internal/storage/postgres"
)

func testWave(waveID, mint string, createdAt int64) *domain.WaveRecord {
	return &domain.WaveRecord{
		WaveID:        waveID,
		Mint:          mint,
		TriggeredBy:   "netflow",
		Executor:      domain.ExecutorInternal,
		NetUSD:        200,
		SellUSD:       50,
		Percentage:    25,
		Requested:     3,
		Successful:    2,
		Failed:        1,
		TotalRaw:      750000,
		TotalReceived: 375000,
		DurationMs:    1800,
		CreatedAt:     createdAt,
	}
}

func TestWaveStore_InsertAndGetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewWaveStore(pool)

	wave := testWave("wave-1", "MintA", 1700000001000)
	require.NoError(t, store.Insert(ctx, wave))

	got, err := store.GetByID(ctx, "wave-1")
	require.NoError(t, err)

	assert.Equal(t, wave.WaveID, got.WaveID)
	assert.Equal(t, wave.Mint, got.Mint)
	assert.Equal(t, wave.TriggeredBy, got.TriggeredBy)
	assert.Equal(t, wave.Executor, got.Executor)
	assert.InDelta(t, wave.NetUSD, got.NetUSD, 0.0001)
	assert.InDelta(t, wave.SellUSD, got.SellUSD, 0.0001)
	assert.InDelta(t, wave.Percentage, got.Percentage, 0.0001)
	assert.Equal(t, wave.Requested, got.Requested)
	assert.Equal(t, wave.Successful, got.Successful)
	assert.Equal(t, wave.Failed, got.Failed)
	assert.Equal(t, wave.TotalRaw, got.TotalRaw)
	assert.Equal(t, wave.TotalReceived, got.TotalReceived)
	assert.Equal(t, wave.DurationMs, got.DurationMs)
	assert.Equal(t, wave.CreatedAt, got.CreatedAt)
}

func TestWaveStore_GetByIDNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewWaveStore(pool)

	_, err := store.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestWaveStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewWaveStore(pool)

	wave := testWave("wave-dup", "MintA", 1700000001000)
	require.NoError(t, store.Insert(ctx, wave))

	err := store.Insert(ctx, wave)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestWaveStore_InsertInvalid(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewWaveStore(pool)

	assert.ErrorIs(t, store.Insert(ctx, nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Insert(ctx, &domain.WaveRecord{Mint: "MintA"}), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Insert(ctx, &domain.WaveRecord{WaveID: "wave-x"}), storage.ErrInvalidInput)
}

func TestWaveStore_GetByMint(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewWaveStore(pool)

	require.NoError(t, store.Insert(ctx, testWave("wave-b", "MintA", 1700000002000)))
	require.NoError(t, store.Insert(ctx, testWave("wave-a", "MintA", 1700000001000)))
	require.NoError(t, store.Insert(ctx, testWave("wave-c", "MintB", 1700000003000)))

	waves, err := store.GetByMint(ctx, "MintA")
	require.NoError(t, err)

	require.Len(t, waves, 2)
	assert.Equal(t, "wave-a", waves[0].WaveID)
	assert.Equal(t, "wave-b", waves[1].WaveID)

	none, err := store.GetByMint(ctx, "MintZ")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestWaveStore_GetByTimeRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewWaveStore(pool)

	require.NoError(t, store.Insert(ctx, testWave("wave-1", "MintA", 1000)))
	require.NoError(t, store.Insert(ctx, testWave("wave-2", "MintA", 2000)))
	require.NoError(t, store.Insert(ctx, testWave("wave-3", "MintB", 3000)))

	// Bounds are inclusive on both ends
	waves, err := store.GetByTimeRange(ctx, 2000, 3000)
	require.NoError(t, err)

	require.Len(t, waves, 2)
	assert.Equal(t, "wave-2", waves[0].WaveID)
	assert.Equal(t, "wave-3", waves[1].WaveID)
}

func TestWaveStore_InsertAndGetResults(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewWaveStore(pool)

	require.NoError(t, store.Insert(ctx, testWave("wave-r", "MintA", 1700000001000)))

	results := []domain.WalletSellResult{
		{
			Wallet:      "WalletA",
			OK:          true,
			TxSignature: "sigA",
			BuildPath:   "relay",
			SubmitPath:  "rpc",
			AmountRaw:   250000,
			ReceivedRaw: 120000,
			DurationMs:  900,
		},
		{
			Wallet:     "WalletB",
			OK:         false,
			BuildPath:  "aggregator",
			Err:        "no route",
			DurationMs: 1400,
		},
	}
	require.NoError(t, store.InsertResults(ctx, "wave-r", results))

	got, err := store.GetResults(ctx, "wave-r")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "WalletA", got[0].Wallet)
	assert.True(t, got[0].OK)
	assert.Equal(t, "sigA", got[0].TxSignature)
	assert.Equal(t, "relay", got[0].BuildPath)
	assert.Equal(t, "rpc", got[0].SubmitPath)
	assert.Equal(t, uint64(250000), got[0].AmountRaw)
	assert.Equal(t, uint64(120000), got[0].ReceivedRaw)

	assert.Equal(t, "WalletB", got[1].Wallet)
	assert.False(t, got[1].OK)
	assert.Equal(t, "no route", got[1].Err)

	none, err := store.GetResults(ctx, "wave-unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestWaveStore_InsertResultsInvalid(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewWaveStore(pool)

	err := store.InsertResults(ctx, "", []domain.WalletSellResult{{Wallet: "WalletA"}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
