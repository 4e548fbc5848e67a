package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gameitem-nft/internal/domain"
	"gameitem-nft/internal/storage"
	pgstore "gameitem-nft/internal/storage/postgres"
)

func TestConfigStore_GetEmpty(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := pgstore.NewConfigStore(pool)

	_, err := store.Get(context.Background())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestConfigStore_PutGetUpsert(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := pgstore.NewConfigStore(pool)
	ctx := context.Background()

	err := store.Put(ctx, &domain.ContractConfig{
		ContractAddress: "0x1111111111111111111111111111111111111111",
		OwnerAddress:    "0x2222222222222222222222222222222222222222",
		UpdatedAt:       1000,
	})
	require.NoError(t, err)

	cfg, err := store.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "0x1111111111111111111111111111111111111111", cfg.ContractAddress)
	require.Equal(t, "0x2222222222222222222222222222222222222222", cfg.OwnerAddress)

	// A second put replaces the single row.
	err = store.Put(ctx, &domain.ContractConfig{
		ContractAddress: "0x3333333333333333333333333333333333333333",
		UpdatedAt:       2000,
	})
	require.NoError(t, err)

	cfg, err = store.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "0x3333333333333333333333333333333333333333", cfg.ContractAddress)
	require.Equal(t, int64(2000), cfg.UpdatedAt)
}

func TestConfigStore_PutInvalid(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := pgstore.NewConfigStore(pool)

	err := store.Put(context.Background(), &domain.ContractConfig{})
	require.ErrorIs(t, err, storage.ErrInvalidInput)
}
