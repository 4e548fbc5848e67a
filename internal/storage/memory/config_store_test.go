package memory

import (
	"context"
	"errors"
	"testing"

	"gameitem-nft/internal/domain"
	"gameitem-nft/internal/storage"
)

func TestConfigStore_GetEmpty(t *testing.T) {
	store := NewConfigStore()

	_, err := store.Get(context.Background())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound on empty store, got %v", err)
	}
}

func TestConfigStore_PutGet(t *testing.T) {
	store := NewConfigStore()
	ctx := context.Background()

	err := store.Put(ctx, &domain.ContractConfig{
		ContractAddress: "0x1111111111111111111111111111111111111111",
		OwnerAddress:    "0x2222222222222222222222222222222222222222",
	})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	cfg, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if cfg.ContractAddress != "0x1111111111111111111111111111111111111111" {
		t.Errorf("Unexpected contract address %s", cfg.ContractAddress)
	}
}

func TestConfigStore_PutReplaces(t *testing.T) {
	store := NewConfigStore()
	ctx := context.Background()

	store.Put(ctx, &domain.ContractConfig{ContractAddress: "0x1111111111111111111111111111111111111111"})
	store.Put(ctx, &domain.ContractConfig{ContractAddress: "0x3333333333333333333333333333333333333333"})

	cfg, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if cfg.ContractAddress != "0x3333333333333333333333333333333333333333" {
		t.Errorf("Expected replacement to win, got %s", cfg.ContractAddress)
	}
}

func TestConfigStore_GetReturnsCopy(t *testing.T) {
	store := NewConfigStore()
	ctx := context.Background()

	store.Put(ctx, &domain.ContractConfig{ContractAddress: "0x1111111111111111111111111111111111111111"})

	first, _ := store.Get(ctx)
	first.ContractAddress = "mutated"

	second, _ := store.Get(ctx)
	if second.ContractAddress == "mutated" {
		t.Error("Get must return a copy, not shared state")
	}
}
