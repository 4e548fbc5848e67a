package postgres

import (
	"context"
	"fmt"

	"gameitem-nft/internal/domain"
	"gameitem-nft/internal/storage"
)

// ConfigStore implements storage.ConfigStore using PostgreSQL. A single row
// holds the current configuration defaults.
type ConfigStore struct {
	pool *Pool
}

// NewConfigStore creates a new ConfigStore.
func NewConfigStore(pool *Pool) *ConfigStore {
	return &ConfigStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ConfigStore = (*ConfigStore)(nil)

// Get retrieves the configuration defaults record.
func (s *ConfigStore) Get(ctx context.Context) (*domain.ContractConfig, error) {
	query := `
		SELECT contract_address, owner_address, updated_at
		FROM contract_config
		WHERE id = 1
	`

	var cfg domain.ContractConfig
	err := s.pool.QueryRow(ctx, query).Scan(
		&cfg.ContractAddress,
		&cfg.OwnerAddress,
		&cfg.UpdatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get contract config: %w", err)
	}
	return &cfg, nil
}

// Put replaces the configuration defaults record.
func (s *ConfigStore) Put(ctx context.Context, cfg *domain.ContractConfig) error {
	if cfg == nil || cfg.ContractAddress == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO contract_config (id, contract_address, owner_address, updated_at)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			contract_address = EXCLUDED.contract_address,
			owner_address = EXCLUDED.owner_address,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query, cfg.ContractAddress, cfg.OwnerAddress, cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put contract config: %w", err)
	}
	return nil
}
