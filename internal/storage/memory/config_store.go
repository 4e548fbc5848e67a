package memory

import (
	"context"
	"sync"

	"gameitem-nft/internal/domain"
	"gameitem-nft/internal/storage"
)

// ConfigStore is an in-memory implementation of storage.ConfigStore.
type ConfigStore struct {
	mu  sync.RWMutex
	cfg *domain.ContractConfig
}

// NewConfigStore creates a new in-memory configuration store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{}
}

// Get retrieves the configuration defaults record.
func (s *ConfigStore) Get(_ context.Context) (*domain.ContractConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cfg == nil {
		return nil, storage.ErrNotFound
	}
	cfgCopy := *s.cfg
	return &cfgCopy, nil
}

// Put replaces the configuration defaults record.
func (s *ConfigStore) Put(_ context.Context, cfg *domain.ContractConfig) error {
	if cfg == nil || cfg.ContractAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfgCopy := *cfg
	s.cfg = &cfgCopy
	return nil
}

var _ storage.ConfigStore = (*ConfigStore)(nil)
