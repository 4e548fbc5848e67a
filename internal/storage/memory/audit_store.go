package memory

import (
	"context"
	"sort"
	"sync"

	"gameitem-nft/internal/domain"
	"gameitem-nft/internal/storage"
)

// AuditStore is an in-memory implementation of storage.AuditStore.
type AuditStore struct {
	mu   sync.RWMutex
	byID map[string]*domain.AuditRecord
}

// NewAuditStore creates a new in-memory audit store.
func NewAuditStore() *AuditStore {
	return &AuditStore{
		byID: make(map[string]*domain.AuditRecord),
	}
}

// Insert appends a new audit record. Returns ErrDuplicateKey if the ID exists.
func (s *AuditStore) Insert(_ context.Context, r *domain.AuditRecord) error {
	if r == nil || r.ID == "" || r.Operation == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[r.ID]; exists {
		return storage.ErrDuplicateKey
	}

	recCopy := *r
	s.byID[r.ID] = &recCopy
	return nil
}

// GetByOperation retrieves all records for an operation, ordered by creation
// time ASC.
func (s *AuditStore) GetByOperation(_ context.Context, operation string) ([]*domain.AuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.AuditRecord
	for _, r := range s.byID {
		if r.Operation == operation {
			recCopy := *r
			out = append(out, &recCopy)
		}
	}
	sortByCreatedAt(out)
	return out, nil
}

// GetByTimeRange retrieves records created within [start, end] (inclusive).
func (s *AuditStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.AuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.AuditRecord
	for _, r := range s.byID {
		if r.CreatedAt >= start && r.CreatedAt <= end {
			recCopy := *r
			out = append(out, &recCopy)
		}
	}
	sortByCreatedAt(out)
	return out, nil
}

func sortByCreatedAt(records []*domain.AuditRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt < records[j].CreatedAt
	})
}

var _ storage.AuditStore = (*AuditStore)(nil)
