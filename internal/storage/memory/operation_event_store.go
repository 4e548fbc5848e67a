package memory

import (
	"context"
	"sort"
	"sync"

	"gameitem-nft/internal/domain"
	"gameitem-nft/internal/storage"
)

// OperationEventStore is an in-memory implementation of
// storage.OperationEventStore.
type OperationEventStore struct {
	mu     sync.RWMutex
	events []*domain.OperationEvent
}

// NewOperationEventStore creates a new in-memory operation event store.
func NewOperationEventStore() *OperationEventStore {
	return &OperationEventStore{}
}

// Insert adds a new operation event.
func (s *OperationEventStore) Insert(_ context.Context, e *domain.OperationEvent) error {
	if e == nil || e.Operation == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	eventCopy := *e
	s.events = append(s.events, &eventCopy)
	return nil
}

// InsertBulk adds multiple events.
func (s *OperationEventStore) InsertBulk(ctx context.Context, events []*domain.OperationEvent) error {
	for _, e := range events {
		if err := s.Insert(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// GetByTimeRange retrieves events within [start, end], ordered by timestamp ASC.
func (s *OperationEventStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.OperationEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.OperationEvent
	for _, e := range s.events {
		if e.TimestampMs >= start && e.TimestampMs <= end {
			eventCopy := *e
			out = append(out, &eventCopy)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TimestampMs < out[j].TimestampMs
	})
	return out, nil
}

var _ storage.OperationEventStore = (*OperationEventStore)(nil)
