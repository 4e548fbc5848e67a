// Package audit appends one record per executed operation to the configured
// trails. Audit failures are reported to the caller for logging but must
// never fail the operation being audited.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"gameitem-nft/internal/domain"
	"gameitem-nft/internal/storage"
)

// Recorder receives one audit record per executed operation.
type Recorder interface {
	Record(ctx context.Context, r *domain.AuditRecord) error
}

// NewRecord builds an audit record with a fresh ID and timestamp.
func NewRecord(operation, actor, tokenID, txHash, outcome, detail string, duration time.Duration) *domain.AuditRecord {
	return &domain.AuditRecord{
		ID:         uuid.NewString(),
		Operation:  operation,
		Actor:      actor,
		TokenID:    tokenID,
		TxHash:     txHash,
		Outcome:    outcome,
		Detail:     detail,
		DurationMs: duration.Milliseconds(),
		CreatedAt:  time.Now().UnixMilli(),
	}
}

// StoreRecorder persists records to an audit store.
type StoreRecorder struct {
	store storage.AuditStore
}

// NewStoreRecorder creates a recorder backed by an audit store.
func NewStoreRecorder(store storage.AuditStore) *StoreRecorder {
	return &StoreRecorder{store: store}
}

// Record persists the record.
func (r *StoreRecorder) Record(ctx context.Context, rec *domain.AuditRecord) error {
	return r.store.Insert(ctx, rec)
}

// EventRecorder mirrors records into the analytical operation-event store.
type EventRecorder struct {
	store storage.OperationEventStore
}

// NewEventRecorder creates a recorder backed by an operation-event store.
func NewEventRecorder(store storage.OperationEventStore) *EventRecorder {
	return &EventRecorder{store: store}
}

// Record inserts the corresponding operation event.
func (r *EventRecorder) Record(ctx context.Context, rec *domain.AuditRecord) error {
	return r.store.Insert(ctx, &domain.OperationEvent{
		Operation:   rec.Operation,
		Outcome:     rec.Outcome,
		Address:     rec.Actor,
		TokenID:     rec.TokenID,
		DurationMs:  rec.DurationMs,
		TimestampMs: rec.CreatedAt,
	})
}

// MultiRecorder fans a record out to several trails. All trails are
// attempted; errors are joined.
type MultiRecorder []Recorder

// Record sends the record to every trail.
func (m MultiRecorder) Record(ctx context.Context, rec *domain.AuditRecord) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
