package storage

import (
	"context"

	"gameitem-nft/internal/domain"
)

// ConfigStore provides access to the persisted configuration defaults.
// Read-only from the token client's perspective; Put exists for operator
// tooling.
type ConfigStore interface {
	// Get retrieves the configuration defaults record.
	// Returns ErrNotFound if none has been persisted.
	Get(ctx context.Context) (*domain.ContractConfig, error)

	// Put replaces the configuration defaults record.
	Put(ctx context.Context, cfg *domain.ContractConfig) error
}

// AuditStore provides access to audit_records storage.
type AuditStore interface {
	// Insert appends a new audit record. Returns ErrDuplicateKey if the
	// record ID already exists.
	Insert(ctx context.Context, r *domain.AuditRecord) error

	// GetByOperation retrieves all records for an operation, ordered by
	// creation time ASC.
	GetByOperation(ctx context.Context, operation string) ([]*domain.AuditRecord, error)

	// GetByTimeRange retrieves records created within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.AuditRecord, error)
}

// OperationEventStore provides access to operation_events storage.
type OperationEventStore interface {
	// Insert adds a new operation event.
	Insert(ctx context.Context, e *domain.OperationEvent) error

	// InsertBulk adds multiple events.
	InsertBulk(ctx context.Context, events []*domain.OperationEvent) error

	// GetByTimeRange retrieves events within [start, end] (inclusive),
	// ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.OperationEvent, error)
}
