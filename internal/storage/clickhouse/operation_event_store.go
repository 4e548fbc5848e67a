package clickhouse

import (
	"context"
	"fmt"

	"gameitem-nft/internal/domain"
	"gameitem-nft/internal/storage"
)

// OperationEventStore implements storage.OperationEventStore using ClickHouse.
// Events are analytical datapoints; duplicates are acceptable and uniqueness
// is not enforced.
type OperationEventStore struct {
	conn *Conn
}

// NewOperationEventStore creates a new OperationEventStore.
func NewOperationEventStore(conn *Conn) *OperationEventStore {
	return &OperationEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.OperationEventStore = (*OperationEventStore)(nil)

// Insert adds a new operation event.
func (s *OperationEventStore) Insert(ctx context.Context, e *domain.OperationEvent) error {
	return s.InsertBulk(ctx, []*domain.OperationEvent{e})
}

// InsertBulk adds multiple events.
func (s *OperationEventStore) InsertBulk(ctx context.Context, events []*domain.OperationEvent) error {
	if len(events) == 0 {
		return nil
	}

	for _, e := range events {
		if e == nil || e.Operation == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO operation_events (
			operation, outcome, address, token_id, duration_ms, timestamp_ms
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, e := range events {
		err = batch.Append(
			e.Operation, e.Outcome, e.Address, e.TokenID,
			uint64(e.DurationMs), uint64(e.TimestampMs),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTimeRange retrieves events within [start, end], ordered by timestamp ASC.
func (s *OperationEventStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.OperationEvent, error) {
	query := `
		SELECT operation, outcome, address, token_id, duration_ms, timestamp_ms
		FROM operation_events
		WHERE timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query operation events: %w", err)
	}
	defer rows.Close()

	var out []*domain.OperationEvent
	for rows.Next() {
		var (
			e           domain.OperationEvent
			durationMs  uint64
			timestampMs uint64
		)
		err := rows.Scan(&e.Operation, &e.Outcome, &e.Address, &e.TokenID, &durationMs, &timestampMs)
		if err != nil {
			return nil, fmt.Errorf("scan operation event: %w", err)
		}
		e.DurationMs = int64(durationMs)
		e.TimestampMs = int64(timestampMs)
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operation events: %w", err)
	}
	return out, nil
}
