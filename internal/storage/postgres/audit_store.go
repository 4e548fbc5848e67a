package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"gameitem-nft/internal/domain"
	"gameitem-nft/internal/storage"
)

// AuditStore implements storage.AuditStore using PostgreSQL.
type AuditStore struct {
	pool *Pool
}

// NewAuditStore creates a new AuditStore.
func NewAuditStore(pool *Pool) *AuditStore {
	return &AuditStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AuditStore = (*AuditStore)(nil)

// Insert appends a new audit record. Returns ErrDuplicateKey if the ID exists.
func (s *AuditStore) Insert(ctx context.Context, r *domain.AuditRecord) error {
	if r == nil || r.ID == "" || r.Operation == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO audit_records (
			id, operation, actor, token_id, tx_hash, outcome, detail, duration_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		r.ID,
		r.Operation,
		r.Actor,
		r.TokenID,
		r.TxHash,
		r.Outcome,
		r.Detail,
		r.DurationMs,
		r.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// GetByOperation retrieves all records for an operation, ordered by creation
// time ASC.
func (s *AuditStore) GetByOperation(ctx context.Context, operation string) ([]*domain.AuditRecord, error) {
	query := `
		SELECT id, operation, actor, token_id, tx_hash, outcome, detail, duration_ms, created_at
		FROM audit_records
		WHERE operation = $1
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, query, operation)
	if err != nil {
		return nil, fmt.Errorf("get audit records by operation: %w", err)
	}
	defer rows.Close()

	return scanAuditRecords(rows)
}

// GetByTimeRange retrieves records created within [start, end] (inclusive).
func (s *AuditStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.AuditRecord, error) {
	query := `
		SELECT id, operation, actor, token_id, tx_hash, outcome, detail, duration_ms, created_at
		FROM audit_records
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get audit records by time range: %w", err)
	}
	defer rows.Close()

	return scanAuditRecords(rows)
}

// scanAuditRecords scans all rows into audit records.
func scanAuditRecords(rows pgx.Rows) ([]*domain.AuditRecord, error) {
	var out []*domain.AuditRecord
	for rows.Next() {
		var r domain.AuditRecord
		err := rows.Scan(
			&r.ID,
			&r.Operation,
			&r.Actor,
			&r.TokenID,
			&r.TxHash,
			&r.Outcome,
			&r.Detail,
			&r.DurationMs,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return out, nil
}
