package domain

// Audit outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// AuditRecord is one append-only entry in the operation audit trail.
// Corresponds to the audit_records table in PostgreSQL.
type AuditRecord struct {
	ID         string // uuid
	Operation  string // mint, get_token, list_owned, verify_owner
	Actor      string // address the operation acted for, if any
	TokenID    string // decimal token identifier, if known
	TxHash     string // transaction hash for writes
	Outcome    string // OutcomeOK or OutcomeError
	Detail     string // error text or extra context
	DurationMs int64  // operation latency (ms)
	CreatedAt  int64  // record creation timestamp (ms)
}

// OperationEvent is one analytical datapoint per executed operation.
// Corresponds to the operation_events table in ClickHouse.
type OperationEvent struct {
	Operation   string
	Outcome     string
	Address     string
	TokenID     string
	DurationMs  int64
	TimestampMs int64
}
