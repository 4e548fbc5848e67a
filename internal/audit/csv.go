package audit

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"gameitem-nft/internal/domain"
)

// csvHeader is written once when the trail file is created.
var csvHeader = []string{
	"created_at", "id", "operation", "actor", "token_id", "tx_hash", "outcome", "detail", "duration_ms",
}

// CSVTrail appends audit records to a CSV file. The file is opened on first
// record so that a configured-but-unused trail creates no file.
type CSVTrail struct {
	path string

	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVTrail creates a CSV trail writing to path.
func NewCSVTrail(path string) *CSVTrail {
	return &CSVTrail{path: path}
}

// Record appends one row.
func (t *CSVTrail) Record(_ context.Context, rec *domain.AuditRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.writer == nil {
		if err := t.open(); err != nil {
			return err
		}
	}

	row := []string{
		strconv.FormatInt(rec.CreatedAt, 10),
		rec.ID,
		rec.Operation,
		rec.Actor,
		rec.TokenID,
		rec.TxHash,
		rec.Outcome,
		rec.Detail,
		strconv.FormatInt(rec.DurationMs, 10),
	}
	if err := t.writer.Write(row); err != nil {
		return fmt.Errorf("write audit row: %w", err)
	}
	t.writer.Flush()
	if err := t.writer.Error(); err != nil {
		return fmt.Errorf("flush audit trail: %w", err)
	}
	return nil
}

func (t *CSVTrail) open() error {
	info, statErr := os.Stat(t.path)
	fresh := statErr != nil || info.Size() == 0

	file, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit trail: %w", err)
	}

	t.file = file
	t.writer = csv.NewWriter(file)

	if fresh {
		if err := t.writer.Write(csvHeader); err != nil {
			return fmt.Errorf("write audit header: %w", err)
		}
		t.writer.Flush()
	}
	return nil
}

// Close flushes and closes the trail file.
func (t *CSVTrail) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.writer != nil {
		t.writer.Flush()
	}
	if t.file != nil {
		return t.file.Close()
	}
	return nil
}

var _ Recorder = (*CSVTrail)(nil)
