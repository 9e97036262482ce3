// Package history records the outcome of every spawned command so that
// callers can list and inspect past runs.
package history

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Load when no record exists for a run ID.
var ErrNotFound = errors.New("run not found")

// Store persists and retrieves run records.
type Store interface {
	Save(rec *Record) error
	Load(runID string) (*Record, error)
	// List returns up to limit records, most recent first.
	// A limit <= 0 returns all records.
	List(limit int) ([]*Record, error)
}

// Record holds the outcome of one spawned command.
type Record struct {
	ID         string    `json:"id"`
	Operation  string    `json:"operation"` // e.g. run_doctor
	Argv       []string  `json:"argv"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Success    bool      `json:"success"`
	Stdout     string    `json:"stdout"`
	Stderr     string    `json:"stderr"`
	ExitCode   *int      `json:"exit_code"`
	Truncated  bool      `json:"truncated,omitempty"`
}

// Summary returns a one-line description of the record.
func (r *Record) Summary() string {
	status := "ok"
	if !r.Success {
		status = "failed"
	}
	code := "-"
	if r.ExitCode != nil {
		code = fmt.Sprint(*r.ExitCode)
	}
	return fmt.Sprintf("%s  %s  %-20s %-6s exit=%s  %s",
		r.ID, r.StartedAt.Format(time.RFC3339), r.Operation, status, code, strings.Join(r.Argv, " "))
}

// ValidateID rejects run IDs that are not UUIDs. Run IDs become file
// names, so anything else is refused before touching the disk.
func ValidateID(runID string) error {
	if _, err := uuid.Parse(runID); err != nil {
		return fmt.Errorf("invalid run id %q: %w", runID, err)
	}
	return nil
}

// NopStore discards records. It is used when history is disabled.
type NopStore struct{}

// Save discards rec.
func (NopStore) Save(*Record) error { return nil }

// Load always reports ErrNotFound.
func (NopStore) Load(runID string) (*Record, error) {
	return nil, fmt.Errorf("loading run %s: %w", runID, ErrNotFound)
}

// List returns no records.
func (NopStore) List(int) ([]*Record, error) { return nil, nil }
