// Package batch tracks one submitted ledger batch through its parsing
// lifecycle: registered by the API gateway, picked up by the parse
// processor, and marked completed or failed with row counters.
package batch

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrEmptyLedgerName = errors.New("ledger name cannot be empty")
	ErrNoRows          = errors.New("batch must contain at least one row")
)

// Status defines batch processing states
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// Batch represents one submitted batch of ledger rows
type Batch struct {
	ID            uuid.UUID  `json:"id"`
	LedgerName    string     `json:"ledger_name"`
	Status        Status     `json:"status"`
	RowCount      int        `json:"row_count"`
	FailedCount   int        `json:"failed_count"`
	FailureReason string     `json:"failure_reason,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// NewBatch registers a new pending batch for the given ledger
func NewBatch(ledgerName string, rowCount int, correlationID string) (*Batch, error) {
	if ledgerName == "" {
		return nil, ErrEmptyLedgerName
	}
	if rowCount <= 0 {
		return nil, ErrNoRows
	}

	now := time.Now()
	return &Batch{
		ID:            uuid.New(),
		LedgerName:    ledgerName,
		Status:        StatusPending,
		RowCount:      rowCount,
		CorrelationID: correlationID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// IsTerminal reports whether the batch has reached a final state
func (b *Batch) IsTerminal() bool {
	return b.Status == StatusCompleted || b.Status == StatusFailed
}
