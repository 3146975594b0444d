package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/colonial-ledger-parser/internal/domain/batch"
	"github.com/colonial-ledger-parser/internal/domain/entry"
)

// BatchService defines the interface for batch submission and tracking
type BatchService interface {
	// CreateBatch registers a new batch and publishes a parse request for it.
	// The rows are carried on the message; nothing is parsed synchronously.
	CreateBatch(ctx context.Context, ledgerName, correlationID string, rows []entry.RawRow) (*batch.Batch, error)

	// GetBatchByID retrieves a batch by its ID
	// Returns nil if the batch is not found
	GetBatchByID(ctx context.Context, id uuid.UUID) (*batch.Batch, error)

	// GetBatchEntries retrieves a paginated list of parsed entries for a batch
	// Returns ErrBatchNotFound if the batch doesn't exist
	GetBatchEntries(ctx context.Context, batchID uuid.UUID, page, perPage int) ([]*entry.ParsedLedgerEntry, int64, error)
}

// EntryService defines the interface for parsed-entry reads
type EntryService interface {
	// GetEntryByID retrieves a single parsed entry by its ID
	// Returns nil if the entry is not found
	GetEntryByID(ctx context.Context, id uuid.UUID) (*entry.ParsedLedgerEntry, error)
}
