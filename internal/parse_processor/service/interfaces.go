package service

import (
	"context"

	"github.com/colonial-ledger-parser/internal/domain/batch"
	"github.com/colonial-ledger-parser/internal/domain/entry"
)

// ProcessingService defines the interface for processing parse batch requests.
type ProcessingService interface {
	ProcessBatch(ctx context.Context, request *batch.ParseRequest) error
}

// RowParser turns a batch of raw rows into parsed entries. Satisfied by the
// row pipeline; an interface here so processing can be tested without workers.
type RowParser interface {
	ParseBatch(ctx context.Context, rows []entry.RawRow, ledgerName string) []*entry.ParsedLedgerEntry
}
