package batch

import (
	"time"

	"github.com/google/uuid"

	"github.com/colonial-ledger-parser/internal/domain/entry"
)

// ParseRequest is the message published to the parse queue for one batch.
// Rows travel with the request so the processor never re-reads the upload.
type ParseRequest struct {
	BatchID       uuid.UUID      `json:"batch_id"`
	LedgerName    string         `json:"ledger_name"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	Rows          []entry.RawRow `json:"rows"`
	Timestamp     time.Time      `json:"timestamp"`
}
