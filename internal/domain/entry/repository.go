package entry

import (
	"context"

	"github.com/google/uuid"
)

// Repository manages parsed-entry persistence with pagination support
type Repository interface {
	CreateMany(ctx context.Context, entries []*ParsedLedgerEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*ParsedLedgerEntry, error)
	GetByBatchID(ctx context.Context, batchID uuid.UUID, limit, offset int) ([]*ParsedLedgerEntry, error)
	CountByBatchID(ctx context.Context, batchID uuid.UUID) (int64, error)
	CountFailedByBatchID(ctx context.Context, batchID uuid.UUID) (int64, error)
	DeleteByBatchID(ctx context.Context, batchID uuid.UUID) (int64, error)
}

// ErrEntryNotFound indicates a missing parsed entry
type ErrEntryNotFound struct {
	ID uuid.UUID
}

func (e ErrEntryNotFound) Error() string {
	return "parsed entry not found: " + e.ID.String()
}

// Is implements the errors.Is interface for ErrEntryNotFound
func (e ErrEntryNotFound) Is(target error) bool {
	t, ok := target.(ErrEntryNotFound)
	if !ok {
		return false
	}
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}
