package batch

import (
	"context"

	"github.com/google/uuid"
)

// Repository manages batch persistence and lifecycle transitions
type Repository interface {
	Create(ctx context.Context, b *Batch) error
	GetByID(ctx context.Context, id uuid.UUID) (*Batch, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	MarkCompleted(ctx context.Context, id uuid.UUID, failedCount int) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

// ErrBatchNotFound indicates a missing batch
type ErrBatchNotFound struct {
	ID uuid.UUID
}

func (e ErrBatchNotFound) Error() string {
	return "batch not found: " + e.ID.String()
}

// Is implements the errors.Is interface for ErrBatchNotFound
func (e ErrBatchNotFound) Is(target error) bool {
	t, ok := target.(ErrBatchNotFound)
	if !ok {
		return false
	}
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}
