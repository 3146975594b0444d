// Package postgres provides PostgreSQL implementations of the domain
// repositories. Batch lifecycle state lives here; parsed entries live in
// MongoDB.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/colonial-ledger-parser/internal/domain/batch"
	"github.com/colonial-ledger-parser/internal/platform/persistence"
)

// BatchRepository implements the batch.Repository interface for PostgreSQL
type BatchRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewBatchRepository creates a new PostgreSQL batch repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewBatchRepository(logger *slog.Logger, db *persistence.PostgresDB) batch.Repository {
	return &BatchRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so lifecycle updates can be
// made atomic with other statements.
func (r *BatchRepository) WithTx(tx pgx.Tx) batch.Repository {
	return &BatchRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a newly registered batch
func (r *BatchRepository) Create(ctx context.Context, b *batch.Batch) error {
	query := `
		INSERT INTO parse_batches (id, ledger_name, status, row_count, failed_count, failure_reason, correlation_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.querier.Exec(ctx, query,
		b.ID,
		b.LedgerName,
		b.Status,
		b.RowCount,
		b.FailedCount,
		b.FailureReason,
		b.CorrelationID,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create batch", "error", err)
		return fmt.Errorf("failed to create batch: %w", err)
	}

	return nil
}

// GetByID retrieves a batch by its ID
func (r *BatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*batch.Batch, error) {
	query := `
		SELECT id, ledger_name, status, row_count, failed_count, failure_reason, correlation_id, created_at, updated_at, completed_at
		FROM parse_batches
		WHERE id = $1
	`

	var b batch.Batch
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&b.ID,
		&b.LedgerName,
		&b.Status,
		&b.RowCount,
		&b.FailedCount,
		&b.FailureReason,
		&b.CorrelationID,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, batch.ErrBatchNotFound{ID: id}
		}
		r.logger.Error("Failed to get batch", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}

	return &b, nil
}

// MarkProcessing transitions a batch to PROCESSING
func (r *BatchRepository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE parse_batches
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, batch.StatusProcessing, id)
	if err != nil {
		r.logger.Error("Failed to mark batch processing", "id", id.String(), "error", err)
		return fmt.Errorf("failed to mark batch processing: %w", err)
	}

	if result.RowsAffected() == 0 {
		return batch.ErrBatchNotFound{ID: id}
	}

	return nil
}

// MarkCompleted transitions a batch to COMPLETED with its failed-row count
func (r *BatchRepository) MarkCompleted(ctx context.Context, id uuid.UUID, failedCount int) error {
	query := `
		UPDATE parse_batches
		SET status = $1, failed_count = $2, updated_at = NOW(), completed_at = NOW()
		WHERE id = $3
	`

	result, err := r.querier.Exec(ctx, query, batch.StatusCompleted, failedCount, id)
	if err != nil {
		r.logger.Error("Failed to mark batch completed", "id", id.String(), "error", err)
		return fmt.Errorf("failed to mark batch completed: %w", err)
	}

	if result.RowsAffected() == 0 {
		return batch.ErrBatchNotFound{ID: id}
	}

	return nil
}

// MarkFailed transitions a batch to FAILED with the reason
func (r *BatchRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE parse_batches
		SET status = $1, failure_reason = $2, updated_at = NOW(), completed_at = NOW()
		WHERE id = $3
	`

	result, err := r.querier.Exec(ctx, query, batch.StatusFailed, reason, id)
	if err != nil {
		r.logger.Error("Failed to mark batch failed", "id", id.String(), "error", err)
		return fmt.Errorf("failed to mark batch failed: %w", err)
	}

	if result.RowsAffected() == 0 {
		return batch.ErrBatchNotFound{ID: id}
	}

	return nil
}
