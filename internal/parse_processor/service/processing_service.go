package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/colonial-ledger-parser/internal/domain/batch"
	"github.com/colonial-ledger-parser/internal/domain/entry"
)

type ProcessingServiceImpl struct {
	batchRepo batch.Repository
	entryRepo entry.Repository
	parser    RowParser
	logger    *slog.Logger
}

func NewProcessingService(
	logger *slog.Logger,
	batchRepo batch.Repository,
	entryRepo entry.Repository,
	parser RowParser,
) ProcessingService {
	return &ProcessingServiceImpl{
		batchRepo: batchRepo,
		entryRepo: entryRepo,
		parser:    parser,
		logger:    logger,
	}
}

// ProcessBatch handles the core logic for parsing one batch of rows.
// Row-level parse failures are recorded on the entries themselves and never
// fail the batch; only infrastructure errors are returned, so the Kafka
// consumer can retry the message.
func (s *ProcessingServiceImpl) ProcessBatch(ctx context.Context, request *batch.ParseRequest) error {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Processing parse batch",
		"batch_id", request.BatchID.String(),
		"ledger_name", request.LedgerName,
		"row_count", len(request.Rows),
	)

	// 1. Idempotency: a redelivered message for a completed batch is a no-op
	existing, err := s.batchRepo.GetByID(ctx, request.BatchID)
	if err != nil {
		var errBatchNotFound batch.ErrBatchNotFound
		if errors.As(err, &errBatchNotFound) {
			logger.Warn("Parse request references an unknown batch, dropping message", "batch_id", request.BatchID.String())
			return nil // Acknowledge; retrying will not make the batch appear
		}
		return fmt.Errorf("failed to load batch %s: %w", request.BatchID.String(), err)
	}
	if existing.Status == batch.StatusCompleted {
		logger.Info("Batch already completed, skipping", "batch_id", request.BatchID.String())
		return nil
	}

	if err := s.batchRepo.MarkProcessing(ctx, request.BatchID); err != nil {
		return fmt.Errorf("failed to mark batch %s processing: %w", request.BatchID.String(), err)
	}

	// 2. Parse every row; the pipeline isolates per-row faults
	entries := s.parser.ParseBatch(ctx, request.Rows, request.LedgerName)

	now := time.Now()
	for _, e := range entries {
		e.ID = uuid.New()
		e.BatchID = request.BatchID
		e.CreatedAt = now
	}

	// 3. Clear rows left over from a crashed earlier attempt before storing
	if deleted, err := s.entryRepo.DeleteByBatchID(ctx, request.BatchID); err != nil {
		return fmt.Errorf("failed to clear stale entries for batch %s: %w", request.BatchID.String(), err)
	} else if deleted > 0 {
		logger.Warn("Cleared stale entries from an earlier attempt", "batch_id", request.BatchID.String(), "deleted", deleted)
	}

	if err := s.entryRepo.CreateMany(ctx, entries); err != nil {
		if markErr := s.batchRepo.MarkFailed(ctx, request.BatchID, "failed to store parsed entries"); markErr != nil {
			logger.Error("Failed to mark batch as failed after storage error", "batch_id", request.BatchID.String(), "error", markErr)
		}
		return fmt.Errorf("failed to store parsed entries for batch %s: %w", request.BatchID.String(), err)
	}

	// 4. Close out the batch with its failed-row counter
	failedCount, err := s.entryRepo.CountFailedByBatchID(ctx, request.BatchID)
	if err != nil {
		return fmt.Errorf("failed to count failed rows for batch %s: %w", request.BatchID.String(), err)
	}

	if err := s.batchRepo.MarkCompleted(ctx, request.BatchID, int(failedCount)); err != nil {
		return fmt.Errorf("failed to mark batch %s completed: %w", request.BatchID.String(), err)
	}

	logger.Info("Parse batch completed",
		"batch_id", request.BatchID.String(),
		"row_count", len(entries),
		"failed_count", failedCount,
	)
	return nil
}
