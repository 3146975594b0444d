package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/colonial-ledger-parser/internal/domain/batch"
	"github.com/colonial-ledger-parser/internal/domain/entry"
	"github.com/colonial-ledger-parser/internal/platform/messaging/producers"
)

// BatchServiceImpl implements the BatchService interface
type BatchServiceImpl struct {
	batchRepo batch.Repository
	entryRepo entry.Repository
	producer  producers.MessagePublisher
	logger    *slog.Logger
}

// NewBatchService creates a new batch service
func NewBatchService(logger *slog.Logger, batchRepo batch.Repository, entryRepo entry.Repository, producer producers.MessagePublisher) BatchService {
	return &BatchServiceImpl{
		batchRepo: batchRepo,
		entryRepo: entryRepo,
		producer:  producer,
		logger:    logger,
	}
}

// CreateBatch registers a pending batch and publishes its parse request.
// The batch row is committed before the message so a consumer never sees a
// request for a batch that does not exist yet.
func (s *BatchServiceImpl) CreateBatch(ctx context.Context, ledgerName, correlationID string, rows []entry.RawRow) (*batch.Batch, error) {
	b, err := batch.NewBatch(ledgerName, len(rows), correlationID)
	if err != nil {
		return nil, err
	}

	if err := s.batchRepo.Create(ctx, b); err != nil {
		s.logger.Error("Failed to create batch",
			"ledger_name", ledgerName,
			"row_count", len(rows),
			"error", err,
		)
		return nil, err
	}

	request := &batch.ParseRequest{
		BatchID:       b.ID,
		LedgerName:    b.LedgerName,
		CorrelationID: correlationID,
		Rows:          rows,
		Timestamp:     time.Now(),
	}

	if err := s.producer.Publish(ctx, b.ID.String(), request); err != nil {
		s.logger.Error("Failed to publish parse request",
			"batch_id", b.ID,
			"ledger_name", ledgerName,
			"error", err,
		)
		// Best effort: the batch would otherwise sit in PENDING forever
		if markErr := s.batchRepo.MarkFailed(ctx, b.ID, "failed to publish parse request"); markErr != nil {
			s.logger.Error("Failed to mark unpublished batch as failed", "batch_id", b.ID, "error", markErr)
		}
		return nil, err
	}

	s.logger.Info("Parse request published",
		"batch_id", b.ID,
		"ledger_name", ledgerName,
		"row_count", len(rows),
	)

	return b, nil
}

// GetBatchByID retrieves a batch by its ID. Returns nil if not found
func (s *BatchServiceImpl) GetBatchByID(ctx context.Context, id uuid.UUID) (*batch.Batch, error) {
	b, err := s.batchRepo.GetByID(ctx, id)
	if err != nil {
		var errBatchNotFound batch.ErrBatchNotFound
		if errors.As(err, &errBatchNotFound) {
			s.logger.Info("Batch not found", "batch_id", id.String())
			return nil, nil
		}
		s.logger.Error("Failed to get batch by ID", "batch_id", id.String(), "error", err)
		return nil, err
	}
	return b, nil
}

// GetBatchEntries retrieves a paginated list of parsed entries for a batch.
// Returns ErrBatchNotFound if the batch itself doesn't exist
func (s *BatchServiceImpl) GetBatchEntries(ctx context.Context, batchID uuid.UUID, page, perPage int) ([]*entry.ParsedLedgerEntry, int64, error) {
	if _, err := s.batchRepo.GetByID(ctx, batchID); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage

	entries, err := s.entryRepo.GetByBatchID(ctx, batchID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.entryRepo.CountByBatchID(ctx, batchID)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
