package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/colonial-ledger-parser/internal/domain/batch"
	"github.com/colonial-ledger-parser/internal/domain/entry"
)

type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) Create(ctx context.Context, b *batch.Batch) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*batch.Batch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*batch.Batch), args.Error(1)
}

func (m *MockBatchRepository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBatchRepository) MarkCompleted(ctx context.Context, id uuid.UUID, failedCount int) error {
	args := m.Called(ctx, id, failedCount)
	return args.Error(0)
}

func (m *MockBatchRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) CreateMany(ctx context.Context, entries []*entry.ParsedLedgerEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockEntryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entry.ParsedLedgerEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entry.ParsedLedgerEntry), args.Error(1)
}

func (m *MockEntryRepository) GetByBatchID(ctx context.Context, batchID uuid.UUID, limit, offset int) ([]*entry.ParsedLedgerEntry, error) {
	args := m.Called(ctx, batchID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entry.ParsedLedgerEntry), args.Error(1)
}

func (m *MockEntryRepository) CountByBatchID(ctx context.Context, batchID uuid.UUID) (int64, error) {
	args := m.Called(ctx, batchID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEntryRepository) CountFailedByBatchID(ctx context.Context, batchID uuid.UUID) (int64, error) {
	args := m.Called(ctx, batchID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEntryRepository) DeleteByBatchID(ctx context.Context, batchID uuid.UUID) (int64, error) {
	args := m.Called(ctx, batchID)
	return args.Get(0).(int64), args.Error(1)
}

type MockRowParser struct {
	mock.Mock
}

func (m *MockRowParser) ParseBatch(ctx context.Context, rows []entry.RawRow, ledgerName string) []*entry.ParsedLedgerEntry {
	args := m.Called(ctx, rows, ledgerName)
	return args.Get(0).([]*entry.ParsedLedgerEntry)
}

func sampleRequest(rowCount int) *batch.ParseRequest {
	rows := make([]entry.RawRow, rowCount)
	for i := range rows {
		rows[i] = entry.RawRow{EntryID: "C_1760_001", EntryText: "Sold sundrys"}
	}
	return &batch.ParseRequest{
		BatchID:       uuid.New(),
		LedgerName:    "C_1760",
		CorrelationID: "corr-1",
		Rows:          rows,
		Timestamp:     time.Now(),
	}
}

func parsedEntries(n, failed int) []*entry.ParsedLedgerEntry {
	entries := make([]*entry.ParsedLedgerEntry, n)
	for i := range entries {
		entries[i] = &entry.ParsedLedgerEntry{
			RowIndex: i,
			Status:   entry.Status{Succeeded: i >= failed},
		}
		if i < failed {
			entries[i].Status.ErrorMessage = "entryID: C_1760_001, error: bad row"
		}
	}
	return entries
}

func TestProcessingServiceImpl_ProcessBatch(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockBatchRepo := new(MockBatchRepository)
		mockEntryRepo := new(MockEntryRepository)
		mockParser := new(MockRowParser)
		svc := NewProcessingService(logger, mockBatchRepo, mockEntryRepo, mockParser)

		request := sampleRequest(3)
		entries := parsedEntries(3, 1)

		mockBatchRepo.On("GetByID", ctx, request.BatchID).Return(&batch.Batch{ID: request.BatchID, Status: batch.StatusPending}, nil).Once()
		mockBatchRepo.On("MarkProcessing", ctx, request.BatchID).Return(nil).Once()
		mockParser.On("ParseBatch", ctx, request.Rows, "C_1760").Return(entries).Once()
		mockEntryRepo.On("DeleteByBatchID", ctx, request.BatchID).Return(int64(0), nil).Once()
		mockEntryRepo.On("CreateMany", ctx, mock.MatchedBy(func(stored []*entry.ParsedLedgerEntry) bool {
			if len(stored) != 3 {
				return false
			}
			for _, e := range stored {
				if e.ID == uuid.Nil || e.BatchID != request.BatchID || e.CreatedAt.IsZero() {
					return false
				}
			}
			return true
		})).Return(nil).Once()
		mockEntryRepo.On("CountFailedByBatchID", ctx, request.BatchID).Return(int64(1), nil).Once()
		mockBatchRepo.On("MarkCompleted", ctx, request.BatchID, 1).Return(nil).Once()

		err := svc.ProcessBatch(ctx, request)

		assert.NoError(t, err)
		mockBatchRepo.AssertExpectations(t)
		mockEntryRepo.AssertExpectations(t)
		mockParser.AssertExpectations(t)
	})

	t.Run("UnknownBatchIsDropped", func(t *testing.T) {
		mockBatchRepo := new(MockBatchRepository)
		mockEntryRepo := new(MockEntryRepository)
		mockParser := new(MockRowParser)
		svc := NewProcessingService(logger, mockBatchRepo, mockEntryRepo, mockParser)

		request := sampleRequest(1)
		mockBatchRepo.On("GetByID", ctx, request.BatchID).Return(nil, batch.ErrBatchNotFound{ID: request.BatchID}).Once()

		err := svc.ProcessBatch(ctx, request)

		assert.NoError(t, err, "Unknown batch should be acknowledged, not retried")
		mockBatchRepo.AssertNotCalled(t, "MarkProcessing", mock.Anything, mock.Anything)
		mockParser.AssertNotCalled(t, "ParseBatch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("CompletedBatchIsSkipped", func(t *testing.T) {
		mockBatchRepo := new(MockBatchRepository)
		mockEntryRepo := new(MockEntryRepository)
		mockParser := new(MockRowParser)
		svc := NewProcessingService(logger, mockBatchRepo, mockEntryRepo, mockParser)

		request := sampleRequest(1)
		mockBatchRepo.On("GetByID", ctx, request.BatchID).Return(&batch.Batch{ID: request.BatchID, Status: batch.StatusCompleted}, nil).Once()

		err := svc.ProcessBatch(ctx, request)

		assert.NoError(t, err)
		mockBatchRepo.AssertNotCalled(t, "MarkProcessing", mock.Anything, mock.Anything)
		mockParser.AssertNotCalled(t, "ParseBatch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("FailedBatchIsReprocessed", func(t *testing.T) {
		mockBatchRepo := new(MockBatchRepository)
		mockEntryRepo := new(MockEntryRepository)
		mockParser := new(MockRowParser)
		svc := NewProcessingService(logger, mockBatchRepo, mockEntryRepo, mockParser)

		request := sampleRequest(2)
		entries := parsedEntries(2, 0)

		mockBatchRepo.On("GetByID", ctx, request.BatchID).Return(&batch.Batch{ID: request.BatchID, Status: batch.StatusFailed}, nil).Once()
		mockBatchRepo.On("MarkProcessing", ctx, request.BatchID).Return(nil).Once()
		mockParser.On("ParseBatch", ctx, request.Rows, "C_1760").Return(entries).Once()
		mockEntryRepo.On("DeleteByBatchID", ctx, request.BatchID).Return(int64(2), nil).Once()
		mockEntryRepo.On("CreateMany", ctx, mock.Anything).Return(nil).Once()
		mockEntryRepo.On("CountFailedByBatchID", ctx, request.BatchID).Return(int64(0), nil).Once()
		mockBatchRepo.On("MarkCompleted", ctx, request.BatchID, 0).Return(nil).Once()

		err := svc.ProcessBatch(ctx, request)

		assert.NoError(t, err)
		mockBatchRepo.AssertExpectations(t)
		mockEntryRepo.AssertExpectations(t)
	})

	t.Run("StorageErrorMarksFailedAndRetries", func(t *testing.T) {
		mockBatchRepo := new(MockBatchRepository)
		mockEntryRepo := new(MockEntryRepository)
		mockParser := new(MockRowParser)
		svc := NewProcessingService(logger, mockBatchRepo, mockEntryRepo, mockParser)

		request := sampleRequest(2)
		entries := parsedEntries(2, 0)
		storeError := errors.New("mongo unavailable")

		mockBatchRepo.On("GetByID", ctx, request.BatchID).Return(&batch.Batch{ID: request.BatchID, Status: batch.StatusPending}, nil).Once()
		mockBatchRepo.On("MarkProcessing", ctx, request.BatchID).Return(nil).Once()
		mockParser.On("ParseBatch", ctx, request.Rows, "C_1760").Return(entries).Once()
		mockEntryRepo.On("DeleteByBatchID", ctx, request.BatchID).Return(int64(0), nil).Once()
		mockEntryRepo.On("CreateMany", ctx, mock.Anything).Return(storeError).Once()
		mockBatchRepo.On("MarkFailed", ctx, request.BatchID, "failed to store parsed entries").Return(nil).Once()

		err := svc.ProcessBatch(ctx, request)

		assert.Error(t, err)
		assert.ErrorIs(t, err, storeError)
		mockBatchRepo.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything, mock.Anything)
		mockBatchRepo.AssertExpectations(t)
	})

	t.Run("MarkProcessingErrorRetries", func(t *testing.T) {
		mockBatchRepo := new(MockBatchRepository)
		mockEntryRepo := new(MockEntryRepository)
		mockParser := new(MockRowParser)
		svc := NewProcessingService(logger, mockBatchRepo, mockEntryRepo, mockParser)

		request := sampleRequest(1)
		dbError := errors.New("pg unavailable")

		mockBatchRepo.On("GetByID", ctx, request.BatchID).Return(&batch.Batch{ID: request.BatchID, Status: batch.StatusPending}, nil).Once()
		mockBatchRepo.On("MarkProcessing", ctx, request.BatchID).Return(dbError).Once()

		err := svc.ProcessBatch(ctx, request)

		assert.Error(t, err)
		assert.ErrorIs(t, err, dbError)
		mockParser.AssertNotCalled(t, "ParseBatch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("CountErrorRetries", func(t *testing.T) {
		mockBatchRepo := new(MockBatchRepository)
		mockEntryRepo := new(MockEntryRepository)
		mockParser := new(MockRowParser)
		svc := NewProcessingService(logger, mockBatchRepo, mockEntryRepo, mockParser)

		request := sampleRequest(1)
		entries := parsedEntries(1, 0)
		countError := errors.New("mongo count error")

		mockBatchRepo.On("GetByID", ctx, request.BatchID).Return(&batch.Batch{ID: request.BatchID, Status: batch.StatusPending}, nil).Once()
		mockBatchRepo.On("MarkProcessing", ctx, request.BatchID).Return(nil).Once()
		mockParser.On("ParseBatch", ctx, request.Rows, "C_1760").Return(entries).Once()
		mockEntryRepo.On("DeleteByBatchID", ctx, request.BatchID).Return(int64(0), nil).Once()
		mockEntryRepo.On("CreateMany", ctx, mock.Anything).Return(nil).Once()
		mockEntryRepo.On("CountFailedByBatchID", ctx, request.BatchID).Return(int64(0), countError).Once()

		err := svc.ProcessBatch(ctx, request)

		assert.Error(t, err)
		assert.ErrorIs(t, err, countError)
		mockBatchRepo.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything, mock.Anything)
	})
}

var _ batch.Repository = (*MockBatchRepository)(nil)
var _ entry.Repository = (*MockEntryRepository)(nil)
var _ RowParser = (*MockRowParser)(nil)
