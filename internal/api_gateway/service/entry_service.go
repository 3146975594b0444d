package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/colonial-ledger-parser/internal/domain/entry"
)

// EntryServiceImpl implements the EntryService interface
type EntryServiceImpl struct {
	entryRepo entry.Repository
	logger    *slog.Logger
}

// NewEntryService creates a new parsed-entry read service
func NewEntryService(logger *slog.Logger, entryRepo entry.Repository) EntryService {
	return &EntryServiceImpl{
		entryRepo: entryRepo,
		logger:    logger,
	}
}

// GetEntryByID retrieves a parsed entry by its ID. Returns nil if not found
func (s *EntryServiceImpl) GetEntryByID(ctx context.Context, id uuid.UUID) (*entry.ParsedLedgerEntry, error) {
	res, err := s.entryRepo.GetByID(ctx, id)
	if err != nil {
		var errEntryNotFound entry.ErrEntryNotFound
		if errors.As(err, &errEntryNotFound) {
			s.logger.Info("Parsed entry not found", "entry_id", id.String())
			return nil, nil
		}
		s.logger.Error("Failed to get parsed entry by ID", "entry_id", id.String(), "error", err)
		return nil, err
	}
	return res, nil
}
