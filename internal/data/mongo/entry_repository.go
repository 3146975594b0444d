package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/colonial-ledger-parser/internal/domain/entry"
)

const (
	// EntryCollectionName is the name of the parsed entries collection in MongoDB
	EntryCollectionName = "parsed_entries"
)

// EntryRepository implements the entry.Repository interface for MongoDB
type EntryRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewEntryRepository creates a new MongoDB parsed-entry repository
func NewEntryRepository(logger *slog.Logger, db *mongo.Database) entry.Repository {
	return &EntryRepository{
		db:     db,
		logger: logger,
	}
}

// CreateMany stores every parsed entry of a batch in one insert
func (r *EntryRepository) CreateMany(ctx context.Context, entries []*entry.ParsedLedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	collection := r.db.Collection(EntryCollectionName)

	docs := make([]interface{}, len(entries))
	for i, e := range entries {
		docs[i] = e
	}

	_, err := collection.InsertMany(ctx, docs)
	if err != nil {
		r.logger.Error("Failed to store parsed entries",
			"batch_id", entries[0].BatchID.String(),
			"count", len(entries),
			"error", err)
		return fmt.Errorf("failed to store parsed entries: %w", err)
	}

	return nil
}

// GetByID retrieves a parsed entry by its ID.
// Returns ErrEntryNotFound if no entry exists.
func (r *EntryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entry.ParsedLedgerEntry, error) {
	collection := r.db.Collection(EntryCollectionName)

	filter := bson.M{"id": id}
	var e entry.ParsedLedgerEntry
	err := collection.FindOne(ctx, filter).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entry.ErrEntryNotFound{ID: id}
		}
		r.logger.Error("Failed to get parsed entry",
			"id", id.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get parsed entry: %w", err)
	}

	return &e, nil
}

// GetByBatchID retrieves paginated parsed entries for a batch.
// Results are sorted by row index so output follows the spreadsheet order.
func (r *EntryRepository) GetByBatchID(ctx context.Context, batchID uuid.UUID, limit, offset int) ([]*entry.ParsedLedgerEntry, error) {
	collection := r.db.Collection(EntryCollectionName)

	filter := bson.M{"batch_id": batchID}
	opts := options.Find().
		SetSort(bson.M{"row_index": 1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get parsed entries",
			"batch_id", batchID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get parsed entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*entry.ParsedLedgerEntry
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode parsed entries",
			"batch_id", batchID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode parsed entries: %w", err)
	}

	return entries, nil
}

// CountByBatchID counts the parsed entries stored for a batch
func (r *EntryRepository) CountByBatchID(ctx context.Context, batchID uuid.UUID) (int64, error) {
	collection := r.db.Collection(EntryCollectionName)

	count, err := collection.CountDocuments(ctx, bson.M{"batch_id": batchID})
	if err != nil {
		r.logger.Error("Failed to count parsed entries",
			"batch_id", batchID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count parsed entries: %w", err)
	}

	return count, nil
}

// CountFailedByBatchID counts the failed rows stored for a batch
func (r *EntryRepository) CountFailedByBatchID(ctx context.Context, batchID uuid.UUID) (int64, error) {
	collection := r.db.Collection(EntryCollectionName)

	filter := bson.M{"batch_id": batchID, "status.succeeded": false}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count failed parsed entries",
			"batch_id", batchID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count failed parsed entries: %w", err)
	}

	return count, nil
}

// DeleteByBatchID removes every parsed entry of a batch, returning how many
// documents were deleted. Used when a batch is re-submitted.
func (r *EntryRepository) DeleteByBatchID(ctx context.Context, batchID uuid.UUID) (int64, error) {
	collection := r.db.Collection(EntryCollectionName)

	result, err := collection.DeleteMany(ctx, bson.M{"batch_id": batchID})
	if err != nil {
		r.logger.Error("Failed to delete parsed entries",
			"batch_id", batchID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to delete parsed entries: %w", err)
	}

	return result.DeletedCount, nil
}
