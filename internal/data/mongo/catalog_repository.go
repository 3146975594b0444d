package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/colonial-ledger-parser/internal/domain/catalog"
)

// catalogDoc is the shape shared by the master-list collections. Only the
// category collection populates category and subcategory.
type catalogDoc struct {
	ID          string `bson:"_id"`
	Category    string `bson:"category,omitempty"`
	Subcategory string `bson:"subcategory,omitempty"`
}

// CatalogRepository implements catalog.LookupService against the master-list
// collections (people, places, tobacco_marks, categories). People, places and
// categories use relevance-ranked text search; tobacco marks are matched
// exactly by their numeric id.
type CatalogRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewCatalogRepository creates a new MongoDB catalog lookup
func NewCatalogRepository(logger *slog.Logger, db *mongo.Database) catalog.LookupService {
	return &CatalogRepository{
		db:     db,
		logger: logger,
	}
}

// Search returns the best hit for the query in the given collection, or nil
// when nothing matches. Transport failures are wrapped in
// catalog.ErrLookupUnavailable so callers can degrade gracefully.
func (r *CatalogRepository) Search(ctx context.Context, query string, collection catalog.Collection) (*catalog.Match, error) {
	if query == "" {
		return nil, nil
	}

	coll := r.db.Collection(string(collection))

	var filter bson.M
	opts := options.FindOne()
	if collection == catalog.Marks {
		filter = bson.M{"tobacco_mark_id": query}
	} else {
		filter = bson.M{"$text": bson.M{"$search": query}}
		opts = opts.
			SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}}).
			SetSort(bson.M{"score": bson.M{"$meta": "textScore"}})
	}

	var doc catalogDoc
	err := coll.FindOne(ctx, filter, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Warn("Catalog lookup failed",
			"collection", string(collection),
			"query", query,
			"error", err)
		return nil, fmt.Errorf("%w: %v", catalog.ErrLookupUnavailable, err)
	}

	return &catalog.Match{
		ID:          doc.ID,
		Category:    doc.Category,
		Subcategory: doc.Subcategory,
	}, nil
}
