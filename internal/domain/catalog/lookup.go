// Package catalog defines the contract for the external fuzzy-text lookup
// collections that entry parsing resolves names against. Implementations are
// read-only during a parse batch.
package catalog

import (
	"context"
	"errors"
)

// ErrLookupUnavailable indicates a transport or service failure in the lookup
// collaborator. Callers degrade to an unresolved reference; this error never
// fails a row.
var ErrLookupUnavailable = errors.New("lookup service unavailable")

// Collection identifies one of the master lists a name can resolve against
type Collection string

const (
	People     Collection = "people"
	Places     Collection = "places"
	Marks      Collection = "tobacco_marks"
	Categories Collection = "categories"
)

// Match is the best hit for a query. Category and Subcategory are only
// populated for the Categories collection.
type Match struct {
	ID          string
	Category    string
	Subcategory string
}

// LookupService performs a relevance-ranked text search against a collection
// and returns the top hit, or nil when nothing matches.
type LookupService interface {
	Search(ctx context.Context, query string, collection Collection) (*Match, error)
}
