// Package resolver adapts the catalog lookup service to the weak-reference
// model used by entry parsing: a name is searched once and the best hit, if
// any, is attached as an identifier. Failed or empty lookups degrade to a
// name-only reference and never fail the caller.
package resolver

import (
	"context"
	"log/slog"
	"strings"

	"github.com/colonial-ledger-parser/internal/domain/catalog"
	"github.com/colonial-ledger-parser/internal/domain/entry"
)

// Resolver issues relevance-ranked lookups against the catalog collections
type Resolver struct {
	lookup catalog.LookupService
	logger *slog.Logger
}

// New creates a Resolver backed by the given lookup service
func New(lookup catalog.LookupService, logger *slog.Logger) *Resolver {
	return &Resolver{
		lookup: lookup,
		logger: logger,
	}
}

// Placeholder identities used by transcribers for unknown people. These must
// never be matched against the master lists.
var sentinelTokens = []string{"FNU", "LNU", "CASH"}

func isSentinel(name string) bool {
	if strings.TrimSpace(name) == "" {
		return true
	}
	upper := strings.ToUpper(name)
	for _, tok := range sentinelTokens {
		if strings.Contains(upper, tok) {
			return true
		}
	}
	return false
}

// Resolve searches the given collection for the candidate name and returns a
// reference carrying the match id when one was found. Sentinel names skip the
// lookup entirely; lookup failures are absorbed into an unresolved reference.
func (r *Resolver) Resolve(ctx context.Context, name string, collection catalog.Collection) entry.EntityReference {
	ref := entry.EntityReference{Name: name}
	if isSentinel(name) {
		return ref
	}

	match, err := r.lookup.Search(ctx, name, collection)
	if err != nil {
		r.logger.Debug("lookup failed, keeping unresolved reference",
			"collection", string(collection),
			"query", name,
			"error", err,
		)
		return ref
	}
	if match != nil {
		ref.ID = match.ID
	}
	return ref
}

// ResolveMark resolves a tobacco mark by its numeric id. The mark name is
// kept as written; the id searched is the first word with every non-digit and
// leading zero stripped.
func (r *Resolver) ResolveMark(ctx context.Context, markName string) entry.MarkReference {
	ref := entry.MarkReference{MarkName: markName}

	query := NormalizeMarkID(markName)
	if query == "" {
		return ref
	}

	match, err := r.lookup.Search(ctx, query, catalog.Marks)
	if err != nil {
		r.logger.Debug("mark lookup failed, keeping unresolved reference",
			"mark", markName,
			"error", err,
		)
		return ref
	}
	if match != nil {
		ref.MarkID = match.ID
	}
	return ref
}

// NormalizeMarkID reduces a transcribed mark name to the numeric id used by
// the master list: first whitespace-separated word, digits only, no leading
// zeros.
func NormalizeMarkID(markName string) string {
	fields := strings.Fields(strings.TrimSpace(markName))
	if len(fields) == 0 {
		return ""
	}
	var digits strings.Builder
	for _, r := range fields[0] {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return strings.TrimLeft(digits.String(), "0")
}

// Categories searches the category master list for an item name and returns
// its category and subcategory, or empty strings when there is no match or
// the lookup fails.
func (r *Resolver) Categories(ctx context.Context, item string) (string, string) {
	match, err := r.lookup.Search(ctx, item, catalog.Categories)
	if err != nil {
		r.logger.Debug("category lookup failed",
			"item", item,
			"error", err,
		)
		return "", ""
	}
	if match == nil {
		return "", ""
	}
	return match.Category, match.Subcategory
}
