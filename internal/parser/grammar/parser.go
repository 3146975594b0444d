// Package grammar parses the free-text "entry" column of a ledger row. The
// column encodes one of three transaction shapes in an ad-hoc notation:
// clauses separated by "//", bracketed groups for marks and item mentions,
// and keyword-tagged settlement lines for the tobacco trade.
package grammar

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/colonial-ledger-parser/internal/domain/entry"
	"github.com/colonial-ledger-parser/internal/parser/resolver"
)

// EntryType discriminates the three grammar variants. It is fixed per row
// and never reclassified during parsing.
type EntryType int

const (
	TypeRegular  EntryType = 0
	TypeTobacco  EntryType = 1
	TypeItemized EntryType = 2
)

// ParseEntryType reads the row's type discriminator column. Blank or
// unparseable values default to the regular grammar.
func ParseEntryType(raw string) EntryType {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return TypeRegular
	}
	switch EntryType(n) {
	case TypeTobacco, TypeItemized:
		return EntryType(n)
	default:
		return TypeRegular
	}
}

// Parser tokenizes entry text into structured transaction records, resolving
// embedded mark and category references through the resolver.
type Parser struct {
	res    *resolver.Resolver
	logger *slog.Logger
}

// NewParser creates a Parser using the given resolver for reference lookups
func NewParser(res *resolver.Resolver, logger *slog.Logger) *Parser {
	return &Parser{
		res:    res,
		logger: logger,
	}
}

// clauses splits entry text on the "//" clause separator
func clauses(entryText string) []string {
	return strings.Split(entryText, "//")
}

// parseQuantity reads a numeric quantity field. Blank yields zero; anything
// else must be a number.
func parseQuantity(field string) (float64, error) {
	trimmed := strings.TrimSpace(field)
	if trimmed == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, ParseError{Fragment: field, Reason: "quantity is not numeric"}
	}
	return n, nil
}

// parseMentions parses the "&"-separated comma triples of one bracket group
// into item mentions. Only exact triples are accepted; strict controls
// whether a short group is an error or silently dropped.
func parseMentions(group string, strict bool) ([]entry.ItemMention, error) {
	var mentions []entry.ItemMention
	for _, part := range strings.Split(group, "&") {
		fields := strings.Split(part, ",")
		if len(fields) != 3 {
			if strict {
				return nil, ParseError{Fragment: part, Reason: "item mention is not a quantity, qualifier, item triple"}
			}
			continue
		}
		quantity, err := parseQuantity(fields[0])
		if err != nil {
			return nil, err
		}
		mentions = append(mentions, entry.ItemMention{
			Quantity:  quantity,
			Qualifier: strings.TrimSpace(fields[1]),
			Item:      strings.TrimSpace(fields[2]),
		})
	}
	return mentions, nil
}
