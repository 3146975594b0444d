package grammar

import (
	"context"
	"strings"

	"github.com/colonial-ledger-parser/internal/domain/entry"
)

// ParseRegular parses a generic commodity sale entry. Bracketed groups carry
// either a "TM:"-prefixed tobacco mark or "&"-separated item-mention triples;
// the narrative text around them, bracket markers stripped, becomes the
// cleaned entry text.
func (p *Parser) ParseRegular(ctx context.Context, entryText string) (*entry.RegularTransaction, error) {
	res := &entry.RegularTransaction{
		TobaccoMarks:   []entry.MarkReference{},
		ItemsMentioned: []entry.ItemMention{},
	}

	if !strings.Contains(entryText, "[") {
		res.EntryText = strings.TrimSpace(entryText)
		return res, nil
	}

	segments := strings.Split(entryText, "[")
	var cleaned strings.Builder
	cleaned.WriteString(segments[0])

	for _, segment := range segments[1:] {
		body, after, _ := strings.Cut(segment, "]")

		if strings.Contains(strings.ReplaceAll(segment, " ", ""), "TM:") {
			cleaned.WriteString(after)
			// the mark name is everything after the last colon
			parts := strings.Split(body, ":")
			markName := strings.TrimSpace(parts[len(parts)-1])
			res.TobaccoMarks = append(res.TobaccoMarks, p.res.ResolveMark(ctx, markName))
			continue
		}

		mentions, err := parseMentions(body, false)
		if err != nil {
			return nil, err
		}
		res.ItemsMentioned = append(res.ItemsMentioned, mentions...)
	}

	res.EntryText = strings.TrimSpace(cleaned.String())
	return res, nil
}
