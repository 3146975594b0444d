package grammar

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonial-ledger-parser/internal/domain/catalog"
	"github.com/colonial-ledger-parser/internal/domain/entry"
	"github.com/colonial-ledger-parser/internal/domain/money"
	"github.com/colonial-ledger-parser/internal/parser/resolver"
)

// stubLookup serves canned matches keyed by "<collection>:<query>"
type stubLookup struct {
	matches map[string]*catalog.Match
	err     error
}

func (s *stubLookup) Search(_ context.Context, query string, collection catalog.Collection) (*catalog.Match, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.matches[string(collection)+":"+query], nil
}

func newTestParser(lookup catalog.LookupService) *Parser {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewParser(resolver.New(lookup, logger), logger)
}

func TestParseEntryType(t *testing.T) {
	cases := []struct {
		raw  string
		want EntryType
	}{
		{"0", TypeRegular},
		{"1", TypeTobacco},
		{"2", TypeItemized},
		{" 1 ", TypeTobacco},
		{"", TypeRegular},
		{"-", TypeRegular},
		{"9", TypeRegular},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseEntryType(tc.raw), tc.raw)
	}
}

func TestParseRegular(t *testing.T) {
	ctx := context.Background()

	t.Run("PlainNarrative", func(t *testing.T) {
		p := newTestParser(&stubLookup{})
		res, err := p.ParseRegular(ctx, "  To 2 hogsheads of rum  ")
		require.NoError(t, err)
		assert.Equal(t, "To 2 hogsheads of rum", res.EntryText)
		assert.Empty(t, res.TobaccoMarks)
		assert.Empty(t, res.ItemsMentioned)
	})

	t.Run("TobaccoMark", func(t *testing.T) {
		p := newTestParser(&stubLookup{matches: map[string]*catalog.Match{
			"tobacco_marks:7": {ID: "mark-7"},
		}})
		res, err := p.ParseRegular(ctx, "Sold goods [TM: 007] extra notes")
		require.NoError(t, err)
		assert.Equal(t, "Sold goods  extra notes", res.EntryText)
		require.Len(t, res.TobaccoMarks, 1)
		assert.Equal(t, "007", res.TobaccoMarks[0].MarkName)
		assert.Equal(t, "mark-7", res.TobaccoMarks[0].MarkID)
	})

	t.Run("UnresolvedMark", func(t *testing.T) {
		p := newTestParser(&stubLookup{})
		res, err := p.ParseRegular(ctx, "Sold goods [TM: 99]")
		require.NoError(t, err)
		require.Len(t, res.TobaccoMarks, 1)
		assert.Equal(t, "99", res.TobaccoMarks[0].MarkName)
		assert.Empty(t, res.TobaccoMarks[0].MarkID)
	})

	t.Run("ItemMentions", func(t *testing.T) {
		p := newTestParser(&stubLookup{})
		res, err := p.ParseRegular(ctx, "To sundries [2, yards, osnaburg & 1, pair, shoes]")
		require.NoError(t, err)
		assert.Equal(t, "To sundries", res.EntryText)
		require.Len(t, res.ItemsMentioned, 2)
		assert.Equal(t, entry.ItemMention{Quantity: 2, Qualifier: "yards", Item: "osnaburg"}, res.ItemsMentioned[0])
		assert.Equal(t, entry.ItemMention{Quantity: 1, Qualifier: "pair", Item: "shoes"}, res.ItemsMentioned[1])
	})

	t.Run("NonTripleGroupDropped", func(t *testing.T) {
		p := newTestParser(&stubLookup{})
		res, err := p.ParseRegular(ctx, "Credit note [see folio 14]")
		require.NoError(t, err)
		assert.Empty(t, res.ItemsMentioned)
		assert.Equal(t, "Credit note", res.EntryText)
	})

	t.Run("BadMentionQuantity", func(t *testing.T) {
		p := newTestParser(&stubLookup{})
		_, err := p.ParseRegular(ctx, "Goods [two, yards, cloth]")
		assert.ErrorIs(t, err, ParseError{})
	})
}

func TestParseItemized(t *testing.T) {
	ctx := context.Background()
	lookup := &stubLookup{matches: map[string]*catalog.Match{
		"categories:linen":  {ID: "c1", Category: "Cloth", Subcategory: "Textiles"},
		"categories:shirts": {ID: "c2", Category: "Clothing", Subcategory: "Apparel"},
	}}

	t.Run("SingleItem", func(t *testing.T) {
		p := newTestParser(lookup)
		txs, err := p.ParseItemized(ctx, "2, fine, white*checked, linen, 2/6, 5/:")
		require.NoError(t, err)
		require.Len(t, txs, 1)
		require.Len(t, txs[0].Items, 1)

		item := txs[0].Items[0]
		assert.Equal(t, 2.0, item.Quantity)
		assert.Equal(t, "fine", item.Qualifier)
		assert.Equal(t, []string{"white", "checked"}, item.Variants)
		assert.Equal(t, "linen", item.Item)
		assert.Equal(t, "Cloth", item.Category)
		assert.Equal(t, "Textiles", item.Subcategory)
		assert.Equal(t, money.Amount{Shillings: 2, Pence: 6}, item.UnitCost)
		assert.Equal(t, money.Amount{Shillings: 5}, item.ItemCost)
	})

	t.Run("DerivedUnitCost", func(t *testing.T) {
		p := newTestParser(lookup)
		txs, err := p.ParseItemized(ctx, "2, , , linen, , 10/:")
		require.NoError(t, err)
		item := txs[0].Items[0]
		assert.Equal(t, money.Amount{Shillings: 5}, item.UnitCost)
		assert.Equal(t, money.Amount{Shillings: 10}, item.ItemCost)
	})

	t.Run("DerivedUnitCostBlankQuantity", func(t *testing.T) {
		p := newTestParser(lookup)
		txs, err := p.ParseItemized(ctx, ", , , linen, , 10/:")
		require.NoError(t, err)
		item := txs[0].Items[0]
		assert.Equal(t, 0.0, item.Quantity)
		assert.Equal(t, money.Amount{Shillings: 10}, item.UnitCost)
	})

	t.Run("DerivedItemCostFromRate", func(t *testing.T) {
		p := newTestParser(lookup)
		// 2 units at a per-100 rate of 11/:8
		txs, err := p.ParseItemized(ctx, "2, , , linen, 11/:8, ")
		require.NoError(t, err)
		item := txs[0].Items[0]
		assert.Equal(t, money.Amount{Shillings: 11, Pence: 8}, item.UnitCost)
		assert.Equal(t, money.Amount{Pounds: 1, Shillings: 3, Pence: 4}, item.ItemCost)
	})

	t.Run("PerOrderPrefix", func(t *testing.T) {
		p := newTestParser(lookup)
		txs, err := p.ParseItemized(ctx, "PER ORDER 1, , , linen, 2/:, 2/:")
		require.NoError(t, err)
		assert.True(t, txs[0].PerOrder)
		assert.Equal(t, "linen", txs[0].Items[0].Item)
	})

	t.Run("PercentageFlag", func(t *testing.T) {
		p := newTestParser(lookup)
		txs, err := p.ParseItemized(ctx, "%5, , , linen, 2/:, 10/:")
		require.NoError(t, err)
		assert.True(t, txs[0].Percentage)
		assert.Equal(t, 5.0, txs[0].Items[0].Quantity)
	})

	t.Run("SingleFieldClauseIgnored", func(t *testing.T) {
		p := newTestParser(lookup)
		txs, err := p.ParseItemized(ctx, "memo only")
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Empty(t, txs[0].Items)
	})

	t.Run("BracketMentions", func(t *testing.T) {
		p := newTestParser(lookup)
		txs, err := p.ParseItemized(ctx, "2, , , linen, 2/:, 5/: [1, cask, nails]")
		require.NoError(t, err)
		require.Len(t, txs[0].ItemsMentioned, 1)
		assert.Equal(t, "nails", txs[0].ItemsMentioned[0].Item)
	})

	t.Run("MissingItemName", func(t *testing.T) {
		p := newTestParser(lookup)
		_, err := p.ParseItemized(ctx, "1, a, b")
		assert.ErrorIs(t, err, ParseError{})
	})

	t.Run("SplitSale", func(t *testing.T) {
		p := newTestParser(lookup)
		txs, err := p.ParseItemized(ctx, "2, fine, white, linen, 3, coarse, brown, shirts, 20/:")
		require.NoError(t, err)
		require.Len(t, txs, 1)
		require.Len(t, txs[0].Items, 2)

		first, second := txs[0].Items[0], txs[0].Items[1]
		assert.Equal(t, 2.0, first.Quantity)
		assert.Equal(t, "linen", first.Item)
		assert.Equal(t, money.Amount{Shillings: 10}, first.ItemCost)
		assert.Equal(t, money.Amount{Shillings: 5}, first.UnitCost)

		assert.Equal(t, 3.0, second.Quantity)
		assert.Equal(t, "shirts", second.Item)
		assert.Equal(t, money.Amount{Shillings: 10}, second.ItemCost)
		assert.Equal(t, money.Amount{Shillings: 3, Pence: 4}, second.UnitCost)
	})

	t.Run("MultipleClauses", func(t *testing.T) {
		p := newTestParser(lookup)
		txs, err := p.ParseItemized(ctx, "2, , , linen, 2/:, 4/: // 1, , , shirts, 5/:, 5/:")
		require.NoError(t, err)
		assert.Len(t, txs, 2)
	})
}

func TestParseTobacco(t *testing.T) {
	ctx := context.Background()
	zero := money.Amount{}

	t.Run("MarksAndNotes", func(t *testing.T) {
		p := newTestParser(&stubLookup{matches: map[string]*catalog.Match{
			"tobacco_marks:42": {ID: "mark-42"},
		}})
		res, err := p.ParseTobacco(ctx, "[TM: 0042] {N 1 1000 100 900}", "", zero, zero)
		require.NoError(t, err)
		require.Len(t, res.Marks, 1)
		assert.Equal(t, "0042", res.Marks[0].MarkName)
		assert.Equal(t, "mark-42", res.Marks[0].MarkID)
		require.Len(t, res.Notes, 1)
		assert.Equal(t, entry.WeightNote{NoteNum: 1, TotalWeight: 1000, BarrelWeight: 100, TobaccoWeight: 900}, res.Notes[0])
	})

	t.Run("NotesOnlyClause", func(t *testing.T) {
		p := newTestParser(&stubLookup{})
		res, err := p.ParseTobacco(ctx, "{2 500 50 450}", "", zero, zero)
		require.NoError(t, err)
		require.Len(t, res.Notes, 1)
		assert.Equal(t, entry.WeightNote{NoteNum: 2, TotalWeight: 500, BarrelWeight: 50, TobaccoWeight: 450}, res.Notes[0])
	})

	t.Run("ShortNoteDefaultsZero", func(t *testing.T) {
		p := newTestParser(&stubLookup{})
		res, err := p.ParseTobacco(ctx, "{7 1200}", "", zero, zero)
		require.NoError(t, err)
		assert.Equal(t, entry.WeightNote{NoteNum: 7, TotalWeight: 1200}, res.Notes[0])
	})

	t.Run("ShavedWeight", func(t *testing.T) {
		p := newTestParser(&stubLookup{})
		res, err := p.ParseTobacco(ctx, "100 lbs OFF // 50 off", "", zero, zero)
		require.NoError(t, err)
		assert.Equal(t, 150, res.TobaccoShavedOff)
	})

	t.Run("Narrative", func(t *testing.T) {
		p := newTestParser(&stubLookup{})
		res, err := p.ParseTobacco(ctx, "Sold his crop! // at the warehouse", "", zero, zero)
		require.NoError(t, err)
		assert.Equal(t, "Sold his crop  at the warehouse", res.EntryText)
	})

	t.Run("MoneyLineExplicitRate", func(t *testing.T) {
		p := newTestParser(&stubLookup{})
		res, err := p.ParseTobacco(ctx, "[MONEY] 500 AT 11/:8", "", zero, zero)
		require.NoError(t, err)
		require.Len(t, res.MoneyLines, 1)

		ml := res.MoneyLines[0]
		assert.Equal(t, " ", ml.MoneyType)
		assert.Equal(t, 500.0, ml.TobaccoAmount)
		assert.Equal(t, money.Amount{Shillings: 11, Pence: 8}, ml.RateForTobacco)
		assert.Equal(t, money.Amount{Pounds: 2, Shillings: 18, Pence: 4}, ml.TobaccoSoldFor)
	})

	t.Run("MoneyLineColonyLabel", func(t *testing.T) {
		p := newTestParser(&stubLookup{})
		currency := money.Amount{Pounds: 5}
		res, err := p.ParseTobacco(ctx, "[MONEY] 500 AT 10/:", "virginia", zero, currency)
		require.NoError(t, err)
		assert.Equal(t, "Virginia", res.MoneyLines[0].MoneyType)
	})

	t.Run("MoneyLineBareQuantity", func(t *testing.T) {
		p := newTestParser(&stubLookup{})
		sterling := money.Amount{Pounds: 5}
		res, err := p.ParseTobacco(ctx, "[MONEY] [CURRENCY] 500", "", sterling, zero)
		require.NoError(t, err)

		ml := res.MoneyLines[0]
		assert.Equal(t, "Currency", ml.MoneyType)
		assert.Equal(t, 500.0, ml.TobaccoAmount)
		assert.Equal(t, money.Amount{Pence: 2}, ml.RateForTobacco)
		assert.Equal(t, sterling, ml.TobaccoSoldFor)
	})

	t.Run("MoneyLineCaskSale", func(t *testing.T) {
		p := newTestParser(&stubLookup{})
		res, err := p.ParseTobacco(ctx, "[MONEY] 1000 AT 10/: & 20/: FOR 2 CASK", "", zero, zero)
		require.NoError(t, err)

		ml := res.MoneyLines[0]
		assert.Equal(t, 1000.0, ml.TobaccoAmount)
		assert.Equal(t, money.Amount{Shillings: 10}, ml.RateForTobacco)
		assert.Equal(t, money.Amount{Pounds: 5}, ml.TobaccoSoldFor)
		assert.Equal(t, 2, ml.CasksInTransaction)
		assert.Equal(t, money.Amount{Pounds: 1}, ml.CasksSoldForEach)
	})

	t.Run("MultipleMoneyLines", func(t *testing.T) {
		p := newTestParser(&stubLookup{})
		res, err := p.ParseTobacco(ctx, "[MONEY] {500 AT 11/:8 {300, 8d", "", zero, zero)
		require.NoError(t, err)
		require.Len(t, res.MoneyLines, 2)
		assert.Equal(t, money.Amount{Pounds: 2, Shillings: 18, Pence: 4}, res.MoneyLines[0].TobaccoSoldFor)
		assert.Equal(t, money.Amount{Shillings: 2}, res.MoneyLines[1].TobaccoSoldFor)
	})

	t.Run("LookupFailureNeverFails", func(t *testing.T) {
		p := newTestParser(&stubLookup{err: errors.New("down")})
		res, err := p.ParseTobacco(ctx, "[TM: 0042] {1 100 10 90}", "", zero, zero)
		require.NoError(t, err)
		assert.Empty(t, res.Marks[0].MarkID)
	})
}
