package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/colonial-ledger-parser/internal/domain/catalog"
	"github.com/colonial-ledger-parser/internal/domain/entry"
	"github.com/colonial-ledger-parser/internal/domain/money"
)

// scrubNumeric keeps only digits and decimal points from a transcribed cell
func scrubNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// scrubAlpha keeps only letters and whitespace from a transcribed cell
func scrubAlpha(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == ' ' || r == '\t' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// cellNumber reads a numeric cell after scrubbing; blank cells are zero
func cellNumber(s string) (float64, error) {
	scrubbed := scrubNumeric(s)
	if scrubbed == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(scrubbed, 64)
	if err != nil {
		return 0, fmt.Errorf("cell %q is not numeric", s)
	}
	return n, nil
}

// dashBlank treats the transcribers' "-" placeholder as an empty cell
func dashBlank(s string) string {
	if strings.TrimSpace(s) == "-" {
		return ""
	}
	return s
}

// buildMoney reads the row's monetary columns into both currency systems
func buildMoney(row entry.RawRow) (entry.Money, error) {
	cells := [6]string{
		row.SterlingPounds, row.SterlingShillings, row.SterlingPence,
		row.CurrencyPounds, row.CurrencyShillings, row.CurrencyPence,
	}
	var nums [6]int
	for i, cell := range cells {
		n, err := cellNumber(cell)
		if err != nil {
			return entry.Money{}, fmt.Errorf("sterling or currency columns are not formatted properly: %w", err)
		}
		nums[i] = int(n)
	}

	return entry.Money{
		Colony:    scrubAlpha(dashBlank(row.Colony)),
		Commodity: scrubAlpha(dashBlank(row.Commodity)),
		Quantity:  scrubNumeric(dashBlank(row.Quantity)),
		Sterling:  money.Amount{Pounds: nums[0], Shillings: nums[1], Pence: nums[2]},
		Currency:  money.Amount{Pounds: nums[3], Shillings: nums[4], Pence: nums[5]},
	}, nil
}

// placeholderYear stands in when the date columns carry no year. The
// collection spans the 1760s, so the decade start marks "year unknown".
const placeholderYear = 1760

// buildDate composes the transaction date from the row's day, month and year
// columns. Blank day and month default to 1; a blank year yields the
// placeholder year with no composed date.
func buildDate(dayCell, monthCell, yearCell string) (entry.DateInfo, error) {
	day, err := cellNumber(dayCell)
	if err != nil {
		return entry.DateInfo{}, fmt.Errorf("date could not be created: %w", err)
	}
	month, err := cellNumber(monthCell)
	if err != nil {
		return entry.DateInfo{}, fmt.Errorf("date could not be created: %w", err)
	}
	year, err := cellNumber(yearCell)
	if err != nil {
		return entry.DateInfo{}, fmt.Errorf("date could not be created: %w", err)
	}

	info := entry.DateInfo{Day: int(day), Month: int(month), Year: int(year)}
	if info.Month == 0 {
		info.Month = 1
	}
	if info.Day == 0 {
		info.Day = 1
	}
	if info.Year == 0 {
		info.Year = placeholderYear
		return info, nil
	}

	composed := time.Date(info.Year, time.Month(info.Month), info.Day, 0, 0, 0, 0, time.UTC)
	info.ComposedDate = &composed
	return info, nil
}

// buildMeta copies the row's archival provenance columns. A split ledger
// year such as "1764/5" keeps only its first part.
func buildMeta(row entry.RawRow, ledgerName string) entry.Meta {
	year := row.Year
	if before, _, found := strings.Cut(year, "/"); found {
		year = before
	}
	return entry.Meta{
		Ledger:    ledgerName,
		Reel:      row.Reel,
		FolioPage: row.FolioPage,
		Year:      year,
		Owner:     row.Owner,
		Store:     row.Store,
		EntryID:   row.EntryID,
		Comments:  row.Comments,
	}
}

// buildRefs splits the "//"-separated folio and ledger reference columns,
// dash placeholders removed
func buildRefs(folioCell, ledgerCell string) ([]string, []string) {
	split := func(s string) []string {
		return strings.Split(strings.ReplaceAll(s, "-", ""), "//")
	}
	return split(folioCell), split(ledgerCell)
}

// buildEntityList splits a "//"-separated name column and resolves each name
// against the given collection
func (p *Pipeline) buildEntityList(ctx context.Context, cell string, collection catalog.Collection) []entry.EntityReference {
	cell = dashBlank(cell)
	if cell == "" {
		return []entry.EntityReference{}
	}

	names := strings.Split(cell, "//")
	refs := make([]entry.EntityReference, 0, len(names))
	for _, name := range names {
		refs = append(refs, p.res.Resolve(ctx, strings.TrimSpace(name), collection))
	}
	return refs
}

// buildHolder assembles the account-holder record and attaches a resolved
// reference when the assembled name matches the people master list
func (p *Pipeline) buildHolder(ctx context.Context, row entry.RawRow) entry.AccountHolder {
	holder := entry.AccountHolder{
		Prefix:     scrubAlpha(row.Prefix),
		FirstName:  scrubAlpha(row.FirstName),
		LastName:   scrubAlpha(row.LastName),
		Suffix:     scrubAlpha(row.Suffix),
		Profession: scrubAlpha(dashBlank(row.Profession)),
		Location:   scrubAlpha(dashBlank(row.Location)),
		Reference:  scrubAlpha(dashBlank(row.Reference)),
	}

	drCr := strings.TrimSpace(dashBlank(row.DebitOrCredit))
	if drCr == "" {
		drCr = "Dr"
	}
	holder.Debit = strings.EqualFold(drCr, "DR")

	search := strings.TrimSpace(holder.Prefix + " " + holder.FirstName + " " + holder.LastName + " " + holder.Suffix)
	if ref := p.res.Resolve(ctx, search, catalog.People); ref.ID != "" {
		holder.Ref = &ref
	}
	return holder
}
