// Package xlsx turns an uploaded transcription spreadsheet into raw ledger
// rows. The archive team's workbooks use a fixed header vocabulary in the
// first sheet; columns the reader does not know are ignored.
package xlsx

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/colonial-ledger-parser/internal/domain/entry"
)

// Common errors
var (
	ErrNoSheets  = errors.New("workbook has no sheets")
	ErrNoHeader  = errors.New("worksheet has no header row")
	ErrNoDataRow = errors.New("worksheet has no data rows")
)

// headerFields maps the transcription workbook's column headers onto RawRow
// fields. The header names are the archive team's, not ours.
var headerFields = map[string]func(*entry.RawRow, string){
	"EntryID":          func(r *entry.RawRow, v string) { r.EntryID = v },
	"Reel":             func(r *entry.RawRow, v string) { r.Reel = v },
	"FolioPage":        func(r *entry.RawRow, v string) { r.FolioPage = v },
	"Year":             func(r *entry.RawRow, v string) { r.Year = v },
	"Year_1":           func(r *entry.RawRow, v string) { r.DateYear = v },
	"Month":            func(r *entry.RawRow, v string) { r.Month = v },
	"Day":              func(r *entry.RawRow, v string) { r.Day = v },
	"Owner":            func(r *entry.RawRow, v string) { r.Owner = v },
	"Store":            func(r *entry.RawRow, v string) { r.Store = v },
	"Final":            func(r *entry.RawRow, v string) { r.Comments = v },
	"Entry":            func(r *entry.RawRow, v string) { r.EntryText = v },
	"EntryType":        func(r *entry.RawRow, v string) { r.EntryType = v },
	"SL":               func(r *entry.RawRow, v string) { r.SterlingPounds = v },
	"SS":               func(r *entry.RawRow, v string) { r.SterlingShillings = v },
	"SD":               func(r *entry.RawRow, v string) { r.SterlingPence = v },
	"CL":               func(r *entry.RawRow, v string) { r.CurrencyPounds = v },
	"CS":               func(r *entry.RawRow, v string) { r.CurrencyShillings = v },
	"CD":               func(r *entry.RawRow, v string) { r.CurrencyPence = v },
	"Colony":           func(r *entry.RawRow, v string) { r.Colony = v },
	"Commodity":        func(r *entry.RawRow, v string) { r.Commodity = v },
	"Quantity":         func(r *entry.RawRow, v string) { r.Quantity = v },
	"Prefix":           func(r *entry.RawRow, v string) { r.Prefix = v },
	"AccountFirstName": func(r *entry.RawRow, v string) { r.FirstName = v },
	"AccountLastName":  func(r *entry.RawRow, v string) { r.LastName = v },
	"Suffix":           func(r *entry.RawRow, v string) { r.Suffix = v },
	"Profession":       func(r *entry.RawRow, v string) { r.Profession = v },
	"Location":         func(r *entry.RawRow, v string) { r.Location = v },
	"Reference":        func(r *entry.RawRow, v string) { r.Reference = v },
	"DrCr":             func(r *entry.RawRow, v string) { r.DebitOrCredit = v },
	"People":           func(r *entry.RawRow, v string) { r.People = v },
	"Places":           func(r *entry.RawRow, v string) { r.Places = v },
	"FolioReference":   func(r *entry.RawRow, v string) { r.FolioReference = v },
	"Ledger":           func(r *entry.RawRow, v string) { r.LedgerReference = v },
}

// ReadRows reads the first sheet of an uploaded workbook into raw ledger
// rows. The first row must be the header row; fully empty rows are skipped.
func ReadRows(src io.Reader) ([]entry.RawRow, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrNoSheets
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}

	setters := make([]func(*entry.RawRow, string), len(rows[0]))
	known := 0
	for i, header := range rows[0] {
		if set, ok := headerFields[strings.TrimSpace(header)]; ok {
			setters[i] = set
			known++
		}
	}
	if known == 0 {
		return nil, ErrNoHeader
	}

	out := make([]entry.RawRow, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		if isEmptyRow(cells) {
			continue
		}
		var row entry.RawRow
		for i, cell := range cells {
			if i < len(setters) && setters[i] != nil {
				setters[i](&row, cell)
			}
		}
		out = append(out, row)
	}
	if len(out) == 0 {
		return nil, ErrNoDataRow
	}
	return out, nil
}

func isEmptyRow(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
