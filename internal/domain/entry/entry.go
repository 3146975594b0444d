// Package entry holds the normalized record produced from one ledger row and
// the raw textual row it is parsed from.
package entry

import (
	"time"

	"github.com/colonial-ledger-parser/internal/domain/money"
	"github.com/google/uuid"
)

// EntityReference is a weak reference to a person, place or category: a name
// found in the text plus, when the lookup found a match, its identifier.
// An absent ID is a normal terminal state, not an error.
type EntityReference struct {
	Name string `json:"name" bson:"name"`
	ID   string `json:"id,omitempty" bson:"id,omitempty"`
}

// MarkReference is a weak reference to a tobacco mark by its numeric id
type MarkReference struct {
	MarkName string `json:"mark_name" bson:"mark_name"`
	MarkID   string `json:"mark_id,omitempty" bson:"mark_id,omitempty"`
}

// ItemMention is a bracketed (quantity, qualifier, item) triple mentioned in
// passing inside an entry, as opposed to a priced line item.
type ItemMention struct {
	Quantity  float64 `json:"quantity" bson:"quantity"`
	Qualifier string  `json:"qualifier" bson:"qualifier"`
	Item      string  `json:"item" bson:"item"`
}

// RegularTransaction is the parse of a generic commodity sale entry
type RegularTransaction struct {
	EntryText      string          `json:"entry" bson:"entry"`
	TobaccoMarks   []MarkReference `json:"tobacco_marks" bson:"tobacco_marks"`
	ItemsMentioned []ItemMention   `json:"items_mentioned" bson:"items_mentioned"`
}

// TransactionItem is one priced good or service in an itemized sale
type TransactionItem struct {
	Quantity    float64      `json:"quantity" bson:"quantity"`
	Qualifier   string       `json:"qualifier" bson:"qualifier"`
	Variants    []string     `json:"variants" bson:"variants"`
	Item        string       `json:"item" bson:"item"`
	Category    string       `json:"category" bson:"category"`
	Subcategory string       `json:"subcategory" bson:"subcategory"`
	UnitCost    money.Amount `json:"unit_cost" bson:"unit_cost"`
	ItemCost    money.Amount `json:"item_cost" bson:"item_cost"`
}

// ItemizedTransaction is the parse of one clause of an itemized sale entry
type ItemizedTransaction struct {
	PerOrder       bool              `json:"per_order" bson:"per_order"`
	Percentage     bool              `json:"percentage" bson:"percentage"`
	Items          []TransactionItem `json:"items_or_services" bson:"items_or_services"`
	ItemsMentioned []ItemMention     `json:"items_mentioned" bson:"items_mentioned"`
}

// WeightNote records one tobacco note: note number, gross weight, barrel
// (tare) weight and net tobacco weight, in pounds.
type WeightNote struct {
	NoteNum       int `json:"note_num" bson:"note_num"`
	TotalWeight   int `json:"total_weight" bson:"total_weight"`
	BarrelWeight  int `json:"barrel_weight" bson:"barrel_weight"`
	TobaccoWeight int `json:"tobacco_weight" bson:"tobacco_weight"`
}

// MoneyLine is one settlement line of a tobacco transaction
type MoneyLine struct {
	MoneyType          string       `json:"money_type" bson:"money_type"`
	TobaccoAmount      float64      `json:"tobacco_amount" bson:"tobacco_amount"`
	RateForTobacco     money.Amount `json:"rate_for_tobacco" bson:"rate_for_tobacco"`
	CasksInTransaction int          `json:"casks_in_transaction" bson:"casks_in_transaction"`
	TobaccoSoldFor     money.Amount `json:"tobacco_sold_for" bson:"tobacco_sold_for"`
	CasksSoldForEach   money.Amount `json:"casks_sold_for_each" bson:"casks_sold_for_each"`
}

// TobaccoTransaction is the parse of a tobacco-trade settlement entry
type TobaccoTransaction struct {
	EntryText        string          `json:"entry" bson:"entry"`
	Marks            []MarkReference `json:"marks" bson:"marks"`
	Notes            []WeightNote    `json:"notes" bson:"notes"`
	MoneyLines       []MoneyLine     `json:"money" bson:"money"`
	TobaccoShavedOff int             `json:"tobacco_shaved" bson:"tobacco_shaved"`
}

// Transaction is a closed tagged union: exactly one variant is set, chosen
// once by the row's type discriminator and never reclassified.
type Transaction struct {
	Regular  *RegularTransaction   `json:"regular_entry,omitempty" bson:"regular_entry,omitempty"`
	Itemized []ItemizedTransaction `json:"item_entries,omitempty" bson:"item_entries,omitempty"`
	Tobacco  *TobaccoTransaction   `json:"tobacco_entry,omitempty" bson:"tobacco_entry,omitempty"`
}

// IsEmpty reports whether no variant was attached (blank entry text or a
// failed grammar step).
func (t Transaction) IsEmpty() bool {
	return t.Regular == nil && t.Itemized == nil && t.Tobacco == nil
}

// AccountHolder is the account holder named on the row
type AccountHolder struct {
	Prefix     string           `json:"prefix" bson:"prefix"`
	FirstName  string           `json:"first_name" bson:"first_name"`
	LastName   string           `json:"last_name" bson:"last_name"`
	Suffix     string           `json:"suffix" bson:"suffix"`
	Profession string           `json:"profession" bson:"profession"`
	Location   string           `json:"location" bson:"location"`
	Reference  string           `json:"reference" bson:"reference"`
	Debit      bool             `json:"debit" bson:"debit"`
	Ref        *EntityReference `json:"holder_ref,omitempty" bson:"holder_ref,omitempty"`
}

// Meta carries the archival provenance columns of the row
type Meta struct {
	Ledger    string `json:"ledger" bson:"ledger"`
	Reel      string `json:"reel" bson:"reel"`
	FolioPage string `json:"folio_page" bson:"folio_page"`
	Year      string `json:"year" bson:"year"`
	Owner     string `json:"owner" bson:"owner"`
	Store     string `json:"store" bson:"store"`
	EntryID   string `json:"entry_id" bson:"entry_id"`
	Comments  string `json:"comments" bson:"comments"`
}

// DateInfo is the row's transaction date. ComposedDate is only set when the
// year column was present; day and month default to 1 when blank.
type DateInfo struct {
	Day          int        `json:"day" bson:"day"`
	Month        int        `json:"month" bson:"month"`
	Year         int        `json:"year" bson:"year"`
	ComposedDate *time.Time `json:"full_date,omitempty" bson:"full_date,omitempty"`
}

// Money carries the row's monetary columns in both currency systems. The two
// amounts are independent and never mixed without explicit conversion.
type Money struct {
	Colony    string       `json:"colony" bson:"colony"`
	Commodity string       `json:"commodity" bson:"commodity"`
	Quantity  string       `json:"quantity" bson:"quantity"`
	Sterling  money.Amount `json:"sterling" bson:"sterling"`
	Currency  money.Amount `json:"currency" bson:"currency"`
}

// Status records per-row success. A failed row stays in the batch output
// with its error message; it never aborts the batch.
type Status struct {
	Succeeded    bool   `json:"succeeded" bson:"succeeded"`
	ErrorMessage string `json:"error_message,omitempty" bson:"error_message,omitempty"`
}

// ParsedLedgerEntry is the fully assembled output for one row
type ParsedLedgerEntry struct {
	ID            uuid.UUID         `json:"id" bson:"id"`
	BatchID       uuid.UUID         `json:"batch_id" bson:"batch_id"`
	RowIndex      int               `json:"row_index" bson:"row_index"`
	EntryText     string            `json:"entry" bson:"entry"`
	Transaction   Transaction       `json:"transaction" bson:"transaction"`
	AccountHolder AccountHolder     `json:"account_holder" bson:"account_holder"`
	People        []EntityReference `json:"people" bson:"people"`
	Places        []EntityReference `json:"places" bson:"places"`
	Meta          Meta              `json:"meta" bson:"meta"`
	DateInfo      DateInfo          `json:"date_info" bson:"date_info"`
	Money         Money             `json:"money" bson:"money"`
	FolioRefs     []string          `json:"folio_refs" bson:"folio_refs"`
	LedgerRefs    []string          `json:"ledger_refs" bson:"ledger_refs"`
	Status        Status            `json:"status" bson:"status"`
	CreatedAt     time.Time         `json:"created_at" bson:"created_at"`
}
