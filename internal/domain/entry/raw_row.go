package entry

// RawRow is one transcribed spreadsheet row as it arrives from the archive
// team: every field is the raw cell text. It is immutable input to the row
// pipeline and is never mutated during parsing.
type RawRow struct {
	EntryID   string `json:"entry_id"`
	Reel      string `json:"reel"`
	FolioPage string `json:"folio_page"`
	Year      string `json:"year"`      // ledger year column, may read "1764/5"
	DateYear  string `json:"date_year"` // year component of the transaction date
	Month     string `json:"month"`
	Day       string `json:"day"`
	Owner     string `json:"owner"`
	Store     string `json:"store"`
	Comments  string `json:"comments"`

	EntryText string `json:"entry"`
	EntryType string `json:"entry_type"` // 0 regular, 1 tobacco, 2 itemized

	SterlingPounds    string `json:"sterling_pounds"`
	SterlingShillings string `json:"sterling_shillings"`
	SterlingPence     string `json:"sterling_pence"`
	CurrencyPounds    string `json:"currency_pounds"`
	CurrencyShillings string `json:"currency_shillings"`
	CurrencyPence     string `json:"currency_pence"`

	Colony    string `json:"colony"`
	Commodity string `json:"commodity"`
	Quantity  string `json:"quantity"`

	Prefix        string `json:"prefix"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Suffix        string `json:"suffix"`
	Profession    string `json:"profession"`
	Location      string `json:"location"`
	Reference     string `json:"reference"`
	DebitOrCredit string `json:"dr_cr"`

	People          string `json:"people"` // "//"-separated name list
	Places          string `json:"places"` // "//"-separated place list
	FolioReference  string `json:"folio_reference"`
	LedgerReference string `json:"ledger_reference"`
}
