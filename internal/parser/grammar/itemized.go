package grammar

import (
	"context"
	"regexp"
	"strings"

	"github.com/colonial-ledger-parser/internal/domain/entry"
	"github.com/colonial-ledger-parser/internal/domain/money"
)

var perOrderPrefix = regexp.MustCompile(`(?i)^per\s+order\b`)

// ParseItemized parses an itemized multi-good sale entry. Every "//"-clause
// becomes one itemized transaction: the text before the first bracket is the
// priced main item string, bracket groups are item mentions, and the main
// item string's comma field count selects the layout (single field = ignored
// stub, more than six = split sale with two co-located items, otherwise one
// priced item).
func (p *Parser) ParseItemized(ctx context.Context, entryText string) ([]entry.ItemizedTransaction, error) {
	var transactions []entry.ItemizedTransaction

	for _, clause := range clauses(entryText) {
		tx, err := p.parseItemizedClause(ctx, clause)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *tx)
	}
	return transactions, nil
}

func (p *Parser) parseItemizedClause(ctx context.Context, clause string) (*entry.ItemizedTransaction, error) {
	tx := &entry.ItemizedTransaction{
		Items:          []entry.TransactionItem{},
		ItemsMentioned: []entry.ItemMention{},
	}

	working := strings.TrimSpace(clause)
	if loc := perOrderPrefix.FindStringIndex(working); loc != nil {
		tx.PerOrder = true
		working = strings.TrimSpace(working[loc[1]:])
	}

	mainItemString := working
	if strings.Contains(working, "[") {
		groups := strings.Split(working, "[")
		mainItemString = groups[0]
		for _, group := range groups[1:] {
			mentions, err := parseMentions(strings.TrimSpace(strings.ReplaceAll(group, "]", "")), true)
			if err != nil {
				return nil, err
			}
			tx.ItemsMentioned = append(tx.ItemsMentioned, mentions...)
		}
	}

	fields := strings.Split(strings.TrimSpace(mainItemString), ",")

	// a leading % marks a percentage-based charge in any layout
	quantityField := strings.TrimSpace(fields[0])
	if strings.Contains(quantityField, "%") {
		tx.Percentage = true
		quantityField = strings.ReplaceAll(quantityField, "%", "")
	}

	switch {
	case len(fields) == 1:
		// a bare narrative fragment carries no priced items; keep the
		// clause but nothing to price
		return tx, nil

	case len(fields) > 6:
		items, err := p.parseSplitSale(ctx, fields, working, quantityField)
		if err != nil {
			return nil, err
		}
		tx.Items = items

	default:
		item, err := p.parseSingleItem(ctx, fields, working, quantityField)
		if err != nil {
			return nil, err
		}
		tx.Items = []entry.TransactionItem{*item}
	}
	return tx, nil
}

// parseSingleItem handles the 2-6 field layout: the last field is the
// absolute item cost and the one before it the unit cost, either derivable
// from the other when blank.
func (p *Parser) parseSingleItem(ctx context.Context, fields []string, clause, quantityField string) (*entry.TransactionItem, error) {
	if len(fields) < 4 || strings.TrimSpace(fields[3]) == "" {
		return nil, ParseError{Fragment: clause, Reason: "no item name in entry"}
	}

	unitCost, err := money.Parse(strings.TrimSpace(fields[len(fields)-2]))
	if err != nil {
		return nil, err
	}
	itemCost, err := money.Parse(strings.TrimSpace(fields[len(fields)-1]))
	if err != nil {
		return nil, err
	}

	quantity, err := parseQuantity(quantityField)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.TrimSpace(fields[len(fields)-2]) == "":
		// derive the unit cost from the total, defaulting a blank
		// quantity to a single unit
		divisor := int(quantity)
		if quantityField == "" {
			divisor = 1
		}
		unitCost, err = money.UnitCost(itemCost, divisor)
		if err != nil {
			return nil, err
		}
	case strings.TrimSpace(fields[len(fields)-1]) == "":
		// derive the total from the per-100 rate
		itemCost = money.ScaledTotal(unitCost, quantity*100)
	}

	itemName := strings.TrimSpace(fields[3])
	category, subcategory := p.res.Categories(ctx, itemName)

	return &entry.TransactionItem{
		Quantity:    quantity,
		Qualifier:   strings.TrimSpace(fields[1]),
		Variants:    splitVariants(fields[2]),
		Item:        itemName,
		Category:    category,
		Subcategory: subcategory,
		UnitCost:    unitCost,
		ItemCost:    itemCost,
	}, nil
}

// parseSplitSale handles the more-than-six field layout: two co-located
// items share the final monetary token, halved as a nominal per-item cost
// baseline. The halving is a transcription-era convention kept for
// compatibility with existing archival records.
func (p *Parser) parseSplitSale(ctx context.Context, fields []string, clause, quantityField string) ([]entry.TransactionItem, error) {
	if len(fields) < 8 {
		return nil, ParseError{Fragment: clause, Reason: "split sale entry is missing fields"}
	}

	sharedCost, err := money.Parse(strings.TrimSpace(fields[len(fields)-1]))
	if err != nil {
		return nil, err
	}
	halfCost, err := money.UnitCost(sharedCost, 2)
	if err != nil {
		return nil, err
	}

	firstName := strings.TrimSpace(fields[3])
	secondName := strings.TrimSpace(fields[len(fields)-3])
	if firstName == "" || secondName == "" {
		return nil, ParseError{Fragment: clause, Reason: "no item name in entry"}
	}

	firstQuantity, err := parseQuantity(quantityField)
	if err != nil {
		return nil, err
	}
	secondQuantity, err := parseQuantity(strings.ReplaceAll(fields[4], "&", ""))
	if err != nil {
		return nil, err
	}

	firstUnit, err := unitCostForQuantity(halfCost, firstQuantity)
	if err != nil {
		return nil, err
	}
	secondUnit, err := unitCostForQuantity(halfCost, secondQuantity)
	if err != nil {
		return nil, err
	}

	firstCategory, firstSub := p.res.Categories(ctx, firstName)
	secondCategory, secondSub := p.res.Categories(ctx, secondName)

	first := entry.TransactionItem{
		Quantity:    firstQuantity,
		Qualifier:   strings.TrimSpace(fields[1]),
		Variants:    splitVariants(fields[2]),
		Item:        firstName,
		Category:    firstCategory,
		Subcategory: firstSub,
		UnitCost:    firstUnit,
		ItemCost:    halfCost,
	}
	second := entry.TransactionItem{
		Quantity:    secondQuantity,
		Qualifier:   strings.TrimSpace(fields[5]),
		Variants:    splitVariants(fields[6]),
		Item:        strings.TrimSpace(fields[7]),
		Category:    secondCategory,
		Subcategory: secondSub,
		UnitCost:    secondUnit,
		ItemCost:    halfCost,
	}
	return []entry.TransactionItem{first, second}, nil
}

func unitCostForQuantity(total money.Amount, quantity float64) (money.Amount, error) {
	return money.UnitCost(total, int(quantity))
}

func splitVariants(field string) []string {
	parts := strings.Split(strings.TrimSpace(field), "*")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
