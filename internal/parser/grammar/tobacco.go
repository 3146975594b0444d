package grammar

import (
	"context"
	"strconv"
	"strings"

	"github.com/colonial-ledger-parser/internal/domain/entry"
	"github.com/colonial-ledger-parser/internal/domain/money"
)

// ParseTobacco parses a tobacco-trade settlement entry. Clauses carry either
// a "[MONEY]"-tagged settlement description, a mark-and-notes block, an "OFF"
// shaved-weight adjustment, or plain narrative. The settlement description is
// priced against the colony's local currency when the row names a colony,
// sterling otherwise.
func (p *Parser) ParseTobacco(ctx context.Context, entryText, colony string, sterling, currency money.Amount) (*entry.TobaccoTransaction, error) {
	res := &entry.TobaccoTransaction{
		Marks:      []entry.MarkReference{},
		Notes:      []entry.WeightNote{},
		MoneyLines: []entry.MoneyLine{},
	}

	var narrative strings.Builder

	for _, clause := range clauses(entryText) {
		upper := strings.ToUpper(clause)

		switch {
		case strings.Contains(upper, "[MONEY]"):
			_, desc, _ := strings.Cut(strings.ToUpper(strings.TrimSpace(clause)), "[MONEY]")
			base := sterling
			if stripToLetters(colony) != "" {
				base = currency
			}
			lines, err := p.parseMoneyLines(strings.TrimSpace(desc), colony, base)
			if err != nil {
				return nil, err
			}
			res.MoneyLines = append(res.MoneyLines, lines...)

		case strings.Contains(clause, "[TM") || strings.Contains(clause, "{"):
			if strings.Contains(clause, "TM") {
				markPart, notePart, _ := strings.Cut(clause, "]")
				_, markName, _ := strings.Cut(markPart, ":")
				res.Marks = append(res.Marks, p.res.ResolveMark(ctx, strings.TrimSpace(markName)))

				noteGroups := strings.Split(strings.TrimSpace(notePart), "{")
				for _, group := range noteGroups[1:] {
					res.Notes = append(res.Notes, parseWeightNote(group))
				}
			} else {
				noteGroups := strings.Split(clause, "{")
				for _, group := range noteGroups[1:] {
					res.Notes = append(res.Notes, parseWeightNote(group))
				}
			}

		case strings.Contains(upper, "OFF"):
			digits := stripToDigits(clause)
			if digits != "" {
				n, err := strconv.Atoi(digits)
				if err != nil {
					return nil, ParseError{Fragment: clause, Reason: "shaved weight is not numeric"}
				}
				res.TobaccoShavedOff += n
			}

		default:
			narrative.WriteString(stripToNarrative(clause))
		}
	}

	res.EntryText = strings.TrimSpace(narrative.String())
	return res, nil
}

// parseWeightNote reads one "{"-delimited tobacco note: non-digit characters
// become whitespace and the remaining integers fill noteNum, totalWeight,
// barrelWeight and tobaccoWeight in order, missing positions defaulting to 0.
func parseWeightNote(group string) entry.WeightNote {
	var scrubbed strings.Builder
	for _, r := range group {
		if r >= '0' && r <= '9' {
			scrubbed.WriteRune(r)
		} else {
			scrubbed.WriteRune(' ')
		}
	}

	nums := [4]int{}
	for i, field := range strings.Fields(scrubbed.String()) {
		if i >= len(nums) {
			break
		}
		nums[i], _ = strconv.Atoi(field)
	}
	return entry.WeightNote{
		NoteNum:       nums[0],
		TotalWeight:   nums[1],
		BarrelWeight:  nums[2],
		TobaccoWeight: nums[3],
	}
}

// parseMoneyLines parses the settlement description after a "[MONEY]" tag.
// The description is one or more "{"-delimited lines, each classified by
// keyword into a cask sale, an explicit-rate sale, or a bare-quantity sale
// priced from the row's own currency columns. The description arrives
// upper-cased.
func (p *Parser) parseMoneyLines(desc, colony string, base money.Amount) ([]entry.MoneyLine, error) {
	colonyName := titleCase(strings.TrimSpace(colony))

	var lines []string
	if strings.Contains(desc, "{") {
		for _, part := range strings.Split(strings.TrimSpace(desc), "{") {
			if part != " " {
				lines = append(lines, part)
			}
		}
		if len(lines) > 0 && lines[0] == "" {
			lines = lines[1:]
		}
	} else {
		lines = []string{desc}
	}

	res := make([]entry.MoneyLine, 0, len(lines))

	for _, line := range lines {
		ml := entry.MoneyLine{}
		working := line

		if strings.Contains(line, "CASK") {
			ml.CasksInTransaction = 1
		}

		switch {
		case strings.Contains(line, "CURRENCY"):
			ml.MoneyType = "Currency"
			working = strings.TrimSpace(strings.Replace(working, "[CURRENCY]", "", 1))
		case strings.Contains(line, "STERLING"):
			ml.MoneyType = "Sterling"
			working = strings.TrimSpace(strings.Replace(working, "[STERLING]", "", 1))
		case working != "" && strings.Contains(working, "]"):
			_, rest, _ := strings.Cut(working, "[")
			name, _, _ := strings.Cut(rest, "]")
			working = strings.TrimSpace(strings.Replace(working, "["+name+"]", "", 1))
			ml.MoneyType = titleCase(name)
		default:
			if colonyName != "" {
				ml.MoneyType = colonyName
			} else {
				ml.MoneyType = " "
			}
		}

		if strings.Contains(working, "&") {
			for _, segment := range strings.Split(working, "&") {
				if err := p.parseMoneySegment(segment, base, &ml); err != nil {
					return nil, err
				}
			}
		} else {
			if err := p.parseMoneySegment(working, base, &ml); err != nil {
				return nil, err
			}
		}

		res = append(res, ml)
	}
	return res, nil
}

// parseMoneySegment classifies one settlement segment and fills the matching
// fields of the money line. A segment is a cask-for-price clause, an
// explicit-rate clause ("<qty> AT <rate>" or "<qty>,<rate>"), or a bare
// quantity priced from the base amount.
func (p *Parser) parseMoneySegment(segment string, base money.Amount, ml *entry.MoneyLine) error {
	switch {
	case strings.Contains(segment, "AT"):
		qtyPart, ratePart, _ := strings.Cut(segment, "AT")
		quantity, err := parseQuantity(qtyPart)
		if err != nil {
			return err
		}
		// the description was upper-cased; the pence marker is lower
		rate, err := money.Parse(strings.ToLower(strings.TrimSpace(ratePart)))
		if err != nil {
			return err
		}
		ml.TobaccoAmount = quantity
		ml.RateForTobacco = rate
		if strings.TrimSpace(ratePart) != "" {
			ml.TobaccoSoldFor = money.ScaledTotal(rate, quantity)
		}

	case strings.Contains(segment, ","):
		qtyPart, ratePart, _ := strings.Cut(segment, ",")
		quantity, err := parseQuantity(qtyPart)
		if err != nil {
			return err
		}
		rate, err := money.Parse(strings.ToLower(strings.TrimSpace(ratePart)))
		if err != nil {
			return err
		}
		ml.TobaccoAmount = quantity
		ml.RateForTobacco = rate
		ml.TobaccoSoldFor = money.ScaledTotal(rate, quantity)

	case !strings.Contains(segment, "CASK"):
		quantity := 1
		if digits := stripToDigits(segment); digits != "" {
			n, err := strconv.Atoi(digits)
			if err != nil {
				return ParseError{Fragment: segment, Reason: "tobacco quantity is not numeric"}
			}
			quantity = n
		}
		rate, err := money.UnitCost(base, quantity)
		if err != nil {
			return err
		}
		ml.TobaccoAmount = float64(quantity)
		ml.RateForTobacco = rate
		ml.TobaccoSoldFor = base
	}

	if strings.Contains(segment, "CASK") && strings.Contains(segment, "FOR") {
		caskPart, _, _ := strings.Cut(segment, "CASK")
		costPart, countPart, _ := strings.Cut(strings.TrimSpace(caskPart), "FOR")
		cost, err := money.Parse(strings.ToLower(strings.TrimSpace(costPart)))
		if err != nil {
			return err
		}
		ml.CasksSoldForEach = cost
		if strings.TrimSpace(countPart) != "" {
			count, err := strconv.Atoi(strings.TrimSpace(countPart))
			if err != nil {
				return ParseError{Fragment: segment, Reason: "cask count is not numeric"}
			}
			ml.CasksInTransaction = count
		}
	}
	return nil
}

func titleCase(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func stripToDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func stripToLetters(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripToNarrative removes every character that is not a letter, digit or
// whitespace from a narrative clause.
func stripToNarrative(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == ' ' || r == '\t' || r == '\n' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
