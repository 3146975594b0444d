package money

import (
	"strconv"
	"strings"
)

// Parse converts one of the four textual money notations used in the entry
// mini-language into an Amount:
//
//	"8d"        pence only
//	"11/:8"     shillings and pence, colon form
//	"11/8"      shillings and pence, slash form
//	"1..2..3"   pounds, shillings and pence, dotted form
//
// Empty or unrecognized input is a deliberate lenient default and yields a
// zero amount; only a structurally invalid numeric component returns a
// ParseError. The result is always normalized.
func Parse(token string) (Amount, error) {
	raw := token
	token = strings.TrimSpace(token)
	if token == "" {
		return Amount{}, nil
	}

	switch {
	case strings.Contains(token, "d"):
		pence, err := parsePlace(strings.SplitN(token, "d", 2)[0], raw)
		if err != nil {
			return Amount{}, err
		}
		return Normalize(Amount{Pence: pence}), nil

	case strings.Contains(token, "/:"):
		parts := strings.SplitN(token, "/:", 2)
		shillings, err := parsePlace(parts[0], raw)
		if err != nil {
			return Amount{}, err
		}
		pence, err := parsePlace(parts[1], raw)
		if err != nil {
			return Amount{}, err
		}
		return Normalize(Amount{Shillings: shillings, Pence: pence}), nil

	case strings.Contains(token, "/"):
		parts := strings.SplitN(token, "/", 2)
		shillings, err := parsePlace(parts[0], raw)
		if err != nil {
			return Amount{}, err
		}
		pence, err := parsePlace(parts[1], raw)
		if err != nil {
			return Amount{}, err
		}
		return Normalize(Amount{Shillings: shillings, Pence: pence}), nil

	case strings.Contains(token, ".."):
		parts := strings.Split(token, "..")
		if len(parts) < 3 {
			return Amount{}, ParseError{Token: raw}
		}
		pounds, err := parsePlace(parts[0], raw)
		if err != nil {
			return Amount{}, err
		}
		shillings, err := parsePlace(parts[1], raw)
		if err != nil {
			return Amount{}, err
		}
		pence, err := parsePlace(parts[2], raw)
		if err != nil {
			return Amount{}, err
		}
		return Normalize(Amount{Pounds: pounds, Shillings: shillings, Pence: pence}), nil
	}

	return Amount{}, nil
}

// parsePlace reads a single place value. A blank component counts as zero;
// anything else must be an integer.
func parsePlace(s, token string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, ParseError{Token: token}
	}
	return n, nil
}
