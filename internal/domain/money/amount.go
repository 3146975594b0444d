// Package money implements pounds/shillings/pence arithmetic for the two
// currency systems tracked in the ledgers (sterling and colony currency).
// 12 pence make a shilling, 20 shillings make a pound. Amounts feed archival
// records, so every operation here is deterministic: same input, same output.
package money

import (
	"errors"
	"fmt"
	"math"
)

// ErrDivisionByZero indicates a unit-cost calculation over a zero quantity
var ErrDivisionByZero = errors.New("unit cost division by zero quantity")

// ParseError indicates a currency token with a non-numeric component where a
// number is mandatory
type ParseError struct {
	Token string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("cannot parse currency token %q", e.Token)
}

// Is implements the errors.Is interface for ParseError
func (e ParseError) Is(target error) bool {
	t, ok := target.(ParseError)
	if !ok {
		return false
	}
	return t.Token == "" || t.Token == e.Token
}

// Amount is a non-decimal monetary value. The normalized form satisfies
// 0 <= Shillings < 20 and 0 <= Pence < 12; intermediate computations may
// transiently violate those bounds and must be passed through Normalize
// before being returned to a caller.
type Amount struct {
	Pounds    int `json:"pounds" bson:"pounds"`
	Shillings int `json:"shilling" bson:"shilling"`
	Pence     int `json:"pence" bson:"pence"`
}

// IsZero reports whether the amount is exactly zero in all three places.
func (a Amount) IsZero() bool {
	return a.Pounds == 0 && a.Shillings == 0 && a.Pence == 0
}

// Normalize carries pence into shillings and shillings into pounds so the
// result satisfies the place-value bounds. Idempotent.
func Normalize(a Amount) Amount {
	shillings := a.Shillings + a.Pence/12
	pence := a.Pence % 12
	pounds := a.Pounds + shillings/20
	shillings = shillings % 20
	return Amount{Pounds: pounds, Shillings: shillings, Pence: pence}
}

// UnitCost divides a total amount by a quantity, carrying each remainder
// down to the next place: leftover pounds become shillings (x20), leftover
// shillings become pence (x12), and fractional pence are dropped.
func UnitCost(total Amount, quantity int) (Amount, error) {
	if quantity <= 0 {
		return Amount{}, ErrDivisionByZero
	}

	unitPounds := total.Pounds / quantity
	leftoverPounds := total.Pounds % quantity

	shillings := leftoverPounds*20 + total.Shillings
	unitShillings := shillings / quantity
	leftoverShillings := shillings % quantity

	unitPence := (leftoverShillings*12 + total.Pence) / quantity

	return Amount{Pounds: unitPounds, Shillings: unitShillings, Pence: unitPence}, nil
}

// ScaledTotal multiplies a per-100-units rate by a raw quantity. Pounds are
// scaled first, then shillings and pence, with each overflow carried upward
// and any fractional remainder pushed down a place; partial pence are
// dropped. Used for tobacco lot pricing, where rates are quoted per 100 lbs.
func ScaledTotal(rate Amount, quantity float64) Amount {
	scale := quantity / 100

	pounds := float64(rate.Pounds)*scale + math.Floor(float64(rate.Shillings)*scale/20)
	shillings := math.Mod(float64(rate.Shillings)*scale, 20) + math.Floor(float64(rate.Pence)*scale/12)
	pence := math.Mod(float64(rate.Pence)*scale, 12)

	// Push the fractional part of each place down to the next one, e.g.
	// 2.5 pounds is 2 pounds 10 shillings, 10.5 shillings is 10s 6d.
	shillings += math.Floor(math.Mod(pounds, 1) * 20)
	pounds = math.Floor(pounds)
	pence = math.Floor(pence) + math.Floor(math.Mod(shillings, 1)*12)
	shillings = math.Floor(shillings) + math.Floor(pence/12)
	pence = math.Mod(pence, 12)
	pounds += math.Floor(shillings / 20)
	shillings = math.Mod(shillings, 20)

	return Amount{Pounds: int(pounds), Shillings: int(shillings), Pence: int(pence)}
}
