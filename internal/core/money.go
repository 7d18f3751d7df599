// Package core holds the pure domain of the scheduling and financial
// aggregation engine: money, clients, appointments, charges, recurrence
// expansion, conflict detection and revenue rollups. Nothing in this
// package touches storage, the network or the wall clock.
package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is a non-negative currency amount stored as integer cents.
// Calculations stay in cents to avoid floating-point drift.
type Money struct {
	Cents int64
}

// Validate rejects negative amounts. Zero is a valid Money value (an
// empty revenue bucket); charges additionally require a positive amount
// via Charge.Validate.
func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// DiscountPercent returns the amount reduced by pct percent, rounding
// half-up to the nearest cent. pct must already be range-checked by the
// caller (0 < pct <= 100).
func (m Money) DiscountPercent(pct float64) Money {
	kept := float64(m.Cents) * (100 - pct) / 100
	return Money{Cents: int64(math.Floor(kept + 0.5))}
}

// Dollars returns the amount as a float64 for display only.
func (m Money) Dollars() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) String() string {
	return fmt.Sprintf("$%d.%02d", m.Cents/100, m.Cents%100)
}

// ParseDecimalToCents converts a decimal string to positive cents.
//
// Both dot (12.34) and comma (12,34) separators are accepted; the third
// decimal digit is rounded half-up. Signs, non-digits, zero and negative
// results are rejected with ErrInvalidAmount.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}
