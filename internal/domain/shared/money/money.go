package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidCurrency  = errors.New("money: invalid currency code")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
	ErrParse            = errors.New("money: unparseable amount")
	ErrInvalidRatio     = errors.New("money: ratio denominator must be positive")
)

// minorUnits is the number of minor units (kobo, cents) per major unit.
const minorUnits = 100

// Money keeps amounts in integer minor units to avoid floating point drift.
// Totals that feed settlement gating are compared with exact integer
// arithmetic; there is no epsilon anywhere.
type Money struct {
	Amount   int64
	Currency string
}

// New constructs a Money value validating minimal invariants.
func New(amount int64, currency string) (Money, error) {
	if len(currency) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	currency = strings.ToUpper(currency)
	return Money{Amount: amount, Currency: currency}, nil
}

// Must creates Money and panics if validation fails; useful in tests and fixtures.
func Must(amount int64, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) Money {
	return Money{Amount: 0, Currency: strings.ToUpper(currency)}
}

// Parse reads a staff-entered decimal amount ("50,000.00") into minor units.
// Grouping separators and whitespace are stripped, at most two fractional
// digits are accepted and extras are truncated. Anything else fails with
// ErrParse instead of producing a garbage amount.
func Parse(raw, currency string) (Money, error) {
	if len(currency) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		case r == ',', r == ' ', r == '_':
			return -1
		default:
			return 'x' // poison: any other rune makes the parse fail below
		}
	}, strings.TrimSpace(raw))
	if cleaned == "" || strings.ContainsRune(cleaned, 'x') {
		return Money{}, fmt.Errorf("%w: %q", ErrParse, raw)
	}

	negative := strings.HasPrefix(cleaned, "-")
	cleaned = strings.TrimPrefix(cleaned, "-")
	if cleaned == "" || strings.Contains(cleaned, "-") {
		return Money{}, fmt.Errorf("%w: %q", ErrParse, raw)
	}

	whole, frac, hasFrac := strings.Cut(cleaned, ".")
	if strings.Contains(frac, ".") {
		return Money{}, fmt.Errorf("%w: %q", ErrParse, raw)
	}
	if whole == "" {
		whole = "0"
	}
	major, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrParse, raw)
	}

	var minor int64
	if hasFrac {
		if len(frac) > 2 {
			frac = frac[:2] // clamp to two decimal places
		}
		for len(frac) < 2 {
			frac += "0"
		}
		minor, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return Money{}, fmt.Errorf("%w: %q", ErrParse, raw)
		}
	}

	amount := major*minorUnits + minor
	if negative {
		amount = -amount
	}
	return New(amount, currency)
}

// Format renders the amount with exactly two decimal places.
func (m Money) Format() string {
	amount := m.Amount
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/minorUnits, amount%minorUnits)
}

func (m Money) String() string {
	return m.Format() + " " + m.Currency
}

// Add adds two money values ensuring currencies match.
func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Sub subtracts other from the receiver.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

// Multiply multiplies the amount by the provided integer factor.
func (m Money) Multiply(times int64) Money {
	return Money{Amount: m.Amount * times, Currency: m.Currency}
}

// MulRatio multiplies by num/den rounding half-up. The denominator must be
// positive.
func (m Money) MulRatio(num, den int64) (Money, error) {
	if den <= 0 {
		return Money{}, ErrInvalidRatio
	}
	return Money{Amount: divRoundHalfUp(m.Amount*num, den), Currency: m.Currency}, nil
}

// DivRound divides the amount by a positive divisor rounding half-up; used
// for per-night proration of a committed total.
func (m Money) DivRound(by int64) (Money, error) {
	if by <= 0 {
		return Money{}, ErrInvalidRatio
	}
	return Money{Amount: divRoundHalfUp(m.Amount, by), Currency: m.Currency}, nil
}

// ClampFloor returns max(0, m).
func (m Money) ClampFloor() Money {
	if m.Amount < 0 {
		return Money{Amount: 0, Currency: m.Currency}
	}
	return m
}

// IsZero returns true if the amount equals zero.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

// IsPositive returns true if the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.Amount > 0
}

// IsNegative returns true if the amount is strictly less than zero.
func (m Money) IsNegative() bool {
	return m.Amount < 0
}

// SameCurrency reports whether both values carry the same non-empty currency.
func (m Money) SameCurrency(other Money) bool {
	return m.ensureSameCurrency(other) == nil
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.Currency == "" || other.Currency == "" {
		return ErrInvalidCurrency
	}
	if m.Currency != other.Currency {
		return ErrCurrencyMismatch
	}
	return nil
}

// divRoundHalfUp divides n by d (d > 0) rounding halves away from zero.
func divRoundHalfUp(n, d int64) int64 {
	q := n / d
	r := n % d
	if r < 0 {
		if -2*r >= d {
			return q - 1
		}
		return q
	}
	if 2*r >= d {
		return q + 1
	}
	return q
}
