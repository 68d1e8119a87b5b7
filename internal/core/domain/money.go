package domain

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/split_ledger/internal/apperrors"
)

// MoneyScale is the number of decimal places every Money amount is quantized to.
const MoneyScale int32 = 4

// Money is an exact fixed-scale amount tagged with an ISO-style currency code.
// The zero value is not a valid Money; use NewMoney.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney validates currency (exactly three letters, upper-cased on the way in)
// and re-quantizes amount to MoneyScale places, rounding half away from zero.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	code, err := normalizeCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	return Money{amount: amount.Round(MoneyScale), currency: code}, nil
}

// MustMoney parses amount and panics on error. Intended for tests and constants.
func MustMoney(amount string, currency string) Money {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		panic(err)
	}
	m, err := NewMoney(d, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// ZeroMoney returns a zero amount in currency.
func ZeroMoney(currency string) (Money, error) {
	return NewMoney(decimal.Zero, currency)
}

func normalizeCurrency(currency string) (string, error) {
	if len(currency) != 3 {
		return "", apperrors.New(apperrors.CodeValidation, "currency code %q must be exactly 3 letters", currency)
	}
	for _, r := range currency {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return "", apperrors.New(apperrors.CodeValidation, "currency code %q must be alphabetic", currency)
		}
	}
	return strings.ToUpper(currency), nil
}

// Amount returns the quantized decimal amount.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the upper-case currency code.
func (m Money) Currency() string { return m.currency }

func (m Money) sameCurrency(other Money) error {
	if m.currency != other.currency {
		return apperrors.New(apperrors.CodeValidation, "currency mismatch: %s != %s", m.currency, other.currency)
	}
	return nil
}

// Add returns m + other.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Sub returns m - other.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Cmp compares m and other: -1 if m < other, 0 if equal, +1 if m > other.
func (m Money) Cmp(other Money) (int, error) {
	if err := m.sameCurrency(other); err != nil {
		return 0, err
	}
	return m.amount.Cmp(other.amount), nil
}

// LessThan reports whether m < other.
func (m Money) LessThan(other Money) (bool, error) {
	c, err := m.Cmp(other)
	return c < 0, err
}

// GreaterThan reports whether m > other.
func (m Money) GreaterThan(other Money) (bool, error) {
	c, err := m.Cmp(other)
	return c > 0, err
}

// Equal reports whether both amount and currency match.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) Neg() Money { return Money{amount: m.amount.Neg(), currency: m.currency} }
func (m Money) Abs() Money { return Money{amount: m.amount.Abs(), currency: m.currency} }

// Mul multiplies by factor and re-quantizes the result.
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor).Round(MoneyScale), currency: m.currency}
}

func (m Money) MulInt(factor int64) Money { return m.Mul(decimal.NewFromInt(factor)) }

func (m Money) IsPositive() bool { return m.amount.IsPositive() }
func (m Money) IsNegative() bool { return m.amount.IsNegative() }
func (m Money) IsZero() bool     { return m.amount.IsZero() }

// String renders the fixed-scale amount followed by the currency code.
func (m Money) String() string {
	return m.amount.StringFixed(MoneyScale) + " " + m.currency
}

// Display renders the amount with the currency's symbol and minor units,
// falling back to String for codes unknown to the currency table.
func (m Money) Display() string {
	cur := money.GetCurrency(m.currency)
	if cur == nil {
		return m.String()
	}
	minor := m.amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return cur.Formatter().Format(minor)
}

// SumMoney adds values in currency. An empty list sums to zero.
func SumMoney(currency string, values ...Money) (Money, error) {
	total, err := ZeroMoney(currency)
	if err != nil {
		return Money{}, err
	}
	for _, v := range values {
		if total, err = total.Add(v); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}
