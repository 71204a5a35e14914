package kernel

import (
	"fmt"

	"orderbot/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes amounts shown to customers.
const CurrencySymbol = "₹"

// moneyScale is the number of fractional digits kept for every amount.
const moneyScale = 2

// Money is an exact, non-negative currency amount with two fractional digits.
// Arithmetic never goes through floating point, so totals computed from the
// same items and fee are always identical.
//
// The zero value is a valid amount of 0.00.
//
// Example:
//
//	price := kernel.MoneyFromInt(150)
//	fee := kernel.MoneyFromInt(50)
//	total := price.Mul(2).Add(fee) // 350.00
type Money struct {
	amount decimal.Decimal
}

// NewMoney creates Money from a decimal value. Negative amounts are rejected
// and the value is rounded to two fractional digits.
func NewMoney(amount decimal.Decimal) (Money, error) {
	if amount.IsNegative() {
		return Money{}, errs.NewValueIsOutOfRangeError("amount", amount.String(), "0", "unbounded")
	}
	return Money{amount: amount.Round(moneyScale)}, nil
}

// MoneyFromInt creates Money from whole currency units. Negative input is clamped to zero.
func MoneyFromInt(units int64) Money {
	if units < 0 {
		return Money{}
	}
	return Money{amount: decimal.NewFromInt(units)}
}

// ParseMoney parses a decimal string such as "390.00".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount", err)
	}
	return NewMoney(d)
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Mul returns m multiplied by a non-negative quantity.
func (m Money) Mul(quantity int) Money {
	if quantity <= 0 {
		return Money{}
	}
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(quantity)))}
}

// IsZero reports whether the amount is 0.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// Equal compares two amounts by value, ignoring representation.
func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

// Decimal returns the underlying value for persistence adapters.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// String returns the amount with exactly two fractional digits, e.g. "390.00".
func (m Money) String() string {
	return m.amount.StringFixed(moneyScale)
}

// Display returns the customer-facing form, e.g. "₹390.00".
func (m Money) Display() string {
	return fmt.Sprintf("%s%s", CurrencySymbol, m.String())
}

// Short returns the customer-facing form without trailing zero decimals, e.g. "₹50".
func (m Money) Short() string {
	return CurrencySymbol + m.amount.String()
}
