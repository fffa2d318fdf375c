// Package money provides the immutable value objects used for all price
// arithmetic: Money (a decimal amount bound to a currency) and Quantity
// (a non-negative item count).
package money

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the storefront currency. Every catalog price is stored
// in euros; it doubles as the currency of an empty cart's total.
const DefaultCurrency = "EUR"

// ValidationError reports an invalid value-object construction.
// The message is user-facing and therefore written in French.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// CurrencyMismatchError is returned when arithmetic is attempted between
// two Money values of different currencies.
type CurrencyMismatchError struct {
	Left  string
	Right string
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("les devises ne correspondent pas: %s et %s", e.Left, e.Right)
}

// Money is an immutable amount of a single currency. The amount is never
// negative. The zero value is invalid; construct via New or Zero.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// New constructs a Money value. It fails when the amount is negative or the
// currency is empty.
func New(amount decimal.Decimal, currency string) (Money, error) {
	if amount.IsNegative() {
		return Money{}, &ValidationError{Msg: "le montant ne peut pas être négatif"}
	}
	if currency == "" {
		return Money{}, &ValidationError{Msg: "la devise est requise"}
	}
	return Money{amount: amount, currency: currency}, nil
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the ISO currency code.
func (m Money) Currency() string {
	return m.currency
}

// Add returns the sum of m and other. Both operands must share a currency.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, &CurrencyMismatchError{Left: m.currency, Right: other.currency}
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Sub returns m minus other. It fails on currency mismatch and when the
// result would be negative, since Money never holds a negative amount.
func (m Money) Sub(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, &CurrencyMismatchError{Left: m.currency, Right: other.currency}
	}
	res := m.amount.Sub(other.amount)
	if res.IsNegative() {
		return Money{}, &ValidationError{Msg: "le montant ne peut pas être négatif"}
	}
	return Money{amount: res, currency: m.currency}, nil
}

// MulQuantity returns m scaled by a quantity.
func (m Money) MulQuantity(q Quantity) Money {
	return Money{
		amount:   m.amount.Mul(decimal.NewFromInt(int64(q))),
		currency: m.currency,
	}
}

// Cents returns the amount in minor units (cents), rounded to the nearest
// cent. Used when talking to the payment processor.
func (m Money) Cents() int64 {
	return m.amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// Equal reports value equality: same currency, same amount.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}

// moneyDoc is the persisted JSON shape of a Money value.
type moneyDoc struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyDoc{Amount: m.amount, Currency: m.currency})
}

// UnmarshalJSON implements json.Unmarshaler. The decoded value is validated
// with the same rules as New.
func (m *Money) UnmarshalJSON(data []byte) error {
	var doc moneyDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	parsed, err := New(doc.Amount, doc.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
