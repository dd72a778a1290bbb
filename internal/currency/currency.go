// Package currency converts supported currency amounts into the common
// reference unit (USD-equivalent) used for cross-currency risk comparisons.
package currency

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNegativeAmount rejects conversion of negative amounts.
var ErrNegativeAmount = errors.New("currency: amount cannot be negative")

// Reference is the common unit every amount is normalised to.
const Reference = "USD"

// defaultRates maps a currency code to units per one reference unit.
// Static configuration data; the table is never mutated at runtime.
var defaultRates = map[string]decimal.Decimal{
	"USD": decimal.NewFromInt(1),
	"EUR": decimal.RequireFromString("0.92"),
	"GBP": decimal.RequireFromString("0.79"),
	"GHS": decimal.RequireFromString("12.05"),
	"JPY": decimal.RequireFromString("149.50"),
	"INR": decimal.RequireFromString("83.25"),
	"NGN": decimal.RequireFromString("775.00"),
	"ZAR": decimal.RequireFromString("18.75"),
	"KES": decimal.RequireFromString("129.50"),
	"CAD": decimal.RequireFromString("1.36"),
}

// Amount is a normalised amount in the reference unit. Known reports whether
// the source currency code was present in the rate table; unknown codes are
// converted 1:1 by policy, and callers that care can inspect the flag.
type Amount struct {
	Value decimal.Decimal
	Code  string
	Known bool
}

// Table resolves currency codes to reference-unit conversion rates. The table
// is fixed at construction.
type Table struct {
	rates map[string]decimal.Decimal
}

// NewTable builds a rate table from the built-in defaults, with optional
// per-code overrides (rate = units per reference unit). Non-positive
// overrides are ignored.
func NewTable(overrides map[string]float64) *Table {
	rates := make(map[string]decimal.Decimal, len(defaultRates)+len(overrides))
	for code, rate := range defaultRates {
		rates[code] = rate
	}
	for code, rate := range overrides {
		if rate <= 0 {
			continue
		}
		rates[strings.ToUpper(code)] = decimal.NewFromFloat(rate)
	}
	return &Table{rates: rates}
}

// Normalize converts amount from the given currency into the reference unit.
// Unknown codes are not an error: the amount passes through at a 1:1 rate
// with Known=false. Negative amounts fail with ErrNegativeAmount.
func (t *Table) Normalize(amount decimal.Decimal, code string) (Amount, error) {
	if amount.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}

	code = strings.ToUpper(strings.TrimSpace(code))
	rate, ok := t.rates[code]
	if !ok {
		return Amount{Value: amount, Code: code, Known: false}, nil
	}

	return Amount{Value: amount.Div(rate), Code: code, Known: true}, nil
}

// Supported reports whether the table recognises the given code.
func (t *Table) Supported(code string) bool {
	_, ok := t.rates[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}
