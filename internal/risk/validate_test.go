package risk_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txnrisk/internal/risk"
)

func TestValidateTransaction(t *testing.T) {
	valid := risk.Transaction{
		Amount:   decimal.NewFromInt(10),
		Currency: "usd",
		Merchant: "Grocery Mart",
	}
	require.NoError(t, risk.ValidateTransaction(valid))

	tests := []struct {
		name      string
		mutate    func(tx *risk.Transaction)
		wantField string
	}{
		{
			name:      "negative amount",
			mutate:    func(tx *risk.Transaction) { tx.Amount = decimal.NewFromInt(-1) },
			wantField: "amount",
		},
		{
			name:      "blank merchant",
			mutate:    func(tx *risk.Transaction) { tx.Merchant = "   " },
			wantField: "merchant",
		},
		{
			name:      "short currency",
			mutate:    func(tx *risk.Transaction) { tx.Currency = "US" },
			wantField: "currency",
		},
		{
			name:      "digits in currency",
			mutate:    func(tx *risk.Transaction) { tx.Currency = "U5D" },
			wantField: "currency",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tx := valid
			tc.mutate(&tx)

			err := risk.ValidateTransaction(tx)
			var verr *risk.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.wantField, verr.Field)
		})
	}
}

func TestValidateTransactionZeroAmountAllowed(t *testing.T) {
	tx := risk.Transaction{
		Amount:   decimal.Zero,
		Currency: "USD",
		Merchant: "Grocery Mart",
	}
	assert.NoError(t, risk.ValidateTransaction(tx))
}

func TestProfileValidate(t *testing.T) {
	require.NoError(t, risk.DefaultProfile().Validate())

	tests := []struct {
		name      string
		mutate    func(p *risk.Profile)
		wantField string
	}{
		{
			name:      "zero monthly budget",
			mutate:    func(p *risk.Profile) { p.MonthlyBudget = decimal.Zero },
			wantField: "monthly_budget",
		},
		{
			name:      "negative daily limit",
			mutate:    func(p *risk.Profile) { p.DailyLimit = decimal.NewFromInt(-10) },
			wantField: "daily_limit",
		},
		{
			name:      "unknown tolerance",
			mutate:    func(p *risk.Profile) { p.RiskTolerance = "reckless" },
			wantField: "risk_tolerance",
		},
		{
			name:      "threshold above hundred",
			mutate:    func(p *risk.Profile) { p.RiskThreshold = 101 },
			wantField: "risk_threshold",
		},
		{
			name:      "negative threshold",
			mutate:    func(p *risk.Profile) { p.RiskThreshold = -1 },
			wantField: "risk_threshold",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			profile := risk.DefaultProfile()
			tc.mutate(&profile)

			err := profile.Validate()
			var verr *risk.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.wantField, verr.Field)
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &risk.ValidationError{Field: "amount", Reason: "cannot be negative"}
	assert.Equal(t, "invalid amount: cannot be negative", err.Error())
}
