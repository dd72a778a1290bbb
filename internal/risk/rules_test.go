package risk_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txnrisk/internal/currency"
	"txnrisk/internal/risk"
)

func newScorer() *risk.Scorer {
	return risk.NewScorer(currency.NewTable(nil), nil)
}

func txn(amount, code, merchant string) risk.Transaction {
	return risk.Transaction{
		ID:        "tx-1",
		Amount:    decimal.RequireFromString(amount),
		Currency:  code,
		Merchant:  merchant,
		Timestamp: time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC),
	}
}

func spending(month, day string) risk.SpendingState {
	return risk.SpendingState{
		MonthToDate: decimal.RequireFromString(month),
		DayToDate:   decimal.RequireFromString(day),
	}
}

func TestScoreRules(t *testing.T) {
	scorer := newScorer()

	base := risk.Profile{
		MonthlyBudget: decimal.NewFromInt(5000),
		DailyLimit:    decimal.NewFromInt(5000),
		RiskTolerance: risk.ToleranceMedium,
		RiskThreshold: 70,
	}

	tests := []struct {
		name        string
		amount      string
		merchant    string
		mutate      func(p *risk.Profile)
		spending    risk.SpendingState
		wantRaw     int
		wantReasons []string
	}{
		{
			name:     "no rule fires",
			amount:   "100",
			merchant: "Grocery Mart",
			spending: spending("0", "0"),
			wantRaw:  0,
		},
		{
			name:        "exceeds monthly budget",
			amount:      "200",
			merchant:    "Grocery Mart",
			spending:    spending("4900", "0"),
			wantRaw:     60,
			wantReasons: []string{"Exceeds monthly budget"},
		},
		{
			name:        "near monthly budget",
			amount:      "1000",
			merchant:    "Grocery Mart",
			spending:    spending("3900", "0"),
			wantRaw:     30,
			wantReasons: []string{"Near monthly budget limit"},
		},
		{
			name:     "exceeds daily limit",
			amount:   "600",
			merchant: "Grocery Mart",
			mutate: func(p *risk.Profile) {
				p.MonthlyBudget = decimal.NewFromInt(100000)
				p.DailyLimit = decimal.NewFromInt(500)
			},
			spending:    spending("0", "0"),
			wantRaw:     40,
			wantReasons: []string{"Exceeds daily limit"},
		},
		{
			name:     "trusted merchant substring match",
			amount:   "50",
			merchant: "Amazon Fresh",
			mutate: func(p *risk.Profile) {
				p.TrustedMerchants = []string{"amazon"}
			},
			spending:    spending("0", "0"),
			wantRaw:     -20,
			wantReasons: []string{"Trusted merchant"},
		},
		{
			name:     "blocked merchant",
			amount:   "50",
			merchant: "Shady Goods Ltd",
			mutate: func(p *risk.Profile) {
				p.BlockedMerchants = []string{"shady"}
			},
			spending:    spending("0", "0"),
			wantRaw:     80,
			wantReasons: []string{"Blocked merchant"},
		},
		{
			name:     "trusted and blocked both apply",
			amount:   "50",
			merchant: "Corner Store",
			mutate: func(p *risk.Profile) {
				p.TrustedMerchants = []string{"corner"}
				p.BlockedMerchants = []string{"store"}
			},
			spending:    spending("0", "0"),
			wantRaw:     60,
			wantReasons: []string{"Trusted merchant", "Blocked merchant"},
		},
		{
			name:        "high-risk category keyword",
			amount:      "50",
			merchant:    "Royal CASINO Accra",
			spending:    spending("0", "0"),
			wantRaw:     50,
			wantReasons: []string{"High-risk merchant category"},
		},
		{
			name:     "large transaction over half the budget",
			amount:   "501",
			merchant: "Furniture World",
			mutate: func(p *risk.Profile) {
				p.MonthlyBudget = decimal.NewFromInt(1000)
				p.DailyLimit = decimal.NewFromInt(10000)
			},
			spending:    spending("0", "0"),
			wantRaw:     40,
			wantReasons: []string{"Large transaction (>50% of budget)"},
		},
		{
			name:     "significant transaction over a quarter of the budget",
			amount:   "300",
			merchant: "Furniture World",
			mutate: func(p *risk.Profile) {
				p.MonthlyBudget = decimal.NewFromInt(1000)
				p.DailyLimit = decimal.NewFromInt(10000)
			},
			spending:    spending("0", "0"),
			wantRaw:     20,
			wantReasons: []string{"Significant transaction (>25% of budget)"},
		},
		{
			name:     "low tolerance adds silently",
			amount:   "10",
			merchant: "Grocery Mart",
			mutate: func(p *risk.Profile) {
				p.RiskTolerance = risk.ToleranceLow
			},
			spending: spending("0", "0"),
			wantRaw:  10,
		},
		{
			name:     "high tolerance subtracts silently",
			amount:   "10",
			merchant: "Grocery Mart",
			mutate: func(p *risk.Profile) {
				p.RiskTolerance = risk.ToleranceHigh
			},
			spending: spending("0", "0"),
			wantRaw:  -10,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			profile := base
			if tc.mutate != nil {
				tc.mutate(&profile)
			}

			raw, reasons := scorer.Score(risk.RuleInput{
				Amount:   decimal.RequireFromString(tc.amount),
				Merchant: tc.merchant,
				Profile:  profile,
				Spending: tc.spending,
			})

			assert.Equal(t, tc.wantRaw, raw)
			if tc.wantReasons == nil {
				assert.Empty(t, reasons)
			} else {
				assert.Equal(t, tc.wantReasons, reasons)
			}
		})
	}
}

func TestAssessLargeForeignTransactionFlagged(t *testing.T) {
	scorer := newScorer()

	// 1,000,000 JPY at 149.50 is roughly 6689 reference units: over the
	// monthly budget, over the daily limit, and over half the budget.
	assessment, err := scorer.Assess(txn("1000000", "JPY", "Electronics Hub"), risk.DefaultProfile(), spending("0", "0"))
	require.NoError(t, err)

	assert.Equal(t, 100, assessment.Score)
	assert.Equal(t, risk.StatusFlagged, assessment.Status)
	assert.Equal(t, []string{
		"Exceeds monthly budget",
		"Exceeds daily limit",
		"Large transaction (>50% of budget)",
	}, assessment.Reasons)
}

func TestAssessBlockedMerchantFlagged(t *testing.T) {
	scorer := newScorer()

	profile := risk.DefaultProfile()
	profile.AddBlockedMerchant("Lucky Casino")

	// Blocked (+80) plus category (+50) overshoots 100 pre-clamp.
	assessment, err := scorer.Assess(txn("100", "USD", "Lucky Casino"), profile, spending("0", "0"))
	require.NoError(t, err)

	assert.Equal(t, 100, assessment.Score)
	assert.Equal(t, risk.StatusFlagged, assessment.Status)
	assert.Equal(t, []string{"Blocked merchant", "High-risk merchant category"}, assessment.Reasons)
}

func TestAssessTrustedMerchantLowersScore(t *testing.T) {
	scorer := newScorer()

	tx := txn("600", "USD", "Amazon")
	state := spending("0", "0")

	plain, err := scorer.Assess(tx, risk.DefaultProfile(), state)
	require.NoError(t, err)

	trusted := risk.DefaultProfile()
	trusted.AddTrustedMerchant("Amazon")
	lowered, err := scorer.Assess(tx, trusted, state)
	require.NoError(t, err)

	assert.Equal(t, plain.Score-20, lowered.Score)
	assert.Equal(t, risk.StatusApproved, lowered.Status)
	assert.Contains(t, lowered.Reasons, "Trusted merchant")
}

func TestAssessBudgetBreach(t *testing.T) {
	scorer := newScorer()

	// Nearly exhausted month: 4800 of 5000 spent, so a 2600 charge exceeds
	// the budget, the daily limit, and half the budget at once.
	assessment, err := scorer.Assess(txn("2600", "USD", "Travel Agency"), risk.DefaultProfile(), spending("4800", "300"))
	require.NoError(t, err)

	assert.Equal(t, 100, assessment.Score)
	assert.Equal(t, risk.StatusFlagged, assessment.Status)
	assert.Contains(t, assessment.Reasons, "Exceeds monthly budget")
	assert.Contains(t, assessment.Reasons, "Exceeds daily limit")
}

func TestAssessScoreNeverNegative(t *testing.T) {
	scorer := newScorer()

	profile := risk.DefaultProfile()
	profile.RiskTolerance = risk.ToleranceHigh
	profile.AddTrustedMerchant("Grocery Mart")

	assessment, err := scorer.Assess(txn("20", "USD", "Grocery Mart"), profile, spending("0", "0"))
	require.NoError(t, err)

	assert.Equal(t, 0, assessment.Score)
	assert.Equal(t, risk.StatusApproved, assessment.Status)
}

func TestAssessFlagsOnlyAboveThreshold(t *testing.T) {
	scorer := newScorer()

	// Exhausted budget (+60) plus low tolerance (+10) lands exactly on the
	// default threshold of 70.
	profile := risk.DefaultProfile()
	profile.RiskTolerance = risk.ToleranceLow
	state := spending("5000", "0")
	tx := txn("100", "USD", "Grocery Mart")

	atThreshold, err := scorer.Assess(tx, profile, state)
	require.NoError(t, err)
	assert.Equal(t, 70, atThreshold.Score)
	assert.Equal(t, risk.StatusApproved, atThreshold.Status, "a score equal to the threshold is approved")

	profile.RiskThreshold = 69
	above, err := scorer.Assess(tx, profile, state)
	require.NoError(t, err)
	assert.Equal(t, risk.StatusFlagged, above.Status)
}

func TestAssessReasonsFollowRuleOrder(t *testing.T) {
	scorer := newScorer()

	profile := risk.DefaultProfile()
	profile.AddBlockedMerchant("mega")

	assessment, err := scorer.Assess(txn("6000", "USD", "Mega Casino"), profile, spending("0", "0"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Exceeds monthly budget",
		"Exceeds daily limit",
		"Blocked merchant",
		"High-risk merchant category",
		"Large transaction (>50% of budget)",
	}, assessment.Reasons)
}

func TestAssessDeterministic(t *testing.T) {
	scorer := newScorer()

	profile := risk.DefaultProfile()
	profile.AddTrustedMerchant("amazon")
	tx := txn("750", "EUR", "Amazon Fresh")
	state := spending("1200", "150")

	first, err := scorer.Assess(tx, profile, state)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := scorer.Assess(tx, profile, state)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestAssessRejectsInvalidInput(t *testing.T) {
	scorer := newScorer()
	state := spending("0", "0")

	tests := []struct {
		name    string
		tx      risk.Transaction
		profile risk.Profile
	}{
		{name: "negative amount", tx: txn("-5", "USD", "Grocery Mart"), profile: risk.DefaultProfile()},
		{name: "empty merchant", tx: txn("5", "USD", "  "), profile: risk.DefaultProfile()},
		{name: "long currency code", tx: txn("5", "EURO", "Grocery Mart"), profile: risk.DefaultProfile()},
		{name: "non-letter currency code", tx: txn("5", "E1R", "Grocery Mart"), profile: risk.DefaultProfile()},
		{
			name:    "invalid profile",
			tx:      txn("5", "USD", "Grocery Mart"),
			profile: risk.Profile{RiskTolerance: risk.ToleranceMedium, RiskThreshold: 70},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := scorer.Assess(tc.tx, tc.profile, state)
			var verr *risk.ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestAssessUnknownCurrencyScoredAtParity(t *testing.T) {
	scorer := newScorer()

	// Unknown but well-formed codes convert 1:1 rather than erroring.
	known, err := scorer.Assess(txn("600", "USD", "Grocery Mart"), risk.DefaultProfile(), spending("0", "0"))
	require.NoError(t, err)
	unknown, err := scorer.Assess(txn("600", "XTS", "Grocery Mart"), risk.DefaultProfile(), spending("0", "0"))
	require.NoError(t, err)

	assert.Equal(t, known, unknown)
}
