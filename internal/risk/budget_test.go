package risk_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"txnrisk/internal/risk"
)

func TestBudgetStatus(t *testing.T) {
	profile := risk.DefaultProfile() // 5000 monthly, 500 daily

	report := risk.BudgetStatus(profile, risk.SpendingState{
		MonthToDate: decimal.NewFromInt(2500),
		DayToDate:   decimal.NewFromInt(100),
	})

	assert.True(t, report.MonthlyUsedPct.Equal(decimal.NewFromInt(50)), "got %s", report.MonthlyUsedPct)
	assert.True(t, report.DailyUsedPct.Equal(decimal.NewFromInt(20)), "got %s", report.DailyUsedPct)
	assert.True(t, report.MonthlyRemaining.Equal(decimal.NewFromInt(2500)))
	assert.True(t, report.DailyRemaining.Equal(decimal.NewFromInt(400)))
}

func TestBudgetStatusOverspend(t *testing.T) {
	profile := risk.DefaultProfile()

	report := risk.BudgetStatus(profile, risk.SpendingState{
		MonthToDate: decimal.NewFromInt(7000),
		DayToDate:   decimal.NewFromInt(900),
	})

	assert.True(t, report.MonthlyUsedPct.Equal(decimal.NewFromInt(100)), "utilisation caps at 100")
	assert.True(t, report.DailyUsedPct.Equal(decimal.NewFromInt(100)))
	assert.True(t, report.MonthlyRemaining.IsZero(), "headroom floors at zero")
	assert.True(t, report.DailyRemaining.IsZero())
}

func TestBudgetStatusZeroBudget(t *testing.T) {
	report := risk.BudgetStatus(risk.Profile{}, risk.SpendingState{})

	assert.True(t, report.MonthlyUsedPct.Equal(decimal.NewFromInt(100)), "non-positive budgets count as fully used")
	assert.True(t, report.DailyUsedPct.Equal(decimal.NewFromInt(100)))
}
