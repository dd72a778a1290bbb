package risk

import "github.com/shopspring/decimal"

// BudgetStatus summarises budget utilisation for alerting and display.
// Utilisation percentages are capped at 100 and remaining headroom floors at
// zero.
type BudgetStatusReport struct {
	MonthlyUsedPct   decimal.Decimal `json:"monthly_used_pct"`
	DailyUsedPct     decimal.Decimal `json:"daily_used_pct"`
	MonthlyRemaining decimal.Decimal `json:"monthly_remaining"`
	DailyRemaining   decimal.Decimal `json:"daily_remaining"`
}

// BudgetStatus derives utilisation from a profile and spending state.
func BudgetStatus(profile Profile, spending SpendingState) BudgetStatusReport {
	return BudgetStatusReport{
		MonthlyUsedPct:   usedPct(spending.MonthToDate, profile.MonthlyBudget),
		DailyUsedPct:     usedPct(spending.DayToDate, profile.DailyLimit),
		MonthlyRemaining: headroom(profile.MonthlyBudget, spending.MonthToDate),
		DailyRemaining:   headroom(profile.DailyLimit, spending.DayToDate),
	}
}

func usedPct(spent, budget decimal.Decimal) decimal.Decimal {
	if !budget.IsPositive() {
		return hundred
	}
	pct := spent.Div(budget).Mul(hundred)
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}

func headroom(budget, spent decimal.Decimal) decimal.Decimal {
	remaining := budget.Sub(spent)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}
