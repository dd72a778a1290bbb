// Package risk implements the deterministic transaction risk assessment
// core: spending aggregation, the ordered rule engine, and the decision
// classifier. Every function here is pure; profile persistence and history
// retrieval belong to the caller.
package risk

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tolerance biases the final score up or down per user appetite.
type Tolerance string

// Supported risk tolerance levels.
const (
	ToleranceLow    Tolerance = "low"
	ToleranceMedium Tolerance = "medium"
	ToleranceHigh   Tolerance = "high"
)

// Status is the approve/flag decision attached to an assessment.
type Status string

// Assessment outcomes.
const (
	StatusApproved Status = "approved"
	StatusFlagged  Status = "flagged"
)

// Transaction is a candidate or historical transaction. Immutable once
// created; owned by the caller's history collection.
type Transaction struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Merchant  string          `json:"merchant"`
	Timestamp time.Time       `json:"timestamp"`
}

// Profile holds a user's budgets, merchant lists, and tolerance. One profile
// per user; persisted by an external store and passed into every evaluation
// explicitly, never cached by the engine.
type Profile struct {
	MonthlyBudget    decimal.Decimal `json:"monthly_budget"`
	DailyLimit       decimal.Decimal `json:"daily_limit"`
	RiskTolerance    Tolerance       `json:"risk_tolerance"`
	TrustedMerchants []string        `json:"trusted_merchants"`
	BlockedMerchants []string        `json:"blocked_merchants"`
	RiskThreshold    int             `json:"risk_threshold"`
	BudgetAlerts     bool            `json:"budget_alerts"`
}

// SpendingState is the derived month-to-date and day-to-date spending in the
// reference unit. Never stored authoritatively: replaying the same history
// against the same instant always reproduces the same totals.
type SpendingState struct {
	MonthToDate decimal.Decimal `json:"month_to_date"`
	DayToDate   decimal.Decimal `json:"day_to_date"`
}

// Assessment is the result of one evaluation. Created fresh per call and
// never mutated; callers decide whether to persist it.
type Assessment struct {
	Score   int      `json:"score"`
	Status  Status   `json:"status"`
	Reasons []string `json:"reasons"`
}

// DefaultProfile returns the documented default applied when a user has no
// stored profile.
func DefaultProfile() Profile {
	return Profile{
		MonthlyBudget: decimal.NewFromInt(5000),
		DailyLimit:    decimal.NewFromInt(500),
		RiskTolerance: ToleranceMedium,
		RiskThreshold: 70,
		BudgetAlerts:  true,
	}
}

// AddTrustedMerchant adds name to the trusted list. Adding an already present
// name is a no-op; the return value reports whether the profile changed.
func (p *Profile) AddTrustedMerchant(name string) bool {
	var changed bool
	p.TrustedMerchants, changed = addToSet(p.TrustedMerchants, name)
	return changed
}

// RemoveTrustedMerchant removes name from the trusted list; removing an
// absent name is a no-op.
func (p *Profile) RemoveTrustedMerchant(name string) bool {
	var changed bool
	p.TrustedMerchants, changed = removeFromSet(p.TrustedMerchants, name)
	return changed
}

// AddBlockedMerchant adds name to the blocked list.
func (p *Profile) AddBlockedMerchant(name string) bool {
	var changed bool
	p.BlockedMerchants, changed = addToSet(p.BlockedMerchants, name)
	return changed
}

// RemoveBlockedMerchant removes name from the blocked list.
func (p *Profile) RemoveBlockedMerchant(name string) bool {
	var changed bool
	p.BlockedMerchants, changed = removeFromSet(p.BlockedMerchants, name)
	return changed
}

func addToSet(set []string, name string) ([]string, bool) {
	for _, entry := range set {
		if entry == name {
			return set, false
		}
	}
	return append(set, name), true
}

func removeFromSet(set []string, name string) ([]string, bool) {
	for i, entry := range set {
		if entry == name {
			return append(set[:i:i], set[i+1:]...), true
		}
	}
	return set, false
}
