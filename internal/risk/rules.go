package risk

import (
	"strings"

	"github.com/shopspring/decimal"

	"txnrisk/internal/currency"
)

// DefaultHighRiskKeywords are the merchant category keywords that trigger the
// high-risk category rule.
var DefaultHighRiskKeywords = []string{"casino", "crypto", "gambling", "betting"}

var (
	nearBudgetFactor = decimal.RequireFromString("0.8")
	hundred          = decimal.NewFromInt(100)
	largeTxnPct      = decimal.NewFromInt(50)
	significantPct   = decimal.NewFromInt(25)
)

// RuleInput is the tuple every rule evaluates: the candidate amount already
// normalised to the reference unit, the merchant name, the profile snapshot,
// and the derived spending state.
type RuleInput struct {
	Amount   decimal.Decimal
	Merchant string
	Profile  Profile
	Spending SpendingState
}

// rule adjusts the running score and, when triggered, explains itself. An
// empty reason means the rule contributes silently (or not at all).
type rule struct {
	name  string
	apply func(in RuleInput) (delta int, reason string)
}

// Scorer applies the ordered rule set to normalised transactions. Safe for
// concurrent use: it holds only immutable configuration.
type Scorer struct {
	rates    *currency.Table
	keywords []string
	rules    []rule
}

// NewScorer builds a scorer over the given rate table. A nil keyword list
// selects DefaultHighRiskKeywords.
func NewScorer(rates *currency.Table, keywords []string) *Scorer {
	if keywords == nil {
		keywords = DefaultHighRiskKeywords
	}
	s := &Scorer{rates: rates, keywords: keywords}

	// Rule order is fixed: it determines both the reason sequence and, via
	// post-sum clamping, the exact boundary behaviour. Do not reorder.
	s.rules = []rule{
		{name: "monthly_budget", apply: monthlyBudgetRule},
		{name: "daily_limit", apply: dailyLimitRule},
		{name: "trusted_merchant", apply: trustedMerchantRule},
		{name: "blocked_merchant", apply: blockedMerchantRule},
		{name: "high_risk_category", apply: s.categoryRule},
		{name: "relative_size", apply: relativeSizeRule},
		{name: "tolerance_bias", apply: toleranceRule},
	}
	return s
}

// Rates exposes the scorer's currency table for aggregation by callers.
func (s *Scorer) Rates() *currency.Table {
	return s.rates
}

// Score runs the ordered rules and returns the unclamped raw score together
// with the triggered reasons in rule order. The raw score may be negative or
// exceed 100; clamping is the classifier's job.
func (s *Scorer) Score(in RuleInput) (int, []string) {
	raw := 0
	reasons := make([]string, 0, 4)
	for _, r := range s.rules {
		delta, reason := r.apply(in)
		raw += delta
		if reason != "" {
			reasons = append(reasons, reason)
		}
	}
	return raw, reasons
}

// Assess is the full per-transaction pipeline: validate, normalise, score,
// classify. The candidate transaction is assumed absent from the history that
// produced spending.
func (s *Scorer) Assess(tx Transaction, profile Profile, spending SpendingState) (Assessment, error) {
	if err := ValidateTransaction(tx); err != nil {
		return Assessment{}, err
	}
	if err := profile.Validate(); err != nil {
		return Assessment{}, err
	}

	norm, err := s.rates.Normalize(tx.Amount, tx.Currency)
	if err != nil {
		// Unreachable after validation, but never score unconverted input.
		return Assessment{}, &ValidationError{Field: "amount", Reason: err.Error()}
	}

	raw, reasons := s.Score(RuleInput{
		Amount:   norm.Value,
		Merchant: tx.Merchant,
		Profile:  profile,
		Spending: spending,
	})

	score, status := Classify(raw, profile.RiskThreshold)
	return Assessment{Score: score, Status: status, Reasons: reasons}, nil
}

func monthlyBudgetRule(in RuleInput) (int, string) {
	remaining := in.Profile.MonthlyBudget.Sub(in.Spending.MonthToDate)
	if in.Amount.GreaterThan(remaining) {
		return 60, "Exceeds monthly budget"
	}
	if in.Amount.GreaterThan(remaining.Mul(nearBudgetFactor)) {
		return 30, "Near monthly budget limit"
	}
	return 0, ""
}

func dailyLimitRule(in RuleInput) (int, string) {
	remaining := in.Profile.DailyLimit.Sub(in.Spending.DayToDate)
	if in.Amount.GreaterThan(remaining) {
		return 40, "Exceeds daily limit"
	}
	return 0, ""
}

// Trusted and blocked checks are independent: a merchant matching both lists
// takes both adjustments. Kept as the live dashboard behaves, without a
// precedence rule.
func trustedMerchantRule(in RuleInput) (int, string) {
	if matchesAny(in.Merchant, in.Profile.TrustedMerchants) {
		return -20, "Trusted merchant"
	}
	return 0, ""
}

func blockedMerchantRule(in RuleInput) (int, string) {
	if matchesAny(in.Merchant, in.Profile.BlockedMerchants) {
		return 80, "Blocked merchant"
	}
	return 0, ""
}

func (s *Scorer) categoryRule(in RuleInput) (int, string) {
	merchant := strings.ToLower(in.Merchant)
	for _, keyword := range s.keywords {
		if strings.Contains(merchant, strings.ToLower(keyword)) {
			return 50, "High-risk merchant category"
		}
	}
	return 0, ""
}

func relativeSizeRule(in RuleInput) (int, string) {
	budgetPct := in.Amount.Div(in.Profile.MonthlyBudget).Mul(hundred)
	if budgetPct.GreaterThan(largeTxnPct) {
		return 40, "Large transaction (>50% of budget)"
	}
	if budgetPct.GreaterThan(significantPct) {
		return 20, "Significant transaction (>25% of budget)"
	}
	return 0, ""
}

func toleranceRule(in RuleInput) (int, string) {
	switch in.Profile.RiskTolerance {
	case ToleranceLow:
		return 10, ""
	case ToleranceHigh:
		return -10, ""
	default:
		return 0, ""
	}
}

// matchesAny reports a case-insensitive substring match of the merchant name
// against any list entry. Substring (not exact) matching mirrors the source
// system; a short entry like "bet" will also match "Fitbet Store".
func matchesAny(merchant string, entries []string) bool {
	merchant = strings.ToLower(merchant)
	for _, entry := range entries {
		if entry == "" {
			continue
		}
		if strings.Contains(merchant, strings.ToLower(entry)) {
			return true
		}
	}
	return false
}
