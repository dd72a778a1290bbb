package risk

import (
	"fmt"
	"strings"
)

// ValidationError rejects malformed input before scoring. Inputs failing
// validation are never silently coerced.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ValidateTransaction checks a candidate transaction ahead of scoring.
func ValidateTransaction(tx Transaction) error {
	if tx.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Reason: "cannot be negative"}
	}
	if strings.TrimSpace(tx.Merchant) == "" {
		return &ValidationError{Field: "merchant", Reason: "cannot be empty"}
	}
	if !wellFormedCurrency(tx.Currency) {
		return &ValidationError{Field: "currency", Reason: "must be a three-letter code"}
	}
	return nil
}

// Validate checks profile fields against the data-model constraints.
func (p Profile) Validate() error {
	if !p.MonthlyBudget.IsPositive() {
		return &ValidationError{Field: "monthly_budget", Reason: "must be greater than zero"}
	}
	if !p.DailyLimit.IsPositive() {
		return &ValidationError{Field: "daily_limit", Reason: "must be greater than zero"}
	}
	switch p.RiskTolerance {
	case ToleranceLow, ToleranceMedium, ToleranceHigh:
	default:
		return &ValidationError{Field: "risk_tolerance", Reason: "must be low, medium, or high"}
	}
	if p.RiskThreshold < 0 || p.RiskThreshold > 100 {
		return &ValidationError{Field: "risk_threshold", Reason: "must be within [0,100]"}
	}
	return nil
}

// wellFormedCurrency accepts exactly three ASCII letters. Whether the code is
// in the rate table is a separate question: unknown but well-formed codes
// normalise at 1:1 by policy.
func wellFormedCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
