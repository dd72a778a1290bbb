package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"txnrisk/internal/risk"
)

// SimulateOptions configure a what-if evaluation. Zero-valued overrides keep
// the stored profile's fields.
type SimulateOptions struct {
	UserID   string
	Amount   float64
	Currency string
	Merchant string

	MonthlyBudget float64
	DailyLimit    float64
	Tolerance     string
	Threshold     int
	HasThreshold  bool

	Quick bool
}

// Simulate runs the full engine over a hypothetical transaction without
// persisting anything. The outcome is byte-identical to what a live
// submission of the same transaction would have produced.
func (a *App) Simulate(ctx context.Context, opts SimulateOptions) error {
	profiles, history, _, closeStores, err := a.stores(ctx)
	if err != nil {
		return err
	}
	defer closeStores()

	evaluator := a.newEvaluator(profiles, history)
	scorer := a.newScorer()

	tx := risk.Transaction{
		ID:       "simulated",
		Amount:   decimal.NewFromFloat(opts.Amount),
		Currency: opts.Currency,
		Merchant: strings.TrimSpace(opts.Merchant),
	}

	if opts.Quick {
		norm, err := scorer.Rates().Normalize(tx.Amount, tx.Currency)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "quick estimate: %d\n", risk.QuickScore(norm.Value, tx.Merchant))
	}

	profile, err := evaluator.Profile(ctx, opts.UserID)
	if err != nil {
		return err
	}
	applyOverrides(&profile, opts)

	assessment, err := evaluator.EvaluateWithProfile(ctx, tx, opts.UserID, profile)
	if err != nil {
		return err
	}

	tx.Timestamp = time.Now()
	printAssessment(tx, assessment)
	return nil
}

func applyOverrides(profile *risk.Profile, opts SimulateOptions) {
	if opts.MonthlyBudget > 0 {
		profile.MonthlyBudget = decimal.NewFromFloat(opts.MonthlyBudget)
	}
	if opts.DailyLimit > 0 {
		profile.DailyLimit = decimal.NewFromFloat(opts.DailyLimit)
	}
	if opts.Tolerance != "" {
		profile.RiskTolerance = risk.Tolerance(opts.Tolerance)
	}
	if opts.HasThreshold {
		profile.RiskThreshold = opts.Threshold
	}
}
