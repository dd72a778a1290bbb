package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"txnrisk/internal/risk"
)

// ProfileUpdateOptions carry field-level profile changes; zero values leave
// the stored field untouched.
type ProfileUpdateOptions struct {
	UserID        string
	MonthlyBudget float64
	DailyLimit    float64
	Tolerance     string
	Threshold     int
	HasThreshold  bool
	BudgetAlerts  *bool
}

// MerchantListOp identifies a trust/block list mutation.
type MerchantListOp string

// Supported list operations.
const (
	OpTrustAdd    MerchantListOp = "trust-add"
	OpTrustRemove MerchantListOp = "trust-remove"
	OpBlockAdd    MerchantListOp = "block-add"
	OpBlockRemove MerchantListOp = "block-remove"
)

// MutateMerchantList applies one idempotent trust/block list operation and
// persists the profile.
func (a *App) MutateMerchantList(ctx context.Context, userID string, op MerchantListOp, merchant string) error {
	merchant = strings.TrimSpace(merchant)
	if merchant == "" {
		return fmt.Errorf("merchant name cannot be empty")
	}

	profiles, history, _, closeStores, err := a.stores(ctx)
	if err != nil {
		return err
	}
	defer closeStores()

	evaluator := a.newEvaluator(profiles, history)

	switch op {
	case OpTrustAdd:
		err = evaluator.TrustMerchant(ctx, userID, merchant)
	case OpTrustRemove:
		err = evaluator.UntrustMerchant(ctx, userID, merchant)
	case OpBlockAdd:
		err = evaluator.BlockMerchant(ctx, userID, merchant)
	case OpBlockRemove:
		err = evaluator.UnblockMerchant(ctx, userID, merchant)
	default:
		return fmt.Errorf("unknown merchant list operation: %s", op)
	}
	if err != nil {
		return err
	}

	profile, err := evaluator.Profile(ctx, userID)
	if err != nil {
		return err
	}
	printProfile(userID, profile)
	return nil
}

// UpdateProfile applies field overrides to the stored profile and persists.
func (a *App) UpdateProfile(ctx context.Context, opts ProfileUpdateOptions) error {
	profiles, history, _, closeStores, err := a.stores(ctx)
	if err != nil {
		return err
	}
	defer closeStores()

	evaluator := a.newEvaluator(profiles, history)

	profile, err := evaluator.Profile(ctx, opts.UserID)
	if err != nil {
		return err
	}

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
	if opts.BudgetAlerts != nil {
		profile.BudgetAlerts = *opts.BudgetAlerts
	}

	if err := evaluator.UpdateProfile(ctx, opts.UserID, profile); err != nil {
		return err
	}
	printProfile(opts.UserID, profile)
	return nil
}

// PrintProfile writes the user's effective profile to stdout.
func (a *App) PrintProfile(ctx context.Context, userID string) error {
	profiles, history, _, closeStores, err := a.stores(ctx)
	if err != nil {
		return err
	}
	defer closeStores()

	evaluator := a.newEvaluator(profiles, history)
	profile, err := evaluator.Profile(ctx, userID)
	if err != nil {
		return err
	}
	printProfile(userID, profile)
	return nil
}

func printProfile(userID string, profile risk.Profile) {
	fmt.Fprintf(os.Stdout, "profile for %s\n", userID)
	fmt.Fprintf(os.Stdout, "  monthly budget: %s\n", profile.MonthlyBudget.StringFixed(2))
	fmt.Fprintf(os.Stdout, "  daily limit:    %s\n", profile.DailyLimit.StringFixed(2))
	fmt.Fprintf(os.Stdout, "  tolerance:      %s\n", profile.RiskTolerance)
	fmt.Fprintf(os.Stdout, "  threshold:      %d\n", profile.RiskThreshold)
	fmt.Fprintf(os.Stdout, "  budget alerts:  %t\n", profile.BudgetAlerts)
	fmt.Fprintf(os.Stdout, "  trusted:        %s\n", formatList(profile.TrustedMerchants))
	fmt.Fprintf(os.Stdout, "  blocked:        %s\n", formatList(profile.BlockedMerchants))
}

func formatList(entries []string) string {
	if len(entries) == 0 {
		return "(none)"
	}
	return strings.Join(entries, ", ")
}
