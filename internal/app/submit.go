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

// SubmitOptions hold parameters for scoring and recording one transaction.
type SubmitOptions struct {
	UserID   string
	Amount   float64
	Currency string
	Merchant string
}

// Submit evaluates a live transaction and records it with its assessment.
func (a *App) Submit(ctx context.Context, opts SubmitOptions) error {
	profiles, history, _, closeStores, err := a.stores(ctx)
	if err != nil {
		return err
	}
	defer closeStores()

	evaluator := a.newEvaluator(profiles, history)

	tx := risk.Transaction{
		Amount:   decimal.NewFromFloat(opts.Amount),
		Currency: opts.Currency,
		Merchant: strings.TrimSpace(opts.Merchant),
	}

	recorded, assessment, err := evaluator.Submit(ctx, tx, opts.UserID)
	if err != nil {
		return err
	}

	printAssessment(recorded, assessment)
	return nil
}

func printAssessment(tx risk.Transaction, assessment risk.Assessment) {
	fmt.Fprintf(os.Stdout, "transaction %s\n", tx.ID)
	fmt.Fprintf(os.Stdout, "  merchant: %s\n", tx.Merchant)
	fmt.Fprintf(os.Stdout, "  amount:   %s %s\n", tx.Amount.StringFixed(2), tx.Currency)
	fmt.Fprintf(os.Stdout, "  time:     %s\n", tx.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(os.Stdout, "  score:    %d\n", assessment.Score)
	fmt.Fprintf(os.Stdout, "  status:   %s\n", assessment.Status)
	for _, reason := range assessment.Reasons {
		fmt.Fprintf(os.Stdout, "  - %s\n", reason)
	}
}
