package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// ShowOptions configure the show command.
type ShowOptions struct {
	UserID string
	Limit  int
}

// Show prints a user's recent scored transactions and budget status.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	profiles, history, _, closeStores, err := a.stores(ctx)
	if err != nil {
		return err
	}
	defer closeStores()

	evaluator := a.newEvaluator(profiles, history)

	records, err := history.ListRecentTransactions(ctx, opts.UserID, opts.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stdout, "no transactions found")
	} else {
		writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(writer, "Time (UTC)\tMerchant\tAmount\tCurrency\tScore\tStatus\tReasons")
		for _, rec := range records {
			fmt.Fprintf(
				writer,
				"%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
				rec.Transaction.Timestamp.UTC().Format(time.RFC3339),
				sanitizeInline(rec.Transaction.Merchant),
				rec.Transaction.Amount.StringFixed(2),
				rec.Transaction.Currency,
				rec.Assessment.Score,
				rec.Assessment.Status,
				joinReasons(rec.Assessment.Reasons),
			)
		}
		writer.Flush()
	}

	report, err := evaluator.BudgetStatus(ctx, opts.UserID)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "\nmonthly budget used: %s%% (%s remaining)\n",
		report.MonthlyUsedPct.StringFixed(1), report.MonthlyRemaining.StringFixed(2))
	fmt.Fprintf(os.Stdout, "daily limit used:    %s%% (%s remaining)\n",
		report.DailyUsedPct.StringFixed(1), report.DailyRemaining.StringFixed(2))
	return nil
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
