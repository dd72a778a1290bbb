package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"txnrisk/internal/risk"
)

// BatchOptions configure bulk evaluation.
type BatchOptions struct {
	UserID string
	File   string
	Record bool
}

// Batch scores a JSON array of candidate transactions against one profile
// and history snapshot. With Record set, approved-or-flagged results are
// appended to the user's history in input order after scoring.
func (a *App) Batch(ctx context.Context, opts BatchOptions) error {
	data, err := os.ReadFile(opts.File)
	if err != nil {
		return fmt.Errorf("read batch file: %w", err)
	}

	var txs []risk.Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return fmt.Errorf("parse batch file: %w", err)
	}
	if len(txs) == 0 {
		fmt.Fprintln(os.Stdout, "no transactions in batch file")
		return nil
	}

	profiles, history, _, closeStores, err := a.stores(ctx)
	if err != nil {
		return err
	}
	defer closeStores()

	evaluator := a.newEvaluator(profiles, history)

	results, err := evaluator.EvaluateBatch(ctx, txs, opts.UserID)
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "#\tMerchant\tAmount\tScore\tStatus\tReasons")
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(writer, "%d\t%s\t%s\t-\t-\t%s\n",
				res.Index+1, res.Transaction.Merchant, res.Transaction.Amount.StringFixed(2), res.Err)
			continue
		}
		fmt.Fprintf(writer, "%d\t%s\t%s\t%d\t%s\t%s\n",
			res.Index+1,
			res.Transaction.Merchant,
			res.Transaction.Amount.StringFixed(2),
			res.Assessment.Score,
			res.Assessment.Status,
			joinReasons(res.Assessment.Reasons),
		)
	}
	writer.Flush()

	if opts.Record {
		recorded := 0
		for _, res := range results {
			if res.Err != nil {
				continue
			}
			if _, _, err := evaluator.Submit(ctx, res.Transaction, opts.UserID); err != nil {
				a.Logger.Error().Err(err).Int("index", res.Index).Msg("failed to record batch transaction")
				continue
			}
			recorded++
		}
		a.Logger.Info().Int("recorded", recorded).Int("failed", failed).Msg("batch recorded")
	}

	return nil
}

func joinReasons(reasons []string) string {
	if len(reasons) == 0 {
		return "-"
	}
	out := reasons[0]
	for _, r := range reasons[1:] {
		out += "; " + r
	}
	return out
}
