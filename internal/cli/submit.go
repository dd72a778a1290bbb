package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"txnrisk/internal/app"
)

var (
	submitAmount   float64
	submitCurrency string
	submitMerchant string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Score a transaction and record it in the history",
	RunE: func(cmd *cobra.Command, args []string) error {
		if submitAmount < 0 {
			return errors.New("--amount cannot be negative")
		}
		if submitMerchant == "" {
			return errors.New("--merchant is required")
		}

		opts := app.SubmitOptions{
			UserID:   userID,
			Amount:   submitAmount,
			Currency: submitCurrency,
			Merchant: submitMerchant,
		}
		return getApp().Submit(cmd.Context(), opts)
	},
}

func init() {
	submitCmd.Flags().Float64Var(&submitAmount, "amount", 0, "Transaction amount")
	submitCmd.Flags().StringVar(&submitCurrency, "currency", "USD", "Transaction currency code")
	submitCmd.Flags().StringVar(&submitMerchant, "merchant", "", "Merchant name")
}
