package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"txnrisk/internal/app"
)

var (
	simAmount        float64
	simCurrency      string
	simMerchant      string
	simMonthlyBudget float64
	simDailyLimit    float64
	simTolerance     string
	simThreshold     int
	simQuick         bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a what-if risk evaluation without recording anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simMerchant == "" {
			return errors.New("--merchant is required")
		}

		opts := app.SimulateOptions{
			UserID:        userID,
			Amount:        simAmount,
			Currency:      simCurrency,
			Merchant:      simMerchant,
			MonthlyBudget: simMonthlyBudget,
			DailyLimit:    simDailyLimit,
			Tolerance:     simTolerance,
			Threshold:     simThreshold,
			HasThreshold:  cmd.Flags().Changed("threshold"),
			Quick:         simQuick,
		}
		return getApp().Simulate(cmd.Context(), opts)
	},
}

func init() {
	simulateCmd.Flags().Float64Var(&simAmount, "amount", 0, "Transaction amount")
	simulateCmd.Flags().StringVar(&simCurrency, "currency", "USD", "Transaction currency code")
	simulateCmd.Flags().StringVar(&simMerchant, "merchant", "", "Merchant name")
	simulateCmd.Flags().Float64Var(&simMonthlyBudget, "monthly-budget", 0, "Override monthly budget for the simulation")
	simulateCmd.Flags().Float64Var(&simDailyLimit, "daily-limit", 0, "Override daily limit for the simulation")
	simulateCmd.Flags().StringVar(&simTolerance, "tolerance", "", "Override risk tolerance (low, medium, high)")
	simulateCmd.Flags().IntVar(&simThreshold, "threshold", 0, "Override flagging threshold [0,100]")
	simulateCmd.Flags().BoolVar(&simQuick, "quick", false, "Also print the coarse amount-tier estimate")
}
