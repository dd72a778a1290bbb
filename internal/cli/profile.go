package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"txnrisk/internal/app"
)

var (
	profileMonthlyBudget float64
	profileDailyLimit    float64
	profileTolerance     string
	profileThreshold     int
	profileAlerts        bool
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect and mutate a user's risk profile",
}

var profileGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the effective risk profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().PrintProfile(cmd.Context(), userID)
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update profile fields and persist",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ProfileUpdateOptions{
			UserID:        userID,
			MonthlyBudget: profileMonthlyBudget,
			DailyLimit:    profileDailyLimit,
			Tolerance:     profileTolerance,
			Threshold:     profileThreshold,
			HasThreshold:  cmd.Flags().Changed("threshold"),
		}
		if cmd.Flags().Changed("budget-alerts") {
			opts.BudgetAlerts = &profileAlerts
		}
		return getApp().UpdateProfile(cmd.Context(), opts)
	},
}

func newListCmd(use, short string, op app.MerchantListOp) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <merchant>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return errors.New("merchant name cannot be empty")
			}
			return getApp().MutateMerchantList(cmd.Context(), userID, op, args[0])
		},
	}
}

func init() {
	profileSetCmd.Flags().Float64Var(&profileMonthlyBudget, "monthly-budget", 0, "Monthly budget in the reference currency")
	profileSetCmd.Flags().Float64Var(&profileDailyLimit, "daily-limit", 0, "Daily limit in the reference currency")
	profileSetCmd.Flags().StringVar(&profileTolerance, "tolerance", "", "Risk tolerance (low, medium, high)")
	profileSetCmd.Flags().IntVar(&profileThreshold, "threshold", 0, "Flagging threshold [0,100]")
	profileSetCmd.Flags().BoolVar(&profileAlerts, "budget-alerts", true, "Enable budget alerts")

	profileCmd.AddCommand(profileGetCmd)
	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(newListCmd("trust-add", "Add a merchant to the trusted list", app.OpTrustAdd))
	profileCmd.AddCommand(newListCmd("trust-remove", "Remove a merchant from the trusted list", app.OpTrustRemove))
	profileCmd.AddCommand(newListCmd("block-add", "Add a merchant to the blocked list", app.OpBlockAdd))
	profileCmd.AddCommand(newListCmd("block-remove", "Remove a merchant from the blocked list", app.OpBlockRemove))
}
