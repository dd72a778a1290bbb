package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"txnrisk/internal/app"
)

var (
	batchFile   string
	batchRecord bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Score a JSON file of transactions against one profile snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		if batchFile == "" {
			return errors.New("--file is required")
		}

		opts := app.BatchOptions{
			UserID: userID,
			File:   batchFile,
			Record: batchRecord,
		}
		return getApp().Batch(cmd.Context(), opts)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "Path to a JSON array of transactions")
	batchCmd.Flags().BoolVar(&batchRecord, "record", false, "Record scored transactions into the history")
}
