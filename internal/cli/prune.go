package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"poolcalc/internal/app"
)

var (
	pruneBefore string
	pruneDryRun bool
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete persisted forecasts older than a timestamp",
	RunE: func(cmd *cobra.Command, args []string) error {
		if pruneBefore == "" {
			return fmt.Errorf("--before must be provided")
		}

		before, err := time.Parse(time.RFC3339, pruneBefore)
		if err != nil {
			return fmt.Errorf("invalid --before value: %w", err)
		}

		return getApp().Prune(cmd.Context(), app.PruneOptions{Before: before, DryRun: pruneDryRun})
	},
}

func init() {
	pruneCmd.Flags().StringVar(&pruneBefore, "before", "", "Delete forecasts created before this timestamp (RFC3339)")
	pruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "Report without deleting")
}
