package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"poolcalc/internal/app"
)

var (
	showLimit int
	showPool  string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display recent persisted forecasts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		opts := app.ShowOptions{
			PoolID: showPool,
			Limit:  showLimit,
		}

		return getApp().Show(cmd.Context(), opts)
	},
}

func init() {
	showCmd.Flags().IntVar(&showLimit, "limit", 20, "Number of forecasts to display")
	showCmd.Flags().StringVar(&showPool, "pool", "", "Only show forecasts of this pool")
}
