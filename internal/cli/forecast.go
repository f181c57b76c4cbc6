package cli

import (
	"github.com/spf13/cobra"

	"poolcalc/internal/app"
)

var (
	forecastEstimate float64
	forecastPool     string
	forecastEpoch    int
	forecastSnapshot string
	forecastCSVPath  string
	forecastPNGPath  string
	forecastPersist  bool
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Print the block probability distribution for an epoch estimate",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ForecastOptions{
			EstimatedBlocks: forecastEstimate,
			PoolID:          forecastPool,
			Epoch:           forecastEpoch,
			SnapshotFile:    forecastSnapshot,
			CSVPath:         forecastCSVPath,
			PNGPath:         forecastPNGPath,
			Persist:         forecastPersist,
		}
		return getApp().Forecast(cmd.Context(), opts)
	},
}

func init() {
	forecastCmd.Flags().Float64Var(&forecastEstimate, "estimate", 0, "Estimated blocks for the epoch (defaults to the pool snapshot)")
	forecastCmd.Flags().StringVar(&forecastPool, "pool", "", "Pool id")
	forecastCmd.Flags().IntVar(&forecastEpoch, "epoch", 0, "Epoch number recorded with a persisted forecast")
	forecastCmd.Flags().StringVar(&forecastSnapshot, "snapshot", "", "Read the pool snapshot from a JSON file")
	forecastCmd.Flags().StringVar(&forecastCSVPath, "csv", "", "Path to write CSV data")
	forecastCmd.Flags().StringVar(&forecastPNGPath, "png", "", "Path to write PNG chart")
	forecastCmd.Flags().BoolVar(&forecastPersist, "persist", false, "Store the forecast in the database")
}
