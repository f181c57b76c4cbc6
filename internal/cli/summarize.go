package cli

import (
	"github.com/spf13/cobra"

	"poolcalc/internal/app"
)

var (
	summarizePool     string
	summarizeSnapshot string
	summarizePNGPath  string
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Print minted blocks, rewards and performance of a pool",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Summarize(cmd.Context(), app.SummarizeOptions{
			PoolID:       summarizePool,
			SnapshotFile: summarizeSnapshot,
			PNGPath:      summarizePNGPath,
		})
	},
}

func init() {
	summarizeCmd.Flags().StringVar(&summarizePool, "pool", "", "Pool id")
	summarizeCmd.Flags().StringVar(&summarizeSnapshot, "snapshot", "", "Read the pool snapshot from a JSON file")
	summarizeCmd.Flags().StringVar(&summarizePNGPath, "png", "", "Path to write a rewards PNG chart")
}
