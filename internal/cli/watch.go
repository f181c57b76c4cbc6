package cli

import (
	"github.com/spf13/cobra"

	"poolcalc/internal/app"
)

var (
	watchPools     []string
	watchSnapshot  string
	watchImmediate bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the scheduled forecast service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Watch(cmd.Context(), app.WatchOptions{
			Pools:          watchPools,
			SnapshotFile:   watchSnapshot,
			RunImmediately: watchImmediate,
		})
	},
}

func init() {
	watchCmd.Flags().StringSliceVar(&watchPools, "pool", nil, "Pool ids to watch (defaults to source.pools)")
	watchCmd.Flags().StringVar(&watchSnapshot, "snapshot", "", "Read snapshots from a JSON file instead of the explorer")
	watchCmd.Flags().BoolVar(&watchImmediate, "now", false, "Evaluate once immediately before waiting for the first bucket")
}
