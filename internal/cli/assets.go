package cli

import (
	"github.com/spf13/cobra"

	"poolcalc/internal/app"
)

var (
	assetsInput    string
	assetsPool     string
	assetsSnapshot string
	assetsClass    string
	assetsSearch   string
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Filter and rank native assets by class, search text and value",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().FilterAssets(cmd.Context(), app.AssetsOptions{
			Input:        assetsInput,
			PoolID:       assetsPool,
			SnapshotFile: assetsSnapshot,
			Class:        assetsClass,
			Search:       assetsSearch,
		})
	},
}

func init() {
	assetsCmd.Flags().StringVar(&assetsInput, "input", "", "JSON file holding an asset list")
	assetsCmd.Flags().StringVar(&assetsPool, "pool", "", "Pool id whose snapshot assets are filtered")
	assetsCmd.Flags().StringVar(&assetsSnapshot, "snapshot", "", "Read the pool snapshot from a JSON file")
	assetsCmd.Flags().StringVar(&assetsClass, "class", "all", "Asset class: all, tokens or nfts")
	assetsCmd.Flags().StringVar(&assetsSearch, "search", "", "Case-insensitive search text")
}
