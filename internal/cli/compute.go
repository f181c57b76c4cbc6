package cli

import (
	"github.com/spf13/cobra"

	"poolcalc/internal/app"
)

var computeCmd = &cobra.Command{
	Use:   "compute <request.json>...",
	Short: "Run wire-form calculation requests and print the replies as JSON lines",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Compute(cmd.Context(), app.ComputeOptions{Inputs: args})
	},
}
