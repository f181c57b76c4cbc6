package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"poolcalc/internal/app"
)

var simulateOpts app.SimulateOptions

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "Evaluate a synthetic epoch and send a luck alert",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateOpts.PoolID == "" {
			return errors.New("--pool must be provided")
		}
		if simulateOpts.EstimatedBlocks <= 0 {
			return errors.New("--estimate must be greater than 0")
		}
		if simulateOpts.EpochElapsed <= 0 || simulateOpts.EpochElapsed > 1 {
			return errors.New("--elapsed must be within (0,1]")
		}
		return getApp().SimulateAlert(cmd.Context(), simulateOpts)
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateOpts.PoolID, "pool", "", "Pool id")
	simulateCmd.Flags().IntVar(&simulateOpts.Epoch, "epoch", 0, "Epoch number")
	simulateCmd.Flags().IntVar(&simulateOpts.BlocksMinted, "blocks", 0, "Blocks minted so far")
	simulateCmd.Flags().Float64Var(&simulateOpts.EstimatedBlocks, "estimate", 0, "Estimated blocks for the epoch")
	simulateCmd.Flags().Float64Var(&simulateOpts.EpochElapsed, "elapsed", 0.5, "Elapsed epoch fraction")
}
