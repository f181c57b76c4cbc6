package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"poolcalc/internal/host"
	"poolcalc/internal/summary"
	"poolcalc/internal/worker"
)

// poolSummary collects the series of every pool view. Epochs labels the
// performance rows; index 0 is the running epoch.
type poolSummary struct {
	Minted      summary.MintedSeries
	Rewards     summary.RewardSeries
	Performance summary.PerformanceSeries
	Epochs      []int
}

// Summarize renders the minted, rewards and performance views of a pool.
// Each view owns its adapter, so the three calculations run in parallel.
func (a *App) Summarize(ctx context.Context, opts SummarizeOptions) error {
	if opts.PoolID == "" && opts.SnapshotFile == "" {
		return errors.New("pass --pool or --snapshot")
	}
	source, err := a.newSource(opts.SnapshotFile)
	if err != nil {
		return err
	}
	snap, err := source.FetchSnapshot(ctx, opts.PoolID)
	if err != nil {
		return fmt.Errorf("fetch snapshot: %w", err)
	}

	views := [3]*host.Adapter{a.newAdapter(), a.newAdapter(), a.newAdapter()}
	defer func() {
		for _, v := range views {
			v.Close()
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, a.Config.Worker.RequestTimeout)
	defer cancel()

	elapsed := snap.ElapsedAt(time.Now())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := views[0].Call(gctx, worker.MintedBlocksRequest{Blocks: snap.MintedBlocks})
		return err
	})
	g.Go(func() error {
		_, err := views[1].Call(gctx, worker.PoolRewardsRequest{Rewards: snap.Rewards, CurrentEpoch: snap.Epoch})
		return err
	})
	g.Go(func() error {
		_, err := views[2].Call(gctx, worker.PerformanceRequest{Detail: snap.Detail, EpochElapsed: elapsed})
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	out := poolSummary{Epochs: []int{snap.Epoch}}
	for _, h := range snap.Detail.History {
		out.Epochs = append(out.Epochs, h.Epoch)
	}
	out.Minted, _ = views[0].MintedSeries()
	out.Rewards, _ = views[1].RewardSeries()
	out.Performance, _ = views[2].PerformanceSeries()

	fmt.Fprintf(a.Out, "Pool %s, epoch %d (%.0f%% elapsed)\n\n", snap.PoolID, snap.Epoch, elapsed*100)
	if err := a.printSummary(out); err != nil {
		return err
	}

	if opts.PNGPath != "" {
		return a.writeRewardsPNG(opts.PNGPath, out.Rewards)
	}
	return nil
}

func (a *App) printSummary(s poolSummary) error {
	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)

	fmt.Fprintf(writer, "Live pledge (ADA)\t%s\n\n", s.Performance.CurrentPledge)

	fmt.Fprintln(writer, "Epoch\tDelegators\tActive stake (ADA)\tBlocks\tLuck%\tROS%")
	for i := range s.Performance.Luck {
		label := "current"
		if i > 0 && i < len(s.Epochs) {
			label = strconv.Itoa(s.Epochs[i])
		}
		fmt.Fprintf(writer, "%s\t%d\t%s\t%d\t%s\t%s\n",
			label,
			s.Performance.Delegators[i],
			s.Performance.ActiveStake[i],
			s.Performance.Blocks[i],
			s.Performance.Luck[i],
			s.Performance.RewardPct[i],
		)
	}
	fmt.Fprintln(writer)

	fmt.Fprintln(writer, "Epoch\tLeader (ADA)\tLeader%\tMembers (ADA)\tMembers%")
	for i, epoch := range s.Rewards.Epochs {
		fmt.Fprintf(writer, "%d\t%s\t%s\t%s\t%s\n",
			epoch,
			s.Rewards.LeaderADA[i],
			s.Rewards.LeaderPct[i],
			s.Rewards.MemberADA[i],
			s.Rewards.MemberPct[i],
		)
	}
	fmt.Fprintln(writer)

	fmt.Fprintln(writer, "Date\tBlocks\tAvg txs")
	for i, date := range s.Minted.Dates {
		fmt.Fprintf(writer, "%s\t%d\t%s\n", date, s.Minted.MintedBlocks[i], s.Minted.TxCounts[i])
	}

	return writer.Flush()
}
