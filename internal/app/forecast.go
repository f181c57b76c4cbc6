package app

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"poolcalc/internal/probability"
	"poolcalc/internal/storage"
	"poolcalc/internal/summary"
	"poolcalc/internal/worker"
)

// Forecast computes the block distribution for an estimate, prints it and
// optionally exports or persists it. With a pool id and no explicit estimate
// the estimate comes from the pool snapshot.
func (a *App) Forecast(ctx context.Context, opts ForecastOptions) error {
	if opts.EstimatedBlocks == 0 && opts.PoolID != "" {
		source, err := a.newSource(opts.SnapshotFile)
		if err != nil {
			return err
		}
		snap, err := source.FetchSnapshot(ctx, opts.PoolID)
		if err != nil {
			return fmt.Errorf("fetch snapshot: %w", err)
		}
		opts.EstimatedBlocks = snap.EstimatedBlocks
		if opts.Epoch == 0 {
			opts.Epoch = snap.Epoch
		}
	}
	if opts.EstimatedBlocks < 0 {
		return errors.New("estimated blocks cannot be negative")
	}

	resp, err := a.call(ctx, worker.EstimatedBlocksRequest{EstimatedBlocks: opts.EstimatedBlocks})
	if err != nil {
		return err
	}
	dist := resp.(worker.EstimatedBlocksResponse).Distribution

	if err := a.printDistribution(dist); err != nil {
		return err
	}

	if opts.CSVPath != "" {
		if err := writeDistributionCSV(opts.CSVPath, dist); err != nil {
			return err
		}
	}
	if opts.PNGPath != "" {
		if err := a.writeDistributionPNG(opts.PNGPath, dist); err != nil {
			return err
		}
	}

	if opts.Persist {
		return a.persistForecast(ctx, opts, dist)
	}
	return nil
}

func (a *App) printDistribution(dist probability.Distribution) error {
	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(writer, "Blocks\tProbability%\tCumulative%\t")
	for _, p := range dist {
		fmt.Fprintf(writer, "%d\t%.2f\t%.2f\t\n", p.BlockCount, p.ProbabilityPct, p.CumulativePct)
	}
	return writer.Flush()
}

func (a *App) persistForecast(ctx context.Context, opts ForecastOptions, dist probability.Distribution) error {
	if opts.PoolID == "" {
		return errors.New("--pool is required to persist a forecast")
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot persist forecast")
	}
	defer closeStore()

	peakBlocks, peakPct := storage.Peak(dist)
	saved, err := store.UpsertForecast(ctx, storage.Forecast{
		PoolID:          opts.PoolID,
		Epoch:           opts.Epoch,
		EstimatedBlocks: decimal.NewFromFloat(opts.EstimatedBlocks),
		Distribution:    dist,
		PeakBlocks:      peakBlocks,
		PeakPct:         peakPct,
		CurrentLuck:     summary.NotComputable,
	})
	if err != nil {
		return err
	}

	a.Logger.Info().Int64("id", saved.ID).Str("pool_id", saved.PoolID).Int("epoch", saved.Epoch).Msg("forecast persisted")
	return nil
}
