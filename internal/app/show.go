package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"poolcalc/internal/storage"
)

// Show prints recent forecasts, optionally for one pool.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show forecasts")
	}
	if closeStore != nil {
		defer closeStore()
	}

	var forecasts []storage.Forecast
	if opts.PoolID != "" {
		forecasts, err = store.ListPoolForecasts(ctx, opts.PoolID, opts.Limit)
	} else {
		forecasts, err = store.ListRecentForecasts(ctx, opts.Limit)
	}
	if err != nil {
		return err
	}

	return a.printForecasts(forecasts)
}

func (a *App) printForecasts(forecasts []storage.Forecast) error {
	if len(forecasts) == 0 {
		fmt.Fprintln(a.Out, "no forecasts found")
		return nil
	}

	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tPool\tEpoch\tEstimated\tPeak\tPeak%\tLuck%")
	for _, f := range forecasts {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%d\t%s\t%d\t%s\t%s\n",
			f.CreatedAt.UTC().Format(time.RFC3339),
			sanitizeInline(f.PoolID),
			f.Epoch,
			f.EstimatedBlocks.StringFixed(2),
			f.PeakBlocks,
			f.PeakPct.StringFixed(2),
			f.CurrentLuck,
		)
	}

	return writer.Flush()
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	cleaned = strings.ReplaceAll(cleaned, "\t", " ")
	return cleaned
}
