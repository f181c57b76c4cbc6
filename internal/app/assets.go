package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"poolcalc/internal/assets"
	"poolcalc/internal/worker"
)

// FilterAssets filters and ranks an asset list read from a JSON file or a
// pool snapshot, then prints it.
func (a *App) FilterAssets(ctx context.Context, opts AssetsOptions) error {
	class, err := assets.ParseClass(opts.Class)
	if err != nil {
		return err
	}

	records, err := a.loadAssets(ctx, opts)
	if err != nil {
		return err
	}

	resp, err := a.call(ctx, worker.FilterAssetsRequest{
		Assets:      records,
		ClassFilter: class,
		SearchText:  opts.Search,
	})
	if err != nil {
		return err
	}
	filtered := resp.(worker.FilterResultResponse).Assets

	if len(filtered) == 0 {
		fmt.Fprintln(a.Out, "no assets matched")
		return nil
	}

	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Name\tTicker\tFingerprint\tQuantity\tValue")
	for _, r := range filtered {
		ticker := ""
		if r.Registry != nil {
			ticker = r.Registry.Ticker
		}
		fingerprint, err := assets.Fingerprint(r.Name)
		if err != nil {
			fingerprint = "-"
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
			sanitizeInline(assets.DisplayName(r.Name)),
			ticker,
			fingerprint,
			r.Quantity.String(),
			r.Value().StringFixed(2),
		)
	}
	return writer.Flush()
}

func (a *App) loadAssets(ctx context.Context, opts AssetsOptions) ([]assets.Record, error) {
	if opts.Input != "" {
		data, err := os.ReadFile(opts.Input)
		if err != nil {
			return nil, fmt.Errorf("read assets: %w", err)
		}
		var records []assets.Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode assets %s: %w", opts.Input, err)
		}
		return records, nil
	}

	if opts.PoolID == "" && opts.SnapshotFile == "" {
		return nil, errors.New("pass --input, --snapshot or --pool")
	}
	source, err := a.newSource(opts.SnapshotFile)
	if err != nil {
		return nil, err
	}
	snap, err := source.FetchSnapshot(ctx, opts.PoolID)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	return snap.Assets, nil
}
