package app

import (
	"context"
	"errors"
	"time"
)

// Prune deletes forecasts created before opts.Before.
func (a *App) Prune(ctx context.Context, opts PruneOptions) error {
	before := opts.Before.UTC()
	if !before.Before(time.Now().UTC()) {
		return errors.New("--before must be in the past")
	}

	if opts.DryRun {
		a.Logger.Warn().Time("before", before).Msg("prune dry-run: nothing will be deleted")
		return nil
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database.dsn not configured; cannot prune")
	}
	defer closeStore()

	if err := store.DeleteForecastsBefore(ctx, before); err != nil {
		return err
	}

	a.Logger.Info().Time("before", before).Msg("old forecasts pruned")
	return nil
}
