package app

import (
	"context"
	"errors"
	"fmt"

	"poolcalc/internal/fetcher"
	"poolcalc/internal/service"
	"poolcalc/internal/summary"
)

// SimulateOptions describe a synthetic running epoch.
type SimulateOptions struct {
	PoolID          string
	Epoch           int
	BlocksMinted    int
	EstimatedBlocks float64
	EpochElapsed    float64
}

// SimulateAlert runs one evaluation over a synthetic snapshot so the alert
// channels can be checked end to end.
func (a *App) SimulateAlert(ctx context.Context, opts SimulateOptions) error {
	if !a.Config.Alerting.Enabled {
		return errors.New("alerting is not enabled")
	}

	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("no alert channel configured")
	}

	source := &staticSource{snap: fetcher.PoolSnapshot{
		PoolID:          opts.PoolID,
		Epoch:           opts.Epoch,
		EpochElapsed:    opts.EpochElapsed,
		EstimatedBlocks: opts.EstimatedBlocks,
		Detail: summary.PoolDetail{
			EpochBlocks:     opts.BlocksMinted,
			EstimatedBlocks: opts.EstimatedBlocks,
		},
	}}

	svc := service.New(a.Config, nil, source, nil, notifier, a.metrics, []string{opts.PoolID}, a.Logger)
	defer svc.Close()

	report, err := svc.EvaluatePool(ctx, opts.PoolID)
	if err != nil {
		return err
	}
	if !report.Alerted {
		return fmt.Errorf("luck %s%% did not trigger an alert (threshold %.2f%%, min elapsed %.2f)",
			report.CurrentLuck(), a.Config.Alerting.MinLuckPct, a.Config.Alerting.MinElapsed)
	}
	fmt.Fprintf(a.Out, "alert sent for %s (luck %s%%)\n", report.PoolID, report.CurrentLuck())
	return nil
}

type staticSource struct {
	snap fetcher.PoolSnapshot
}

func (s *staticSource) FetchSnapshot(ctx context.Context, poolID string) (fetcher.PoolSnapshot, error) {
	return s.snap, nil
}

var _ fetcher.SnapshotSource = (*staticSource)(nil)
