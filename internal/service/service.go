package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"poolcalc/internal/alerting"
	"poolcalc/internal/config"
	"poolcalc/internal/fetcher"
	"poolcalc/internal/host"
	"poolcalc/internal/probability"
	"poolcalc/internal/scheduler"
	"poolcalc/internal/storage"
	"poolcalc/internal/summary"
	"poolcalc/internal/worker"
)

// Report is the outcome of one pool evaluation.
type Report struct {
	PoolID       string
	Epoch        int
	EpochElapsed float64
	Distribution probability.Distribution
	Performance  summary.PerformanceSeries
	Alerted      bool
}

// CurrentLuck is the running-epoch luck string ("-" when not computable).
func (r Report) CurrentLuck() string {
	if len(r.Performance.Luck) == 0 {
		return summary.NotComputable
	}
	return r.Performance.Luck[0]
}

// Service periodically forecasts block production for a set of pools.
type Service struct {
	scheduler *scheduler.Scheduler
	source    fetcher.SnapshotSource
	forecasts *host.Adapter
	perf      *host.Adapter
	store     storage.ForecastStore
	notifier  alerting.Notifier
	logger    zerolog.Logger

	pools      []string
	timeout    time.Duration
	minLuck    decimal.Decimal
	minElapsed float64
	channels   []string
	alertsOn   bool
	locker     storage.AdvisoryLocker
	lockKey    int64
	now        func() time.Time
}

// New constructs the watch service. Forecast and performance calculations
// each get their own adapter, and therefore their own worker.
func New(cfg *config.Config, sched *scheduler.Scheduler, source fetcher.SnapshotSource, store storage.ForecastStore, notifier alerting.Notifier, metrics *worker.Metrics, pools []string, logger zerolog.Logger) *Service {
	adapterOpts := host.Options{QueueSize: cfg.Worker.QueueSize, Metrics: metrics}

	var locker storage.AdvisoryLocker
	if l, ok := store.(storage.AdvisoryLocker); ok {
		locker = l
	}

	return &Service{
		scheduler:  sched,
		source:     source,
		forecasts:  host.New(adapterOpts, logger),
		perf:       host.New(adapterOpts, logger),
		store:      store,
		notifier:   notifier,
		logger:     logger.With().Str("component", "service").Logger(),
		pools:      pools,
		timeout:    cfg.Worker.RequestTimeout,
		minLuck:    decimal.NewFromFloat(cfg.Alerting.MinLuckPct),
		minElapsed: cfg.Alerting.MinElapsed,
		channels:   cfg.Alerting.Channels,
		alertsOn:   cfg.Alerting.Enabled,
		locker:     locker,
		lockKey:    cfg.Scheduler.AdvisoryLockKey,
		now:        time.Now,
	}
}

// Close terminates the service workers.
func (s *Service) Close() {
	s.forecasts.Close()
	s.perf.Close()
}

// Run begins the scheduled loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.ProcessBucket)
}

// ProcessBucket evaluates every configured pool once.
func (s *Service) ProcessBucket(ctx context.Context, bucket time.Time) error {
	unlock, proceed, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	if !proceed {
		s.logger.Debug().Time("bucket", bucket).Msg("skip bucket because advisory lock held elsewhere")
		return nil
	}
	if unlock != nil {
		defer unlock()
	}

	failed := 0
	for _, poolID := range s.pools {
		if _, err := s.EvaluatePool(ctx, poolID); err != nil {
			failed++
			s.logger.Error().Err(err).Str("pool_id", poolID).Time("bucket", bucket).Msg("pool evaluation failed")
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d pools failed", failed, len(s.pools))
	}
	return nil
}

// EvaluatePool fetches a snapshot, runs the forecast and performance
// calculations concurrently, persists the forecast and raises a luck alert
// when warranted.
func (s *Service) EvaluatePool(ctx context.Context, poolID string) (Report, error) {
	snap, err := s.source.FetchSnapshot(ctx, poolID)
	if err != nil {
		return Report{}, fmt.Errorf("fetch snapshot: %w", err)
	}

	report := Report{PoolID: snap.PoolID, Epoch: snap.Epoch, EpochElapsed: snap.ElapsedAt(s.now())}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	g, gctx := errgroup.WithContext(callCtx)
	g.Go(func() error {
		resp, err := s.forecasts.Call(gctx, worker.EstimatedBlocksRequest{EstimatedBlocks: snap.EstimatedBlocks})
		if err != nil {
			return fmt.Errorf("forecast: %w", err)
		}
		report.Distribution = resp.(worker.EstimatedBlocksResponse).Distribution
		return nil
	})
	g.Go(func() error {
		resp, err := s.perf.Call(gctx, worker.PerformanceRequest{Detail: snap.Detail, EpochElapsed: report.EpochElapsed})
		if err != nil {
			return fmt.Errorf("performance: %w", err)
		}
		report.Performance = resp.(worker.PerformanceResponse).PerformanceSeries
		return nil
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	if s.store != nil {
		peakBlocks, peakPct := storage.Peak(report.Distribution)
		_, err := s.store.UpsertForecast(ctx, storage.Forecast{
			PoolID:          report.PoolID,
			Epoch:           report.Epoch,
			EstimatedBlocks: decimal.NewFromFloat(snap.EstimatedBlocks),
			Distribution:    report.Distribution,
			PeakBlocks:      peakBlocks,
			PeakPct:         peakPct,
			CurrentLuck:     report.CurrentLuck(),
		})
		if err != nil {
			s.logger.Error().Err(err).Str("pool_id", report.PoolID).Msg("failed to persist forecast")
		}
	}

	s.logger.Info().Str("pool_id", report.PoolID).
		Int("epoch", report.Epoch).
		Float64("estimated_blocks", snap.EstimatedBlocks).
		Str("luck", report.CurrentLuck()).
		Msg("pool evaluated")

	report.Alerted = s.maybeAlert(ctx, snap, report)
	return report, nil
}

func (s *Service) maybeAlert(ctx context.Context, snap fetcher.PoolSnapshot, report Report) bool {
	if !s.alertsOn || s.notifier == nil || report.EpochElapsed < s.minElapsed {
		return false
	}
	luck, err := decimal.NewFromString(report.CurrentLuck())
	if err != nil || !luck.LessThan(s.minLuck) {
		return false
	}

	note := alerting.Notification{
		PoolID:          report.PoolID,
		Epoch:           report.Epoch,
		EpochElapsed:    report.EpochElapsed,
		BlocksMinted:    snap.Detail.EpochBlocks,
		EstimatedBlocks: snap.Detail.EstimatedBlocks,
		LuckPct:         luck,
		ThresholdPct:    s.minLuck,
		Channels:        s.channels,
	}
	if err := s.notifier.Notify(ctx, note); err != nil {
		s.logger.Error().Err(err).Str("pool_id", report.PoolID).Msg("failed to dispatch alert")
		return false
	}
	return true
}

func (s *Service) acquireLock(ctx context.Context) (func(), bool, error) {
	if s.lockKey == 0 || s.locker == nil {
		return nil, true, nil
	}
	unlock, acquired, err := s.locker.TryAdvisoryLock(ctx, s.lockKey)
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}
