package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"poolcalc/internal/alerting"
	"poolcalc/internal/config"
	"poolcalc/internal/fetcher"
	"poolcalc/internal/host"
	"poolcalc/internal/scheduler"
	"poolcalc/internal/service"
	"poolcalc/internal/storage"
	"poolcalc/internal/worker"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Out    io.Writer

	registry *prometheus.Registry
	metrics  *worker.Metrics
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	a := &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger(), Out: os.Stdout}
	if cfg.Worker.Metrics {
		a.registry = prometheus.NewRegistry()
		a.metrics = worker.NewMetrics(a.registry)
	}
	return a
}

// newAdapter returns a host adapter for one consumer. Callers own Close.
func (a *App) newAdapter() *host.Adapter {
	return host.New(host.Options{
		QueueSize: a.Config.Worker.QueueSize,
		Metrics:   a.metrics,
	}, a.Logger)
}

// call runs a single request on a fresh adapter bounded by worker.request_timeout.
func (a *App) call(ctx context.Context, req worker.Request) (worker.Response, error) {
	adapter := a.newAdapter()
	defer adapter.Close()

	ctx, cancel := context.WithTimeout(ctx, a.Config.Worker.RequestTimeout)
	defer cancel()
	return adapter.Call(ctx, req)
}

// newSource picks the snapshot source. An explicit file wins over the configured explorer.
func (a *App) newSource(snapshotFile string) (fetcher.SnapshotSource, error) {
	if snapshotFile == "" {
		snapshotFile = a.Config.Source.SnapshotFile
	}
	if snapshotFile != "" {
		return fetcher.NewFileSource(snapshotFile), nil
	}
	if a.Config.Source.BaseURL == "" {
		return nil, errors.New("no snapshot source: set source.base_url or pass --snapshot")
	}
	return fetcher.NewHTTPSource(fetcher.HTTPOptions{
		BaseURL:           a.Config.Source.BaseURL,
		Timeout:           a.Config.Source.RequestTimeout,
		RequestsPerSecond: a.Config.Source.RequestsPerSecond,
		UserAgent:         a.Config.Source.UserAgent,
	}, a.Logger), nil
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	store, err := storage.Open(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// serveMetrics exposes the worker registry until ctx is done.
func (a *App) serveMetrics(ctx context.Context) {
	if a.registry == nil || a.Config.Worker.MetricsAddr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: a.Config.Worker.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		a.Logger.Info().Str("addr", srv.Addr).Msg("serving worker metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

// Watch executes the long-running forecasting service.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pools := opts.Pools
	if len(pools) == 0 {
		pools = a.Config.Source.Pools
	}
	if len(pools) == 0 {
		return errors.New("no pools to watch: pass --pool or set source.pools")
	}

	source, err := a.newSource(opts.SnapshotFile)
	if err != nil {
		return err
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; persistence disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	sched := scheduler.New(scheduler.Options{
		Interval:       a.Config.Scheduler.Interval,
		AlignToStart:   a.Config.Scheduler.AlignToBucket,
		StartupDelay:   a.Config.Scheduler.StartupDelay,
		RunImmediately: opts.RunImmediately,
	}, a.Logger)

	var forecastStore storage.ForecastStore
	if store != nil {
		forecastStore = store
	}

	a.serveMetrics(ctx)

	svc := service.New(a.Config, sched, source, forecastStore, a.newNotifier(), a.metrics, pools, a.Logger)
	defer svc.Close()

	a.Logger.Info().Strs("pools", pools).Msg("starting forecast service")
	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("forecast service stopped")
	return nil
}

// WatchOptions configure the watch command.
type WatchOptions struct {
	Pools          []string
	SnapshotFile   string
	RunImmediately bool
}

// ForecastOptions configure the forecast command.
type ForecastOptions struct {
	EstimatedBlocks float64
	PoolID          string
	Epoch           int
	SnapshotFile    string
	CSVPath         string
	PNGPath         string
	Persist         bool
}

// ComputeOptions configure the compute command.
type ComputeOptions struct {
	Inputs []string
}

// AssetsOptions configure the assets command.
type AssetsOptions struct {
	Input        string
	PoolID       string
	SnapshotFile string
	Class        string
	Search       string
}

// SummarizeOptions configure the summarize command.
type SummarizeOptions struct {
	PoolID       string
	SnapshotFile string
	PNGPath      string
}

// ShowOptions configure the show command.
type ShowOptions struct {
	PoolID string
	Limit  int
}

// PruneOptions configure the prune command.
type PruneOptions struct {
	Before time.Time
	DryRun bool
}
