package storage

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")

	//go:embed schema.sql
	schemaSQL string
)

const (
	upsertForecastSQL = `INSERT INTO forecasts (
        pool_id,
        epoch,
        estimated_blocks,
        distribution,
        peak_blocks,
        peak_pct,
        current_luck
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7
    )
    ON CONFLICT (pool_id, epoch) DO UPDATE
    SET
        estimated_blocks = EXCLUDED.estimated_blocks,
        distribution     = EXCLUDED.distribution,
        peak_blocks      = EXCLUDED.peak_blocks,
        peak_pct         = EXCLUDED.peak_pct,
        current_luck     = EXCLUDED.current_luck,
        created_at       = now()
    RETURNING id, created_at;`

	listRecentForecastsSQL = `SELECT
        id,
        pool_id,
        epoch,
        estimated_blocks::text,
        distribution,
        peak_blocks,
        peak_pct::text,
        current_luck,
        created_at
    FROM forecasts
    ORDER BY created_at DESC
    LIMIT $1;`

	listPoolForecastsSQL = `SELECT
        id,
        pool_id,
        epoch,
        estimated_blocks::text,
        distribution,
        peak_blocks,
        peak_pct::text,
        current_luck,
        created_at
    FROM forecasts
    WHERE pool_id = $1
    ORDER BY epoch DESC
    LIMIT $2;`

	deleteForecastsBeforeSQL = `DELETE FROM forecasts WHERE created_at < $1;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// ForecastStore defines forecast persistence.
type ForecastStore interface {
	UpsertForecast(ctx context.Context, f Forecast) (Forecast, error)
	ListRecentForecasts(ctx context.Context, limit int) ([]Forecast, error)
	ListPoolForecasts(ctx context.Context, poolID string, limit int) ([]Forecast, error)
	DeleteForecastsBefore(ctx context.Context, olderThan time.Time) error
}

// AdvisoryLocker exposes advisory lock helpers.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// Store implements ForecastStore on PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// EnsureSchema creates the forecasts table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, _ = conn.Exec(ctxUnlock, advisoryUnlockSQL, key)
		conn.Release()
	}
	return unlock, true, nil
}

// UpsertForecast stores f, replacing any forecast for the same pool and epoch.
func (s *Store) UpsertForecast(ctx context.Context, f Forecast) (Forecast, error) {
	pool, err := s.getPool()
	if err != nil {
		return Forecast{}, err
	}

	dist, err := json.Marshal(f.Distribution)
	if err != nil {
		return Forecast{}, fmt.Errorf("encode distribution: %w", err)
	}

	luck := f.CurrentLuck
	if luck == "" {
		luck = "-"
	}

	row := pool.QueryRow(ctx, upsertForecastSQL,
		f.PoolID,
		f.Epoch,
		f.EstimatedBlocks.String(),
		dist,
		f.PeakBlocks,
		f.PeakPct.String(),
		luck,
	)
	if err := row.Scan(&f.ID, &f.CreatedAt); err != nil {
		return Forecast{}, fmt.Errorf("upsert forecast: %w", err)
	}
	f.CurrentLuck = luck
	return f, nil
}

// ListRecentForecasts lists forecasts across pools, newest first.
func (s *Store) ListRecentForecasts(ctx context.Context, limit int) ([]Forecast, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentForecastsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent forecasts: %w", queryErr)
	}
	return collectForecasts(rows, limit)
}

// ListPoolForecasts lists the forecasts of one pool, newest epoch first.
func (s *Store) ListPoolForecasts(ctx context.Context, poolID string, limit int) ([]Forecast, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listPoolForecastsSQL, poolID, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list pool forecasts: %w", queryErr)
	}
	return collectForecasts(rows, limit)
}

// DeleteForecastsBefore prunes old forecasts.
func (s *Store) DeleteForecastsBefore(ctx context.Context, olderThan time.Time) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, deleteForecastsBeforeSQL, olderThan); execErr != nil {
		return fmt.Errorf("delete forecasts before: %w", execErr)
	}
	return nil
}

func collectForecasts(rows pgx.Rows, limit int) ([]Forecast, error) {
	defer rows.Close()

	forecasts := make([]Forecast, 0, limit)
	for rows.Next() {
		f, scanErr := scanForecast(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		forecasts = append(forecasts, f)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return forecasts, nil
}

func scanForecast(rows pgx.Rows) (Forecast, error) {
	var (
		f            Forecast
		estimatedStr string
		peakStr      string
		dist         []byte
	)

	if err := rows.Scan(
		&f.ID,
		&f.PoolID,
		&f.Epoch,
		&estimatedStr,
		&dist,
		&f.PeakBlocks,
		&peakStr,
		&f.CurrentLuck,
		&f.CreatedAt,
	); err != nil {
		return Forecast{}, err
	}

	var err error
	if f.EstimatedBlocks, err = decimal.NewFromString(estimatedStr); err != nil {
		return Forecast{}, fmt.Errorf("parse estimated blocks: %w", err)
	}
	if f.PeakPct, err = decimal.NewFromString(peakStr); err != nil {
		return Forecast{}, fmt.Errorf("parse peak pct: %w", err)
	}
	if err := json.Unmarshal(dist, &f.Distribution); err != nil {
		return Forecast{}, fmt.Errorf("decode distribution: %w", err)
	}
	return f, nil
}

var (
	_ ForecastStore  = (*Store)(nil)
	_ AdvisoryLocker = (*Store)(nil)
)
