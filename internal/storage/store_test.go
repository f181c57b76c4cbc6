package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"poolcalc/internal/config"
	"poolcalc/internal/probability"
)

func TestUnconfiguredStore(t *testing.T) {
	var s *Store
	ctx := context.Background()

	if _, err := s.UpsertForecast(ctx, Forecast{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := s.ListRecentForecasts(ctx, 5); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, _, err := s.TryAdvisoryLock(ctx, 1); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if err := s.DeleteForecastsBefore(ctx, time.Now()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	s.Close()
}

func TestOpenRequiresDSN(t *testing.T) {
	if _, err := Open(context.Background(), config.DatabaseConfig{}); err == nil {
		t.Fatal("empty dsn should fail")
	}
	if _, err := Open(context.Background(), config.DatabaseConfig{DSN: "::not a dsn::"}); err == nil {
		t.Fatal("malformed dsn should fail")
	}
}

func TestPeak(t *testing.T) {
	k, pct := Peak(probability.Compute(10))
	if k != 10 {
		t.Fatalf("expected peak at 10, got %d", k)
	}
	if !pct.Equal(decimal.RequireFromString("17.62")) {
		t.Fatalf("expected 17.62, got %s", pct)
	}

	k, pct = Peak(nil)
	if k != 0 || !pct.IsZero() {
		t.Fatalf("empty distribution should yield zero peak, got %d %s", k, pct)
	}
}
