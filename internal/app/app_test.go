package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"poolcalc/internal/config"
	"poolcalc/internal/probability"
	"poolcalc/internal/storage"
)

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{
		Worker: config.WorkerConfig{QueueSize: 4, RequestTimeout: 5 * time.Second},
		Export: config.ExportConfig{ChartWidth: 640, ChartHeight: 360},
	}
	a := NewApp(cfg, zerolog.Nop())
	out := &bytes.Buffer{}
	a.Out = out
	return a, out
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const snapshotJSON = `{
  "pool_id": "pool1abc",
  "epoch": 501,
  "epoch_elapsed": 0.5,
  "estimated_blocks": 10,
  "detail": {
    "live_delegators": 12,
    "live_stake": "5000000000",
    "live_pledge": "100000000",
    "epoch_block_cnt": 4,
    "estimated_blocks": 10,
    "history": [
      {"epoch_no": 500, "delegator_cnt": 11, "active_stake": "4000000000", "block_cnt": 9, "luck": 0.9, "epoch_ros": 3.1}
    ]
  },
  "rewards": [
    {"epoch_no": 501, "leader_lovelace": "1", "leader_pct": 1, "member_lovelace": "1", "member_pct": 1},
    {"epoch_no": 500, "leader_lovelace": "1", "leader_pct": 1, "member_lovelace": "1", "member_pct": 1},
    {"epoch_no": 499, "leader_lovelace": "340000000", "leader_pct": 1.5, "member_lovelace": "2500000000", "member_pct": 3.25},
    {"epoch_no": 498, "leader_lovelace": "350000000", "leader_pct": 1.6, "member_lovelace": "2600000000", "member_pct": 3.3}
  ],
  "minted_blocks": [
    {"block": {"count": 3, "avg_tx_count": 12.345}, "date": "2024-05-01"}
  ],
  "assets": [
    {"name": "7eae28af2208be856f7a119668ae52a49b73725e326dc16579dcc373504154415445", "quantity": "1"},
    {"name": "aa", "quantity": "500", "registry": {"ticker": "TKN", "name": "Token", "decimals": 0}, "market": {"price": "2"}}
  ]
}`

func TestComputeWritesRepliesInInputOrder(t *testing.T) {
	a, out := newTestApp(t)
	single := writeFile(t, "single.json", `{"type":"ESTIMATED_BLOCKS","estimatedBlocks":0}`)
	batch := writeFile(t, "batch.json", `[
		{"type":"MINTED_BLOCKS","blocks":[{"block":{"count":5,"avg_tx_count":2},"date":"2024-01-31"}]},
		{"type":"FILTER_ASSETS","assets":[{"name":"aa","quantity":"1"},{"name":"bb","quantity":"7"}],"classFilter":"tokens","searchText":""}
	]`)

	require.NoError(t, a.Compute(context.Background(), ComputeOptions{Inputs: []string{single, batch}}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.Equal(t, "ESTIMATED_BLOCKS", first["type"])

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	require.Equal(t, "MINTED_BLOCKS", second["type"])
	require.Equal(t, []any{"31.01.2024"}, second["dates"])

	var third map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &third))
	require.Equal(t, "FILTER_RESULT", third["type"])
	require.Len(t, third["assets"], 1)
}

func TestComputeRejectsUnknownType(t *testing.T) {
	a, _ := newTestApp(t)
	path := writeFile(t, "bad.json", `{"type":"NOPE"}`)
	require.Error(t, a.Compute(context.Background(), ComputeOptions{Inputs: []string{path}}))
}

func TestForecastPrintsAndExports(t *testing.T) {
	a, out := newTestApp(t)
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "out", "dist.csv")

	err := a.Forecast(context.Background(), ForecastOptions{EstimatedBlocks: 10, CSVPath: csvPath})
	require.NoError(t, err)
	require.Contains(t, out.String(), "17.62")

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Equal(t, "block_count,probability_pct,cumulative_pct", lines[0])
	require.Contains(t, lines, "10,17.62,58.81")
}

func TestForecastFromSnapshot(t *testing.T) {
	a, out := newTestApp(t)
	path := writeFile(t, "snap.json", snapshotJSON)

	require.NoError(t, a.Forecast(context.Background(), ForecastOptions{PoolID: "pool1abc", SnapshotFile: path}))
	require.Contains(t, out.String(), "17.62")
}

func TestForecastPersistNeedsDatabase(t *testing.T) {
	a, _ := newTestApp(t)
	err := a.Forecast(context.Background(), ForecastOptions{EstimatedBlocks: 1, PoolID: "pool1abc", Persist: true})
	require.ErrorContains(t, err, "database not configured")
}

func TestDistributionPNGNeedsTwoPoints(t *testing.T) {
	a, _ := newTestApp(t)
	err := a.writeDistributionPNG(filepath.Join(t.TempDir(), "d.png"), probability.Compute(0))
	require.ErrorIs(t, err, errTooFewPoints)
}

func TestDistributionPNGRenders(t *testing.T) {
	a, _ := newTestApp(t)
	path := filepath.Join(t.TempDir(), "d.png")
	require.NoError(t, a.writeDistributionPNG(path, probability.Compute(10)))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Positive(t, info.Size())
}

func TestFilterAssetsFromSnapshot(t *testing.T) {
	a, out := newTestApp(t)
	path := writeFile(t, "snap.json", snapshotJSON)

	err := a.FilterAssets(context.Background(), AssetsOptions{SnapshotFile: path, Class: "nfts"})
	require.NoError(t, err)
	require.Contains(t, out.String(), "PATATE")
	require.NotContains(t, out.String(), "TKN")
}

func TestFilterAssetsRejectsUnknownClass(t *testing.T) {
	a, _ := newTestApp(t)
	require.Error(t, a.FilterAssets(context.Background(), AssetsOptions{Input: "unused", Class: "coins"}))
}

func TestSummarizeFromSnapshot(t *testing.T) {
	a, out := newTestApp(t)
	path := writeFile(t, "snap.json", snapshotJSON)

	require.NoError(t, a.Summarize(context.Background(), SummarizeOptions{SnapshotFile: path}))
	text := out.String()
	require.Contains(t, text, "Pool pool1abc, epoch 501 (50% elapsed)")
	require.Contains(t, text, "80.00")
	require.Contains(t, text, "90.00")
	require.Contains(t, text, "340.00")
	require.Contains(t, text, "01.05.2024")
	require.Contains(t, text, "12.35")
}

func TestPrintForecastsEmpty(t *testing.T) {
	a, out := newTestApp(t)
	require.NoError(t, a.printForecasts(nil))
	require.Equal(t, "no forecasts found\n", out.String())
}

func TestPrintForecasts(t *testing.T) {
	a, out := newTestApp(t)
	dist := probability.Compute(10)
	peak, pct := storage.Peak(dist)
	require.NoError(t, a.printForecasts([]storage.Forecast{{
		PoolID:      "pool1\tabc",
		Epoch:       501,
		PeakBlocks:  peak,
		PeakPct:     pct,
		CurrentLuck: "80.00",
		CreatedAt:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}}))
	require.Contains(t, out.String(), "2024-05-01T10:00:00Z")
	require.Contains(t, out.String(), "pool1 abc")
	require.Contains(t, out.String(), "17.62")
}

func TestWatchNeedsPools(t *testing.T) {
	a, _ := newTestApp(t)
	require.ErrorContains(t, a.Watch(context.Background(), WatchOptions{}), "no pools")
}

func TestSimulateAlertNeedsAlerting(t *testing.T) {
	a, _ := newTestApp(t)
	require.Error(t, a.SimulateAlert(context.Background(), SimulateOptions{PoolID: "pool1abc", EstimatedBlocks: 10, EpochElapsed: 0.5}))
}

func TestPruneRejectsFuture(t *testing.T) {
	a, _ := newTestApp(t)
	require.Error(t, a.Prune(context.Background(), PruneOptions{Before: time.Now().Add(time.Hour)}))
}
