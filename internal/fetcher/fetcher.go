package fetcher

import (
	"context"
	"time"

	"poolcalc/internal/assets"
	"poolcalc/internal/summary"
)

// EpochLength is the mainnet epoch duration (432000 one-second slots).
const EpochLength = 5 * 24 * time.Hour

// PoolSnapshot is everything the calculation workers need about one pool.
type PoolSnapshot struct {
	PoolID          string                `json:"pool_id"`
	Epoch           int                   `json:"epoch"`
	EpochStart      time.Time             `json:"epoch_start"`
	EpochElapsed    float64               `json:"epoch_elapsed"`
	EstimatedBlocks float64               `json:"estimated_blocks"`
	Detail          summary.PoolDetail    `json:"detail"`
	Rewards         []summary.EpochReward `json:"rewards"`
	MintedBlocks    []summary.DailyBlocks `json:"minted_blocks"`
	Assets          []assets.Record       `json:"assets"`
}

// ElapsedAt returns the fraction of the current epoch that has passed at now.
// An explicit EpochElapsed wins over EpochStart.
func (s PoolSnapshot) ElapsedAt(now time.Time) float64 {
	if s.EpochElapsed > 0 || s.EpochStart.IsZero() {
		return s.EpochElapsed
	}
	frac := float64(now.Sub(s.EpochStart)) / float64(EpochLength)
	switch {
	case frac < 0:
		return 0
	case frac > 1:
		return 1
	default:
		return frac
	}
}

// SnapshotSource retrieves pool snapshots from the explorer backend.
type SnapshotSource interface {
	FetchSnapshot(ctx context.Context, poolID string) (PoolSnapshot, error)
}
