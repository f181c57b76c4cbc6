package storage

import (
	"time"

	"github.com/shopspring/decimal"

	"poolcalc/internal/probability"
)

// Forecast is a persisted block-production forecast for one pool and epoch.
type Forecast struct {
	ID              int64
	PoolID          string
	Epoch           int
	EstimatedBlocks decimal.Decimal
	Distribution    probability.Distribution
	PeakBlocks      int
	PeakPct         decimal.Decimal
	CurrentLuck     string
	CreatedAt       time.Time
}

// Peak returns the most likely block count of d and its probability.
func Peak(d probability.Distribution) (int, decimal.Decimal) {
	best := -1
	var pct float64
	for _, p := range d {
		if best < 0 || p.ProbabilityPct > pct {
			best, pct = p.BlockCount, p.ProbabilityPct
		}
	}
	if best < 0 {
		return 0, decimal.Zero
	}
	return best, decimal.NewFromFloat(pct)
}
