package summary

import (
	"math"

	"github.com/shopspring/decimal"
)

// NotComputable marks a value that cannot be derived from the live fields.
const NotComputable = "-"

// EpochPerformance is one settled epoch of pool history. Luck is a ratio
// (1.0 means exactly as many blocks as expected).
type EpochPerformance struct {
	Epoch       int             `json:"epoch_no"`
	Delegators  int             `json:"delegator_cnt"`
	ActiveStake decimal.Decimal `json:"active_stake"`
	BlockCount  int             `json:"block_cnt"`
	Luck        float64         `json:"luck"`
	RewardPct   float64         `json:"epoch_ros"`
}

// PoolDetail carries the live aggregates of the running epoch plus history.
type PoolDetail struct {
	LiveDelegators  int                `json:"live_delegators"`
	LiveStake       decimal.Decimal    `json:"live_stake"`
	LivePledge      decimal.Decimal    `json:"live_pledge"`
	EpochBlocks     int                `json:"epoch_block_cnt"`
	EstimatedBlocks float64            `json:"estimated_blocks"`
	History         []EpochPerformance `json:"history"`
}

// PerformanceSeries holds index-aligned series for the performance chart.
// Index 0 is the running epoch.
type PerformanceSeries struct {
	Delegators    []int    `json:"delegators"`
	Luck          []string `json:"luck"`
	Blocks        []int    `json:"blocks"`
	ActiveStake   []string `json:"activeStake"`
	RewardPct     []string `json:"rewardPct"`
	CurrentPledge string   `json:"currentPledge"`
}

// SummarizePerformance prepends a record for the running epoch, built from the
// live fields, to the historical series.
//
// The running-epoch luck is already a percentage and is only rounded, while
// historical luck is a ratio and is scaled by 100 before rounding.
func SummarizePerformance(detail PoolDetail, epochElapsed float64) PerformanceSeries {
	size := len(detail.History) + 1
	out := PerformanceSeries{
		Delegators:    make([]int, 0, size),
		Luck:          make([]string, 0, size),
		Blocks:        make([]int, 0, size),
		ActiveStake:   make([]string, 0, size),
		RewardPct:     make([]string, 0, size),
		CurrentPledge: lovelaceToADA(detail.LivePledge),
	}

	out.Delegators = append(out.Delegators, detail.LiveDelegators)
	out.Luck = append(out.Luck, currentLuck(detail, epochElapsed))
	out.Blocks = append(out.Blocks, detail.EpochBlocks)
	out.ActiveStake = append(out.ActiveStake, lovelaceToADA(detail.LiveStake))
	out.RewardPct = append(out.RewardPct, NotComputable)

	for _, epoch := range detail.History {
		out.Delegators = append(out.Delegators, epoch.Delegators)
		out.Luck = append(out.Luck, fixed2(epoch.Luck*100))
		out.Blocks = append(out.Blocks, epoch.BlockCount)
		out.ActiveStake = append(out.ActiveStake, lovelaceToADA(epoch.ActiveStake))
		out.RewardPct = append(out.RewardPct, fixed2(epoch.RewardPct))
	}
	return out
}

// currentLuck prorates the blocks minted so far against the share of the
// estimate that should have been reached by now.
func currentLuck(detail PoolDetail, epochElapsed float64) string {
	if detail.EstimatedBlocks == 0 || epochElapsed == 0 {
		return NotComputable
	}
	luck := float64(detail.EpochBlocks) / detail.EstimatedBlocks / epochElapsed * 100
	if math.IsNaN(luck) || math.IsInf(luck, 0) {
		return NotComputable
	}
	return fixed2(luck)
}
