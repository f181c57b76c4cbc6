package summary

import "github.com/shopspring/decimal"

// settledAfterIndex is the first input index whose epoch rewards are settled;
// rows 0 and 1 are the two most recent epochs and still pending.
const settledAfterIndex = 2

// EpochReward is one epoch of pool reward history. Lovelace amounts accept
// JSON numbers or strings.
type EpochReward struct {
	Epoch          int                 `json:"epoch_no"`
	LeaderLovelace decimal.NullDecimal `json:"leader_lovelace"`
	LeaderPct      decimal.NullDecimal `json:"leader_pct"`
	MemberLovelace decimal.NullDecimal `json:"member_lovelace"`
	MemberPct      decimal.NullDecimal `json:"member_pct"`
}

// RewardSeries holds index-aligned series for the pool rewards chart.
type RewardSeries struct {
	LeaderADA []string `json:"leaderRewards"`
	MemberADA []string `json:"memberRewards"`
	LeaderPct []string `json:"leaderPct"`
	MemberPct []string `json:"memberPct"`
	Epochs    []int    `json:"epochs"`
}

// SummarizeRewards keeps only settled epochs with complete reward data and
// converts them to ADA and percentage strings.
func SummarizeRewards(rows []EpochReward, currentEpoch int) RewardSeries {
	out := RewardSeries{
		LeaderADA: []string{},
		MemberADA: []string{},
		LeaderPct: []string{},
		MemberPct: []string{},
		Epochs:    []int{},
	}
	for i, row := range rows {
		if !settled(i, row, currentEpoch) {
			continue
		}
		out.LeaderADA = append(out.LeaderADA, lovelaceToADA(row.LeaderLovelace.Decimal))
		out.MemberADA = append(out.MemberADA, lovelaceToADA(row.MemberLovelace.Decimal))
		out.LeaderPct = append(out.LeaderPct, row.LeaderPct.Decimal.StringFixed(2))
		out.MemberPct = append(out.MemberPct, row.MemberPct.Decimal.StringFixed(2))
		out.Epochs = append(out.Epochs, row.Epoch)
	}
	return out
}

func settled(index int, row EpochReward, currentEpoch int) bool {
	if index < settledAfterIndex || row.Epoch == currentEpoch {
		return false
	}
	return row.LeaderLovelace.Valid && row.LeaderPct.Valid && row.MemberLovelace.Valid
}
