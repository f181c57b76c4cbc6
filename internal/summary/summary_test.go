package summary

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSummarizeMinted(t *testing.T) {
	var rows []DailyBlocks
	err := json.Unmarshal([]byte(`[
		{"block":{"count":3,"avg_tx_count":1.005},"date":"2024-01-01"},
		{"block":{"count":0,"avg_tx_count":0},"date":"2024-02-29T00:00:00Z"},
		{"block":{"count":7,"avg_tx_count":12.344},"date":"yesterday"}
	]`), &rows)
	require.NoError(t, err)

	got := SummarizeMinted(rows)
	require.Equal(t, []int{3, 0, 7}, got.MintedBlocks)
	require.Equal(t, []string{"1.01", "0.00", "12.34"}, got.TxCounts)
	require.Equal(t, []string{"01.01.2024", "29.02.2024", "yesterday"}, got.Dates)
}

func TestSummarizeMintedEmpty(t *testing.T) {
	got := SummarizeMinted(nil)
	require.Empty(t, got.MintedBlocks)
	require.Empty(t, got.TxCounts)
	require.Empty(t, got.Dates)
}

func TestSummarizeRewardsFiltering(t *testing.T) {
	var rows []EpochReward
	err := json.Unmarshal([]byte(`[
		{"epoch_no":500,"leader_lovelace":"1","leader_pct":1,"member_lovelace":"1","member_pct":1},
		{"epoch_no":499,"leader_lovelace":"1","leader_pct":1,"member_lovelace":"1","member_pct":1},
		{"epoch_no":498,"leader_lovelace":"340000000","leader_pct":0.5,"member_lovelace":"12345678","member_pct":4.256},
		{"epoch_no":497,"leader_lovelace":null,"leader_pct":0.5,"member_lovelace":"1000000","member_pct":4},
		{"epoch_no":496,"leader_lovelace":"1000000","leader_pct":null,"member_lovelace":"1000000","member_pct":4},
		{"epoch_no":495,"leader_lovelace":"1000000","leader_pct":0.5,"member_lovelace":null,"member_pct":4},
		{"epoch_no":501,"leader_lovelace":"1000000","leader_pct":0.5,"member_lovelace":"1000000","member_pct":4},
		{"epoch_no":494,"leader_lovelace":2500000,"leader_pct":1,"member_lovelace":500000,"member_pct":3.1}
	]`), &rows)
	require.NoError(t, err)

	got := SummarizeRewards(rows, 501)
	require.Equal(t, []int{498, 494}, got.Epochs)
	require.Equal(t, []string{"340.00", "2.50"}, got.LeaderADA)
	require.Equal(t, []string{"12.35", "0.50"}, got.MemberADA)
	require.Equal(t, []string{"0.50", "1.00"}, got.LeaderPct)
	require.Equal(t, []string{"4.26", "3.10"}, got.MemberPct)
}

func TestSummarizeRewardsTooFewRows(t *testing.T) {
	rows := []EpochReward{
		{Epoch: 10, LeaderLovelace: decimal.NewNullDecimal(decimal.NewFromInt(1)), LeaderPct: decimal.NewNullDecimal(decimal.NewFromInt(1)), MemberLovelace: decimal.NewNullDecimal(decimal.NewFromInt(1))},
		{Epoch: 9, LeaderLovelace: decimal.NewNullDecimal(decimal.NewFromInt(1)), LeaderPct: decimal.NewNullDecimal(decimal.NewFromInt(1)), MemberLovelace: decimal.NewNullDecimal(decimal.NewFromInt(1))},
	}
	got := SummarizeRewards(rows, 99)
	require.Empty(t, got.Epochs)
	require.NotNil(t, got.LeaderADA)
}

func TestSummarizePerformance(t *testing.T) {
	detail := PoolDetail{
		LiveDelegators:  120,
		LiveStake:       decimal.NewFromInt(25_000_000_000_000),
		LivePledge:      decimal.NewFromInt(500_000_000_000),
		EpochBlocks:     6,
		EstimatedBlocks: 20,
		History: []EpochPerformance{
			{Epoch: 499, Delegators: 118, ActiveStake: decimal.NewFromInt(24_500_000_000_000), BlockCount: 21, Luck: 1.0523, RewardPct: 3.456},
			{Epoch: 498, Delegators: 117, ActiveStake: decimal.NewFromInt(24_000_000_000_000), BlockCount: 18, Luck: 0.9, RewardPct: 2.9},
		},
	}

	got := SummarizePerformance(detail, 0.25)
	require.Equal(t, []int{120, 118, 117}, got.Delegators)
	require.Equal(t, []int{6, 21, 18}, got.Blocks)
	// running epoch: 6 / 20 / 0.25 * 100 = 120
	require.Equal(t, []string{"120.00", "105.23", "90.00"}, got.Luck)
	require.Equal(t, []string{"25000000.00", "24500000.00", "24000000.00"}, got.ActiveStake)
	require.Equal(t, []string{NotComputable, "3.46", "2.90"}, got.RewardPct)
	require.Equal(t, "500000.00", got.CurrentPledge)
}

func TestSummarizePerformanceLuckNotComputable(t *testing.T) {
	got := SummarizePerformance(PoolDetail{EpochBlocks: 3}, 0.5)
	require.Equal(t, []string{NotComputable}, got.Luck)

	got = SummarizePerformance(PoolDetail{EpochBlocks: 3, EstimatedBlocks: 10}, 0)
	require.Equal(t, []string{NotComputable}, got.Luck)
}
