package worker

import (
	"errors"

	"poolcalc/internal/assets"
	"poolcalc/internal/probability"
	"poolcalc/internal/summary"
)

// Tag names a message kind on the wire.
type Tag string

const (
	TagEstimatedBlocks Tag = "ESTIMATED_BLOCKS"
	TagMintedBlocks    Tag = "MINTED_BLOCKS"
	// TagPerformance keeps the spelling used by existing clients.
	TagPerformance  Tag = "PERFOMANCE"
	TagPoolRewards  Tag = "POOL_REWARDS"
	TagFilterAssets Tag = "FILTER_ASSETS"
	TagFilterResult Tag = "FILTER_RESULT"
)

// ErrUnknownRequest is returned for a request type the dispatcher cannot route.
var ErrUnknownRequest = errors.New("worker: unknown request type")

// Request is the closed set of calculations a worker accepts. Only types in
// this package implement it.
type Request interface {
	Tag() Tag
	isRequest()
}

// Response is the closed set of worker results, one per Request type.
type Response interface {
	Tag() Tag
	isResponse()
}

// EstimatedBlocksRequest asks for the block-count probability distribution.
type EstimatedBlocksRequest struct {
	EstimatedBlocks float64 `json:"estimatedBlocks"`
}

// MintedBlocksRequest asks for the minted blocks chart series.
type MintedBlocksRequest struct {
	Blocks []summary.DailyBlocks `json:"blocks"`
}

// PerformanceRequest asks for the performance chart series.
type PerformanceRequest struct {
	Detail       summary.PoolDetail `json:"detail"`
	EpochElapsed float64            `json:"epochElapsed"`
}

// PoolRewardsRequest asks for the settled reward chart series.
type PoolRewardsRequest struct {
	Rewards      []summary.EpochReward `json:"rewards"`
	CurrentEpoch int                   `json:"currentEpoch"`
}

// FilterAssetsRequest asks for a filtered and ranked asset list.
type FilterAssetsRequest struct {
	Assets      []assets.Record `json:"assets"`
	ClassFilter assets.Class    `json:"classFilter"`
	SearchText  string          `json:"searchText"`
}

func (EstimatedBlocksRequest) Tag() Tag { return TagEstimatedBlocks }
func (MintedBlocksRequest) Tag() Tag    { return TagMintedBlocks }
func (PerformanceRequest) Tag() Tag     { return TagPerformance }
func (PoolRewardsRequest) Tag() Tag     { return TagPoolRewards }
func (FilterAssetsRequest) Tag() Tag    { return TagFilterAssets }

func (EstimatedBlocksRequest) isRequest() {}
func (MintedBlocksRequest) isRequest()    {}
func (PerformanceRequest) isRequest()     {}
func (PoolRewardsRequest) isRequest()     {}
func (FilterAssetsRequest) isRequest()    {}

// EstimatedBlocksResponse carries the forecast distribution.
type EstimatedBlocksResponse struct {
	Distribution probability.Distribution `json:"distribution"`
}

// MintedBlocksResponse carries the minted blocks series.
type MintedBlocksResponse struct {
	summary.MintedSeries
}

// PerformanceResponse carries the performance series.
type PerformanceResponse struct {
	summary.PerformanceSeries
}

// PoolRewardsResponse carries the reward series.
type PoolRewardsResponse struct {
	summary.RewardSeries
}

// FilterResultResponse carries the filtered assets.
type FilterResultResponse struct {
	Assets []assets.Record `json:"assets"`
}

func (EstimatedBlocksResponse) Tag() Tag { return TagEstimatedBlocks }
func (MintedBlocksResponse) Tag() Tag    { return TagMintedBlocks }
func (PerformanceResponse) Tag() Tag     { return TagPerformance }
func (PoolRewardsResponse) Tag() Tag     { return TagPoolRewards }
func (FilterResultResponse) Tag() Tag    { return TagFilterResult }

func (EstimatedBlocksResponse) isResponse() {}
func (MintedBlocksResponse) isResponse()    {}
func (PerformanceResponse) isResponse()     {}
func (PoolRewardsResponse) isResponse()     {}
func (FilterResultResponse) isResponse()    {}

// Envelope is a request in flight. Seq increases per posting adapter.
type Envelope struct {
	Seq     uint64
	Request Request
}

// Reply is always sent for every Envelope. Exactly one of Response and Err is set.
type Reply struct {
	Seq        uint64
	RequestTag Tag
	Response   Response
	Err        error
}

// Handle routes a request to its calculation.
func Handle(req Request) (Response, error) {
	switch r := req.(type) {
	case EstimatedBlocksRequest:
		return EstimatedBlocksResponse{Distribution: probability.Compute(r.EstimatedBlocks)}, nil
	case MintedBlocksRequest:
		return MintedBlocksResponse{MintedSeries: summary.SummarizeMinted(r.Blocks)}, nil
	case PerformanceRequest:
		return PerformanceResponse{PerformanceSeries: summary.SummarizePerformance(r.Detail, r.EpochElapsed)}, nil
	case PoolRewardsRequest:
		return PoolRewardsResponse{RewardSeries: summary.SummarizeRewards(r.Rewards, r.CurrentEpoch)}, nil
	case FilterAssetsRequest:
		return FilterResultResponse{Assets: assets.Filter(r.Assets, r.ClassFilter, r.SearchText)}, nil
	default:
		return nil, ErrUnknownRequest
	}
}
