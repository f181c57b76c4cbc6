package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"poolcalc/internal/assets"
	"poolcalc/internal/summary"
)

func startWorker(t *testing.T, opts Options) *Worker {
	t.Helper()
	w := New(opts, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w
}

func recv(t *testing.T, w *Worker) Reply {
	t.Helper()
	select {
	case r, ok := <-w.Outbox():
		if !ok {
			t.Fatal("outbox closed")
		}
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reply")
	}
	return Reply{}
}

func TestHandleRoutesEveryRequest(t *testing.T) {
	cases := []struct {
		req  Request
		want Tag
	}{
		{EstimatedBlocksRequest{EstimatedBlocks: 0}, TagEstimatedBlocks},
		{MintedBlocksRequest{}, TagMintedBlocks},
		{PerformanceRequest{EpochElapsed: 0.5}, TagPerformance},
		{PoolRewardsRequest{CurrentEpoch: 1}, TagPoolRewards},
		{FilterAssetsRequest{ClassFilter: assets.ClassAll}, TagFilterResult},
	}
	for _, tc := range cases {
		resp, err := Handle(tc.req)
		require.NoError(t, err)
		require.Equal(t, tc.want, resp.Tag())
	}

	_, err := Handle(nil)
	require.ErrorIs(t, err, ErrUnknownRequest)
}

func TestWorkerRepliesInOrder(t *testing.T) {
	w := startWorker(t, Options{QueueSize: 8})

	w.Inbox() <- Envelope{Seq: 1, Request: EstimatedBlocksRequest{EstimatedBlocks: 0}}
	w.Inbox() <- Envelope{Seq: 2, Request: MintedBlocksRequest{Blocks: []summary.DailyBlocks{{Date: "2024-01-01"}}}}
	w.Inbox() <- Envelope{Seq: 3, Request: FilterAssetsRequest{Assets: []assets.Record{{Name: "a", Quantity: decimal.NewFromInt(1)}}, ClassFilter: assets.ClassNFTs}}

	first := recv(t, w)
	require.Equal(t, uint64(1), first.Seq)
	require.NoError(t, first.Err)
	dist := first.Response.(EstimatedBlocksResponse).Distribution
	require.Len(t, dist, 1)
	require.Equal(t, 100.0, dist[0].CumulativePct)

	second := recv(t, w)
	require.Equal(t, uint64(2), second.Seq)
	require.Equal(t, []string{"01.01.2024"}, second.Response.(MintedBlocksResponse).Dates)

	third := recv(t, w)
	require.Equal(t, uint64(3), third.Seq)
	require.Equal(t, TagFilterAssets, third.RequestTag)
	require.Len(t, third.Response.(FilterResultResponse).Assets, 1)
	require.Equal(t, StateIdle, w.State())
}

func TestWorkerConvertsPanicToFailedReply(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	w := startWorker(t, Options{
		Metrics: metrics,
		Handler: func(req Request) (Response, error) {
			if r, ok := req.(EstimatedBlocksRequest); ok && r.EstimatedBlocks < 0 {
				panic("negative")
			}
			return Handle(req)
		},
	})

	w.Inbox() <- Envelope{Seq: 1, Request: EstimatedBlocksRequest{EstimatedBlocks: -1}}
	w.Inbox() <- Envelope{Seq: 2, Request: EstimatedBlocksRequest{EstimatedBlocks: 1}}

	failed := recv(t, w)
	require.Error(t, failed.Err)
	require.Nil(t, failed.Response)
	require.Equal(t, TagEstimatedBlocks, failed.RequestTag)

	ok := recv(t, w)
	require.NoError(t, ok.Err)

	require.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues(string(TagEstimatedBlocks), "failed")))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues(string(TagEstimatedBlocks), "ok")))
	require.Equal(t, 0.0, testutil.ToFloat64(metrics.busy))
}

func TestWorkerStopsOnClosedInbox(t *testing.T) {
	w := New(Options{}, zerolog.Nop())
	w.Inbox() <- Envelope{Seq: 7, Request: PoolRewardsRequest{}}
	close(w.inbox)

	require.NoError(t, w.Run(context.Background()))

	reply, ok := <-w.Outbox()
	require.True(t, ok)
	require.Equal(t, uint64(7), reply.Seq)
	_, ok = <-w.Outbox()
	require.False(t, ok)
}

func TestWorkerStopsOnCancel(t *testing.T) {
	w := New(Options{}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := w.Run(ctx)
	require.True(t, errors.Is(err, context.Canceled))
}

func TestDecodeRequest(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"type":"POOL_REWARDS","currentEpoch":12,"rewards":[{"epoch_no":3,"leader_lovelace":"1","leader_pct":1,"member_lovelace":null}]}`))
	require.NoError(t, err)
	rewards, ok := req.(PoolRewardsRequest)
	require.True(t, ok)
	require.Equal(t, 12, rewards.CurrentEpoch)
	require.Len(t, rewards.Rewards, 1)
	require.False(t, rewards.Rewards[0].MemberLovelace.Valid)

	req, err = DecodeRequest([]byte(`{"type":"PERFOMANCE","epochElapsed":0.5,"detail":{"live_delegators":4}}`))
	require.NoError(t, err)
	require.Equal(t, 4, req.(PerformanceRequest).Detail.LiveDelegators)

	_, err = DecodeRequest([]byte(`{"type":"NOPE"}`))
	require.ErrorIs(t, err, ErrUnknownRequest)

	_, err = DecodeRequest([]byte(`not json`))
	require.Error(t, err)
}

func TestEncodeRoundTripKeepsType(t *testing.T) {
	data, err := EncodeRequest(FilterAssetsRequest{ClassFilter: assets.ClassTokens, SearchText: "hosky"})
	require.NoError(t, err)

	req, err := DecodeRequest(data)
	require.NoError(t, err)
	require.Equal(t, "hosky", req.(FilterAssetsRequest).SearchText)

	resp, err := Handle(req)
	require.NoError(t, err)
	out, err := EncodeReply(Reply{Seq: 1, RequestTag: TagFilterAssets, Response: resp})
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.JSONEq(t, `"FILTER_RESULT"`, string(decoded["type"]))

	out, err = EncodeReply(Reply{Seq: 2, RequestTag: TagMintedBlocks, Err: errors.New("boom")})
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"MINTED_BLOCKS","seq":2,"error":"boom"}`, string(out))
}
