// Package host owns the lifecycle of one calculation worker on behalf of a
// single consumer (a chart, a table, a CLI command).
package host

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"poolcalc/internal/assets"
	"poolcalc/internal/probability"
	"poolcalc/internal/summary"
	"poolcalc/internal/worker"
)

// ErrClosed is returned once the adapter has been terminated.
var ErrClosed = errors.New("host: adapter closed")

// Options tune an Adapter.
type Options struct {
	QueueSize int
	Metrics   *worker.Metrics
	// Handler replaces the worker dispatch function; used by tests.
	Handler worker.HandlerFunc
	// OnReply is called from the receive goroutine for every fresh reply.
	OnReply func(worker.Reply)
}

// Adapter spawns its worker on first use and keeps the freshest reply per
// request tag. Replies older than one already applied for the same tag are
// dropped.
type Adapter struct {
	opts   Options
	logger zerolog.Logger

	mu      sync.Mutex
	started bool
	closed  bool
	inbox   chan<- worker.Envelope
	cancel  context.CancelFunc
	done    chan struct{}
	seq     uint64
	applied map[worker.Tag]uint64
	results map[worker.Tag]worker.Reply
	changed chan struct{}

	stopped   chan struct{}
	closeOnce sync.Once
}

// New constructs an adapter; no goroutine is started until the first Post.
func New(opts Options, logger zerolog.Logger) *Adapter {
	return &Adapter{
		opts:    opts,
		logger:  logger.With().Str("component", "host_adapter").Logger(),
		applied: make(map[worker.Tag]uint64),
		results: make(map[worker.Tag]worker.Reply),
		changed: make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Post hands req to the worker without waiting for the reply and returns the
// sequence number assigned to it.
func (a *Adapter) Post(ctx context.Context, req worker.Request) (uint64, error) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return 0, ErrClosed
	}
	a.startLocked()
	a.seq++
	seq := a.seq
	inbox := a.inbox
	a.mu.Unlock()

	if err := a.send(ctx, inbox, worker.Envelope{Seq: seq, Request: req}); err != nil {
		return 0, err
	}
	return seq, nil
}

// send delivers env unless the adapter is stopped. A send that races with
// Close reports ErrClosed, since Close discards whatever is queued.
func (a *Adapter) send(ctx context.Context, inbox chan<- worker.Envelope, env worker.Envelope) error {
	if a.isStopped() {
		return ErrClosed
	}
	select {
	case inbox <- env:
		if a.isStopped() {
			return ErrClosed
		}
		return nil
	case <-a.stopped:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Adapter) isStopped() bool {
	select {
	case <-a.stopped:
		return true
	default:
		return false
	}
}

func (a *Adapter) startLocked() {
	if a.started {
		return
	}
	w := worker.New(worker.Options{
		QueueSize: a.opts.QueueSize,
		Metrics:   a.opts.Metrics,
		Handler:   a.opts.Handler,
	}, a.logger)

	ctx, cancel := context.WithCancel(context.Background())
	a.inbox = w.Inbox()
	a.cancel = cancel
	a.done = make(chan struct{})
	a.started = true

	go func() {
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error().Err(err).Msg("worker exited")
		}
	}()
	go a.receive(w.Outbox())

	a.logger.Debug().Str("worker_id", w.ID()).Msg("worker spawned")
}

func (a *Adapter) receive(outbox <-chan worker.Reply) {
	defer close(a.done)
	for reply := range outbox {
		if a.apply(reply) && a.opts.OnReply != nil {
			a.opts.OnReply(reply)
		}
	}
}

func (a *Adapter) apply(reply worker.Reply) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return false
	}
	if reply.Seq <= a.applied[reply.RequestTag] {
		a.logger.Debug().Uint64("seq", reply.Seq).Str("tag", string(reply.RequestTag)).Msg("dropping stale reply")
		return false
	}
	a.applied[reply.RequestTag] = reply.Seq
	a.results[reply.RequestTag] = reply
	close(a.changed)
	a.changed = make(chan struct{})
	return true
}

// Await blocks until a reply at least as fresh as seq is available for tag.
func (a *Adapter) Await(ctx context.Context, tag worker.Tag, seq uint64) (worker.Reply, error) {
	for {
		a.mu.Lock()
		if a.applied[tag] >= seq {
			reply := a.results[tag]
			a.mu.Unlock()
			return reply, nil
		}
		changed := a.changed
		a.mu.Unlock()

		select {
		case <-changed:
		case <-a.stopped:
			return worker.Reply{}, ErrClosed
		case <-ctx.Done():
			return worker.Reply{}, ctx.Err()
		}
	}
}

// Call posts req and waits for its (or a fresher) reply.
func (a *Adapter) Call(ctx context.Context, req worker.Request) (worker.Response, error) {
	seq, err := a.Post(ctx, req)
	if err != nil {
		return nil, err
	}
	reply, err := a.Await(ctx, req.Tag(), seq)
	if err != nil {
		return nil, err
	}
	if reply.Err != nil {
		return nil, fmt.Errorf("%s: %w", req.Tag(), reply.Err)
	}
	return reply.Response, nil
}

// Latest returns the freshest successful or failed reply for tag.
func (a *Adapter) Latest(tag worker.Tag) (worker.Reply, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	reply, ok := a.results[tag]
	return reply, ok
}

// Distribution returns the latest forecast, if any.
func (a *Adapter) Distribution() (probability.Distribution, bool) {
	resp, ok := latestAs[worker.EstimatedBlocksResponse](a, worker.TagEstimatedBlocks)
	return resp.Distribution, ok
}

// MintedSeries returns the latest minted blocks series, if any.
func (a *Adapter) MintedSeries() (summary.MintedSeries, bool) {
	resp, ok := latestAs[worker.MintedBlocksResponse](a, worker.TagMintedBlocks)
	return resp.MintedSeries, ok
}

// PerformanceSeries returns the latest performance series, if any.
func (a *Adapter) PerformanceSeries() (summary.PerformanceSeries, bool) {
	resp, ok := latestAs[worker.PerformanceResponse](a, worker.TagPerformance)
	return resp.PerformanceSeries, ok
}

// RewardSeries returns the latest reward series, if any.
func (a *Adapter) RewardSeries() (summary.RewardSeries, bool) {
	resp, ok := latestAs[worker.PoolRewardsResponse](a, worker.TagPoolRewards)
	return resp.RewardSeries, ok
}

// Assets returns the latest filtered asset list, if any.
func (a *Adapter) Assets() ([]assets.Record, bool) {
	resp, ok := latestAs[worker.FilterResultResponse](a, worker.TagFilterAssets)
	return resp.Assets, ok
}

func latestAs[T worker.Response](a *Adapter, tag worker.Tag) (T, bool) {
	var zero T
	reply, ok := a.Latest(tag)
	if !ok || reply.Err != nil {
		return zero, false
	}
	resp, ok := reply.Response.(T)
	return resp, ok
}

// Close terminates the worker and waits for its goroutines to exit. Queued
// requests are discarded and a reply still being computed is dropped. It is
// safe to call more than once.
func (a *Adapter) Close() {
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		started := a.started
		cancel := a.cancel
		done := a.done
		a.mu.Unlock()

		close(a.stopped)
		if !started {
			return
		}
		cancel()
		<-done
		a.logger.Debug().Msg("worker terminated")
	})
}
