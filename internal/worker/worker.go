// Package worker runs calculation handlers on an isolated goroutine that talks
// to its owner only through channels.
package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HandlerFunc computes the response for one request.
type HandlerFunc func(Request) (Response, error)

// State is the dispatcher state.
type State int32

const (
	StateIdle State = iota
	StateProcessing
)

func (s State) String() string {
	if s == StateProcessing {
		return "processing"
	}
	return "idle"
}

// Options tune a worker.
type Options struct {
	QueueSize int
	Metrics   *Metrics
	// Handler overrides the dispatch function; defaults to Handle.
	Handler HandlerFunc
}

// Worker processes envelopes strictly one at a time, in arrival order.
type Worker struct {
	id      string
	inbox   chan Envelope
	outbox  chan Reply
	handler HandlerFunc
	metrics *Metrics
	state   atomic.Int32
	logger  zerolog.Logger
}

// New constructs a worker. Call Run exactly once to start it.
func New(opts Options, logger zerolog.Logger) *Worker {
	size := opts.QueueSize
	if size <= 0 {
		size = 16
	}
	handler := opts.Handler
	if handler == nil {
		handler = Handle
	}
	id := uuid.NewString()
	return &Worker{
		id:      id,
		inbox:   make(chan Envelope, size),
		outbox:  make(chan Reply, size),
		handler: handler,
		metrics: opts.Metrics,
		logger:  logger.With().Str("component", "worker").Str("worker_id", id).Logger(),
	}
}

// ID identifies the worker in logs.
func (w *Worker) ID() string { return w.id }

// Inbox accepts envelopes. Closing it stops the worker after the queue drains.
func (w *Worker) Inbox() chan<- Envelope { return w.inbox }

// Outbox yields one reply per envelope and is closed when Run returns.
func (w *Worker) Outbox() <-chan Reply { return w.outbox }

// State reports whether a request is currently being processed.
func (w *Worker) State() State { return State(w.state.Load()) }

// Run is the dispatch loop. It returns when ctx is cancelled, discarding any
// queued work, or when the inbox is closed.
func (w *Worker) Run(ctx context.Context) error {
	defer close(w.outbox)
	w.logger.Debug().Msg("worker started")
	defer w.logger.Debug().Msg("worker stopped")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env, ok := <-w.inbox:
			if !ok {
				return nil
			}
			reply := w.process(env)
			select {
			case w.outbox <- reply:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (w *Worker) process(env Envelope) (reply Reply) {
	tag := Tag("")
	if env.Request != nil {
		tag = env.Request.Tag()
	}
	reply = Reply{Seq: env.Seq, RequestTag: tag}

	w.state.Store(int32(StateProcessing))
	w.metrics.start()
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			reply.Response = nil
			reply.Err = fmt.Errorf("handler %s panicked: %v", tag, r)
		}
		w.metrics.finish(tag, time.Since(started).Seconds(), reply.Err)
		w.state.Store(int32(StateIdle))
		if reply.Err != nil {
			w.logger.Warn().Err(reply.Err).Uint64("seq", env.Seq).Str("tag", string(tag)).Msg("request failed")
		}
	}()

	if env.Request == nil {
		reply.Err = ErrUnknownRequest
		return reply
	}
	reply.Response, reply.Err = w.handler(env.Request)
	return reply
}
