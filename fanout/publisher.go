package fanout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	perr "github.com/next-trace/scg-product-events/contract/errors"
	"github.com/next-trace/scg-product-events/contract/event"
	"github.com/next-trace/scg-product-events/contract/stream"
)

const (
	deliverAttempts = 3
	deliverBackoff  = 10 * time.Millisecond
	flushPollEvery  = time.Millisecond
)

// Publisher fans envelopes out to a Sink with per-binding FIFO ordering.
//
// Each binding owns an unbounded queue and a single delivery goroutine, both
// created at construction. Publish validates the binding, stamps CreatedAt,
// appends to the queue, and returns immediately; the caller never waits for
// downstream delivery. Envelopes on one binding keep their publish order while
// bindings interleave freely.
type Publisher struct {
	sink   stream.Sink
	logger *slog.Logger
	now    func() time.Time

	queues    map[stream.Binding]*bindingQueue
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type bindingQueue struct {
	binding stream.Binding

	mu      sync.Mutex
	cond    *sync.Cond
	items   []event.Envelope
	pending int // queued plus in-delivery
	closed  bool
}

// New constructs a Publisher delivering to sink. A nil logger falls back to
// slog.Default().
func New(sink stream.Sink, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Publisher{
		sink:   sink,
		logger: logger,
		now:    time.Now,
		queues: make(map[stream.Binding]*bindingQueue, len(stream.Bindings())),
	}

	for _, b := range stream.Bindings() {
		q := &bindingQueue{binding: b}
		q.cond = sync.NewCond(&q.mu)
		p.queues[b] = q

		p.wg.Add(1)
		go p.run(q)
	}

	return p
}

// Emitter publishes envelopes for exactly one binding. The orchestrator is
// constructed with one emitter per binding instead of a name-keyed registry.
type Emitter interface {
	Emit(ctx context.Context, env event.Envelope) error
}

type boundEmitter struct {
	p *Publisher
	b stream.Binding
}

func (e boundEmitter) Emit(ctx context.Context, env event.Envelope) error {
	return e.p.Publish(ctx, e.b, env)
}

// Bind returns an emitter handle for a single binding.
func (p *Publisher) Bind(b stream.Binding) (Emitter, error) { //nolint:ireturn
	if _, ok := p.queues[b]; !ok {
		return nil, fmt.Errorf("bind %q: %w", string(b), perr.ErrInvalidBinding)
	}

	return boundEmitter{p: p, b: b}, nil
}

// Publish accepts env for asynchronous delivery on binding b. An unknown
// binding fails with ErrInvalidBinding, a malformed envelope with
// ErrInvalidEnvelope; neither performs a side effect. Once Publish returns
// nil the envelope cannot be retracted.
func (p *Publisher) Publish(ctx context.Context, b stream.Binding, env event.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q, ok := p.queues[b]
	if !ok {
		return fmt.Errorf("publish %q: %w", string(b), perr.ErrInvalidBinding)
	}

	if err := env.Validate(); err != nil {
		return fmt.Errorf("publish %q: %w", string(b), err)
	}

	if env.CreatedAt.IsZero() {
		env.CreatedAt = p.now()
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return fmt.Errorf("publish %q: %w", string(b), perr.ErrPublisherClosed)
	}

	q.items = append(q.items, env)
	q.pending++
	q.cond.Broadcast()

	return nil
}

func (p *Publisher) run(q *bindingQueue) {
	defer p.wg.Done()

	for {
		q.mu.Lock()
		for len(q.items) == 0 && !q.closed {
			q.cond.Wait()
		}

		if len(q.items) == 0 {
			// closed and drained
			q.mu.Unlock()
			return
		}

		env := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		p.deliver(q.binding, env)

		q.mu.Lock()
		q.pending--
		q.mu.Unlock()
	}
}

// deliver hands one envelope to the sink, retrying transient failures a few
// times so a hiccup cannot reorder or wedge the binding's queue. Exhausted
// retries are logged and the envelope is dropped; sustained delivery faults
// are the transport's concern, not this core's.
func (p *Publisher) deliver(b stream.Binding, env event.Envelope) {
	var err error

	for attempt := 1; attempt <= deliverAttempts; attempt++ {
		if err = p.sink.Deliver(context.Background(), b, env); err == nil {
			return
		}

		if attempt < deliverAttempts {
			time.Sleep(deliverBackoff * time.Duration(attempt))
		}
	}

	p.logger.Error("envelope delivery failed",
		"binding", b.String(),
		"kind", string(env.Kind),
		"key", env.Key,
		"attempts", deliverAttempts,
		"err", err,
	)
}

// Flush blocks until every envelope accepted before the call has been handed
// to the sink, or ctx expires. It is the completion signal observers should
// use instead of fixed real-time sleeps.
func (p *Publisher) Flush(ctx context.Context) error {
	for _, b := range stream.Bindings() {
		if err := p.queues[b].waitIdle(ctx); err != nil {
			return fmt.Errorf("flush %q: %w", string(b), err)
		}
	}

	return nil
}

func (q *bindingQueue) waitIdle(ctx context.Context) error {
	tick := time.NewTicker(flushPollEvery)
	defer tick.Stop()

	for {
		q.mu.Lock()
		idle := q.pending == 0
		q.mu.Unlock()

		if idle {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
}

// Close drains the queues, stops the delivery goroutines, and rejects further
// publishes with ErrPublisherClosed. Every call, including concurrent and
// repeated ones, returns only after the drain has completed.
func (p *Publisher) Close() error {
	p.closeOnce.Do(func() {
		for _, q := range p.queues {
			q.mu.Lock()
			q.closed = true
			q.cond.Broadcast()
			q.mu.Unlock()
		}
	})

	p.wg.Wait()

	return nil
}
