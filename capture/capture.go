/*
Package capture provides a test-scoped delivery sink that buffers every
envelope per binding and exposes destructive reads, so scenarios can observe
exactly the events they produced without cross-scenario contamination.
*/
package capture

import (
	"context"
	"fmt"
	"sync"

	perr "github.com/next-trace/scg-product-events/contract/errors"
	"github.com/next-trace/scg-product-events/contract/event"
	"github.com/next-trace/scg-product-events/contract/stream"
)

// Capture buffers delivered envelopes per binding. It is safe for concurrent
// use: a drain racing with deliveries sees each envelope exactly once, either
// before or after the drain.
type Capture struct {
	mu   sync.Mutex
	cond *sync.Cond
	buf  map[stream.Binding][]event.Envelope
}

var _ stream.Sink = (*Capture)(nil)

// New creates a Capture with one buffer per fixed binding.
func New() *Capture {
	c := &Capture{buf: make(map[stream.Binding][]event.Envelope, len(stream.Bindings()))}
	for _, b := range stream.Bindings() {
		c.buf[b] = nil
	}

	c.cond = sync.NewCond(&c.mu)

	return c
}

// Deliver appends env to the binding's buffer.
func (c *Capture) Deliver(ctx context.Context, b stream.Binding, env event.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.buf[b]; !ok {
		return fmt.Errorf("deliver %q: %w", string(b), perr.ErrInvalidBinding)
	}

	c.buf[b] = append(c.buf[b], env)
	c.cond.Broadcast()

	return nil
}

// ReadAndRemove atomically returns the binding's buffered envelopes in
// delivery order and empties the buffer. Reading an empty buffer yields an
// empty sequence, not an error.
func (c *Capture) ReadAndRemove(b stream.Binding) ([]event.Envelope, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	got, ok := c.buf[b]
	if !ok {
		return nil, fmt.Errorf("read %q: %w", string(b), perr.ErrInvalidBinding)
	}

	c.buf[b] = nil

	return got, nil
}

// Purge clears the binding's buffer between scenarios. It is the same
// primitive as ReadAndRemove; the removed envelopes are returned.
func (c *Capture) Purge(b stream.Binding) ([]event.Envelope, error) {
	return c.ReadAndRemove(b)
}

// Len returns the binding's current buffer size without draining it.
func (c *Capture) Len(b stream.Binding) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	got, ok := c.buf[b]
	if !ok {
		return 0, fmt.Errorf("len %q: %w", string(b), perr.ErrInvalidBinding)
	}

	return len(got), nil
}

// Await blocks until the binding has buffered at least n envelopes or ctx
// expires. It is the bounded wait observers should use instead of sleeping a
// fixed interval after an asynchronous submit.
func (c *Capture) Await(ctx context.Context, b stream.Binding, n int) error {
	if !b.Valid() {
		return fmt.Errorf("await %q: %w", string(b), perr.ErrInvalidBinding)
	}

	// Wake the cond wait when ctx expires; Wait itself cannot observe ctx.
	stop := context.AfterFunc(ctx, func() {
		c.mu.Lock()
		c.cond.Broadcast()
		c.mu.Unlock()
	})
	defer stop()

	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.buf[b]) < n {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.cond.Wait()
	}

	return nil
}
