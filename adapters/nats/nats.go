package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	perr "github.com/next-trace/scg-product-events/contract/errors"
	"github.com/next-trace/scg-product-events/contract/event"
	"github.com/next-trace/scg-product-events/contract/stream"
)

const defaultSubjectPrefix = "events."

// Client is a minimal NATS-like publisher interface decoupled from any
// concrete library. Users can provide a wrapper around their NATS connection
// to satisfy this; NewWithNATS provides one backed by nats.go.
type Client interface {
	// Publish publishes a message to a subject with optional headers.
	Publish(subject string, data []byte, headers map[string]string) error
}

// Adapter delivers envelopes to NATS subjects named after their binding.
type Adapter struct {
	Client Client
	// SubjectPrefix overrides the default "events." prefix when non-empty.
	SubjectPrefix string
}

var _ stream.Sink = (*Adapter)(nil)

// New creates a new NATS adapter instance with the provided client.
func New(c Client) *Adapter { return &Adapter{Client: c} }

func (a *Adapter) Deliver(ctx context.Context, b stream.Binding, env event.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if a.Client == nil {
		return fmt.Errorf("nats deliver: %w", perr.ErrDeliveryFailed)
	}

	if !b.Valid() {
		return fmt.Errorf("nats deliver %q: %w", string(b), perr.ErrInvalidBinding)
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("nats deliver serialize: %w", errors.Join(perr.ErrSerializationFailed, err))
	}

	if err := a.Client.Publish(a.subject(b), body, messageHeaders(env)); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		return fmt.Errorf("nats deliver publish: %w", errors.Join(perr.ErrDeliveryFailed, err))
	}

	return nil
}

func (a *Adapter) subject(b stream.Binding) string {
	prefix := a.SubjectPrefix
	if prefix == "" {
		prefix = defaultSubjectPrefix
	}

	return prefix + string(b)
}

// helpers (duplicated per adapter for simplicity and test isolation)

func messageHeaders(env event.Envelope) map[string]string {
	return map[string]string{
		"event_id": newEventID(),
		"kind":     string(env.Kind),
	}
}

func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	return id.String()
}
