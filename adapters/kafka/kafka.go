package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	perr "github.com/next-trace/scg-product-events/contract/errors"
	"github.com/next-trace/scg-product-events/contract/event"
	"github.com/next-trace/scg-product-events/contract/stream"
)

// Writer is a minimal Kafka-like writer interface.
// Users can adapt any client to this; NewWithKgo provides a franz-go backed one.
type Writer interface {
	Write(topic string, key, value []byte, headers map[string]string) error
}

// Adapter delivers envelopes to Kafka topics named after their binding. The
// message key is the decimal envelope key, so all events of one aggregate land
// on one partition and keep their per-binding order.
type Adapter struct {
	Writer Writer
	// TopicPrefix, when non-empty, is prepended to the binding name,
	// e.g. "product-events.".
	TopicPrefix string
}

var _ stream.Sink = (*Adapter)(nil)

// New creates a new Kafka adapter instance with the provided writer.
func New(w Writer) *Adapter { return &Adapter{Writer: w} }

func (a *Adapter) Deliver(ctx context.Context, b stream.Binding, env event.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if a.Writer == nil {
		return fmt.Errorf("kafka deliver: %w", perr.ErrDeliveryFailed)
	}

	if !b.Valid() {
		return fmt.Errorf("kafka deliver %q: %w", string(b), perr.ErrInvalidBinding)
	}

	val, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("kafka deliver serialize: %w", errors.Join(perr.ErrSerializationFailed, err))
	}

	key := []byte(strconv.Itoa(env.Key))

	if err := a.Writer.Write(a.topic(b), key, val, messageHeaders(env)); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		return fmt.Errorf("kafka deliver write: %w", errors.Join(perr.ErrDeliveryFailed, err))
	}

	return nil
}

func (a *Adapter) topic(b stream.Binding) string { return a.TopicPrefix + string(b) }

// helpers (duplicated per adapter for simplicity and test isolation)

func messageHeaders(env event.Envelope) map[string]string {
	return map[string]string{
		"event_id": newEventID(),
		"kind":     string(env.Kind),
	}
}

func newEventID() string {
	// UUID v7 sorts by creation time; fall back to v4 if the clock misbehaves.
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	return id.String()
}
