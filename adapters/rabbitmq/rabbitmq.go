package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	perr "github.com/next-trace/scg-product-events/contract/errors"
	"github.com/next-trace/scg-product-events/contract/event"
	"github.com/next-trace/scg-product-events/contract/stream"
	amqp "github.com/rabbitmq/amqp091-go"
)

// PubMsg is the transport-level message handed to a Publisher.
type PubMsg struct {
	Exchange   string
	RoutingKey string
	Body       []byte
	Headers    map[string]string
}

// Publisher abstracts the AMQP channel so the adapter stays testable without a
// broker. NewWithAMQPConn provides a reconnecting implementation.
type Publisher interface {
	Publish(ctx context.Context, m PubMsg) error
}

// Adapter delivers envelopes to the eventsExchange with the binding name as
// the routing key.
type Adapter struct {
	Publisher Publisher
}

var _ stream.Sink = (*Adapter)(nil)

// New creates a new RabbitMQ adapter instance with the provided publisher.
func New(p Publisher) *Adapter { return &Adapter{Publisher: p} }

func (a *Adapter) Deliver(ctx context.Context, b stream.Binding, env event.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if a.Publisher == nil {
		return fmt.Errorf("rabbitmq deliver: %w", perr.ErrDeliveryFailed)
	}

	if !b.Valid() {
		return fmt.Errorf("rabbitmq deliver %q: %w", string(b), perr.ErrInvalidBinding)
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("rabbitmq deliver serialize: %w", errors.Join(perr.ErrSerializationFailed, err))
	}

	msg := PubMsg{
		Exchange:   eventsExchange,
		RoutingKey: string(b),
		Body:       body,
		Headers:    messageHeaders(env),
	}

	if err := a.Publisher.Publish(ctx, msg); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		return fmt.Errorf("rabbitmq deliver publish: %w", errors.Join(perr.ErrDeliveryFailed, err))
	}

	return nil
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

type amqpChannelPublisher struct{ ch *amqp.Channel }

func (p amqpChannelPublisher) Publish(ctx context.Context, m PubMsg) error {
	var h amqp.Table
	if len(m.Headers) > 0 {
		h = amqp.Table{}
		for k, v := range m.Headers {
			h[k] = v
		}
	}

	return p.ch.PublishWithContext(
		ctx,
		m.Exchange,
		m.RoutingKey,
		false,
		false,
		amqp.Publishing{
			Headers:     h,
			Body:        m.Body,
			ContentType: "application/json",
		},
	)
}

// NewWithAMQPChannel wraps an existing AMQP channel; the caller owns its
// lifecycle and the eventsExchange declaration.
func NewWithAMQPChannel(ch *amqp.Channel) *Adapter {
	return &Adapter{Publisher: amqpChannelPublisher{ch: ch}}
}
