package stream

import (
	"context"
	"fmt"

	perr "github.com/next-trace/scg-product-events/contract/errors"
	"github.com/next-trace/scg-product-events/contract/event"
)

// Binding is the name of one domain's delivery channel. The set is fixed;
// bindings are created once at process start and never destroyed.
type Binding string

const (
	Products        Binding = "products"
	Recommendations Binding = "recommendations"
	Reviews         Binding = "reviews"
)

// Bindings returns the fixed binding set in fan-out dispatch order.
func Bindings() []Binding {
	return []Binding{Products, Recommendations, Reviews}
}

// Valid reports whether b is one of the fixed bindings.
func (b Binding) Valid() bool {
	switch b {
	case Products, Recommendations, Reviews:
		return true
	default:
		return false
	}
}

func (b Binding) String() string { return string(b) }

// Parse resolves a binding name. An unknown name fails with ErrInvalidBinding
// instead of mapping to an empty binding; this catches channel-name typos at
// the caller.
func Parse(name string) (Binding, error) {
	b := Binding(name)
	if !b.Valid() {
		return "", fmt.Errorf("binding %q: %w", name, perr.ErrInvalidBinding)
	}

	return b, nil
}

// Sink receives envelopes drained off a binding's queue. Implementations are
// the capture harness and the broker adapters. The publisher calls Deliver
// from one goroutine per binding, so implementations must be safe for
// concurrent use across bindings.
type Sink interface {
	Deliver(ctx context.Context, b Binding, env event.Envelope) error
}
