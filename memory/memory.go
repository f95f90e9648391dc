package memory

import (
	"log/slog"

	"github.com/next-trace/scg-product-events/capture"
	"github.com/next-trace/scg-product-events/contract/stream"
	"github.com/next-trace/scg-product-events/fanout"
)

// New wires a capture-backed publisher and an orchestrator bound to the three
// bindings, for tests and examples. The cleanup drains and closes the
// publisher.
func New(logger *slog.Logger) (*fanout.Orchestrator, *fanout.Publisher, *capture.Capture, func()) {
	buf := capture.New()
	pub := fanout.New(buf, logger)

	// The fixed binding set cannot fail to bind.
	products, _ := pub.Bind(stream.Products)
	recommendations, _ := pub.Bind(stream.Recommendations)
	reviews, _ := pub.Bind(stream.Reviews)

	orch := fanout.NewOrchestrator(products, recommendations, reviews, logger)
	cleanup := func() { _ = pub.Close() }

	return orch, pub, buf, cleanup
}
