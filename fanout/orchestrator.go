package fanout

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/next-trace/scg-product-events/contract/composite"
	perr "github.com/next-trace/scg-product-events/contract/errors"
	"github.com/next-trace/scg-product-events/contract/event"
)

// Orchestrator decomposes one aggregate create/delete request into per-domain
// envelopes and dispatches them through explicitly injected emitters, one per
// binding. It owns derivation exclusively; delivery belongs to the publisher.
type Orchestrator struct {
	products        Emitter
	recommendations Emitter
	reviews         Emitter
	logger          *slog.Logger
}

// NewOrchestrator constructs an Orchestrator over the three binding emitters.
// A nil logger falls back to slog.Default().
func NewOrchestrator(products, recommendations, reviews Emitter, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		products:        products,
		recommendations: recommendations,
		reviews:         reviews,
		logger:          logger,
	}
}

// SubmitCreate derives one products CREATE envelope from the aggregate's own
// fields, then one recommendations envelope per summary in list order, then
// one reviews envelope per summary in list order, and hands them to the
// emitters in that fixed order. Validation and payload encoding both complete
// before the first emit, so a malformed aggregate can never cause a partial
// fan-out. Empty sub-resource lists emit nothing for their domain.
//
// SubmitCreate returns once every envelope is accepted; it never waits for
// downstream delivery.
func (o *Orchestrator) SubmitCreate(ctx context.Context, agg composite.ProductAggregate) error {
	if err := agg.Validate(); err != nil {
		return err
	}

	product, err := event.NewCreate(agg.ProductID, event.Product{
		ID:     agg.ProductID,
		Name:   agg.Name,
		Weight: agg.Weight,
	})
	if err != nil {
		return err
	}

	recommendations := make([]event.Envelope, 0, len(agg.Recommendations))

	for _, r := range agg.Recommendations {
		env, err := event.NewCreate(agg.ProductID, event.Recommendation{
			ProductID:        agg.ProductID,
			RecommendationID: r.RecommendationID,
			Author:           r.Author,
			Rate:             r.Rate,
			Content:          r.Content,
		})
		if err != nil {
			return err
		}

		recommendations = append(recommendations, env)
	}

	reviews := make([]event.Envelope, 0, len(agg.Reviews))

	for _, r := range agg.Reviews {
		env, err := event.NewCreate(agg.ProductID, event.Review{
			ProductID: agg.ProductID,
			ReviewID:  r.ReviewID,
			Author:    r.Author,
			Subject:   r.Subject,
			Content:   r.Content,
		})
		if err != nil {
			return err
		}

		reviews = append(reviews, env)
	}

	// All envelopes are built; from here on the only failure mode is the
	// publisher rejecting the emit itself.
	if err := o.products.Emit(ctx, product); err != nil {
		return err
	}

	for _, env := range recommendations {
		if err := o.recommendations.Emit(ctx, env); err != nil {
			return err
		}
	}

	for _, env := range reviews {
		if err := o.reviews.Emit(ctx, env); err != nil {
			return err
		}
	}

	o.logger.DebugContext(ctx, "create fan-out dispatched",
		"productId", agg.ProductID,
		"recommendations", len(recommendations),
		"reviews", len(reviews),
	)

	return nil
}

// SubmitDelete emits exactly one DELETE envelope with a null payload on each
// of the three bindings, keyed by productID. The emission is unconditional:
// whether sub-resources exist is not checked here, and reconciling deletes of
// resources that never existed is the downstream consumer's job.
func (o *Orchestrator) SubmitDelete(ctx context.Context, productID int) error {
	if productID < 1 {
		return fmt.Errorf("product id %d: %w", productID, perr.ErrMalformedAggregate)
	}

	for _, em := range []Emitter{o.products, o.recommendations, o.reviews} {
		if err := em.Emit(ctx, event.NewDelete(productID)); err != nil {
			return err
		}
	}

	o.logger.DebugContext(ctx, "delete fan-out dispatched", "productId", productID)

	return nil
}
