package fanout_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/next-trace/scg-product-events/contract/composite"
	perr "github.com/next-trace/scg-product-events/contract/errors"
	"github.com/next-trace/scg-product-events/contract/event"
	"github.com/next-trace/scg-product-events/contract/stream"
	"github.com/next-trace/scg-product-events/fanout"
)

// recorder captures emits synchronously and tracks the global dispatch order
// across bindings, which the async publisher deliberately does not guarantee.
type recorder struct {
	mu    sync.Mutex
	byBin map[stream.Binding][]event.Envelope
	order []stream.Binding
	fail  error
}

func newRecorder() *recorder {
	return &recorder{byBin: make(map[stream.Binding][]event.Envelope)}
}

type recordEmitter struct {
	r *recorder
	b stream.Binding
}

func (e recordEmitter) Emit(ctx context.Context, env event.Envelope) error {
	e.r.mu.Lock()
	defer e.r.mu.Unlock()

	if e.r.fail != nil {
		return e.r.fail
	}

	e.r.byBin[e.b] = append(e.r.byBin[e.b], env)
	e.r.order = append(e.r.order, e.b)

	return nil
}

func newTestOrchestrator() (*fanout.Orchestrator, *recorder) {
	r := newRecorder()
	o := fanout.NewOrchestrator(
		recordEmitter{r: r, b: stream.Products},
		recordEmitter{r: r, b: stream.Recommendations},
		recordEmitter{r: r, b: stream.Reviews},
		nil,
	)

	return o, r
}

func TestSubmitCreate_ProductOnly(t *testing.T) {
	o, r := newTestOrchestrator()

	agg := composite.ProductAggregate{ProductID: 1, Name: "name", Weight: 1}
	if err := o.SubmitCreate(context.Background(), agg); err != nil {
		t.Fatalf("submit create: %v", err)
	}

	if n := len(r.byBin[stream.Products]); n != 1 {
		t.Fatalf("products: want 1 envelope, got %d", n)
	}

	if n := len(r.byBin[stream.Recommendations]); n != 0 {
		t.Fatalf("recommendations: want 0 envelopes, got %d", n)
	}

	if n := len(r.byBin[stream.Reviews]); n != 0 {
		t.Fatalf("reviews: want 0 envelopes, got %d", n)
	}

	want, err := event.NewCreate(1, event.Product{ID: 1, Name: "name", Weight: 1})
	if err != nil {
		t.Fatalf("expected envelope: %v", err)
	}

	if !event.Equivalent(want, r.byBin[stream.Products][0]) {
		t.Fatalf("product envelope: %+v", r.byBin[stream.Products][0])
	}
}

func TestSubmitCreate_FullAggregate(t *testing.T) {
	o, r := newTestOrchestrator()

	agg := composite.ProductAggregate{
		ProductID: 1,
		Name:      "name",
		Weight:    1,
		Recommendations: []composite.RecommendationSummary{
			{RecommendationID: 1, Author: "a", Rate: 1, Content: "c"},
		},
		Reviews: []composite.ReviewSummary{
			{ReviewID: 1, Author: "a", Subject: "s", Content: "c"},
		},
	}

	if err := o.SubmitCreate(context.Background(), agg); err != nil {
		t.Fatalf("submit create: %v", err)
	}

	wantRec, err := event.NewCreate(1, event.Recommendation{
		ProductID: 1, RecommendationID: 1, Author: "a", Rate: 1, Content: "c",
	})
	if err != nil {
		t.Fatalf("expected envelope: %v", err)
	}

	wantRev, err := event.NewCreate(1, event.Review{
		ProductID: 1, ReviewID: 1, Author: "a", Subject: "s", Content: "c",
	})
	if err != nil {
		t.Fatalf("expected envelope: %v", err)
	}

	if n := len(r.byBin[stream.Recommendations]); n != 1 {
		t.Fatalf("recommendations: want 1, got %d", n)
	}

	if !event.Equivalent(wantRec, r.byBin[stream.Recommendations][0]) {
		t.Fatalf("recommendation envelope: %+v", r.byBin[stream.Recommendations][0])
	}

	if n := len(r.byBin[stream.Reviews]); n != 1 {
		t.Fatalf("reviews: want 1, got %d", n)
	}

	if !event.Equivalent(wantRev, r.byBin[stream.Reviews][0]) {
		t.Fatalf("review envelope: %+v", r.byBin[stream.Reviews][0])
	}

	// products dispatches before the sub-resource events it causes
	if r.order[0] != stream.Products {
		t.Fatalf("dispatch order: %v", r.order)
	}
}

func TestSubmitCreate_PreservesListOrder(t *testing.T) {
	o, r := newTestOrchestrator()

	agg := composite.ProductAggregate{ProductID: 4, Name: "n", Weight: 1}
	for i := 1; i <= 5; i++ {
		agg.Recommendations = append(agg.Recommendations, composite.RecommendationSummary{
			RecommendationID: i, Author: "a", Rate: i, Content: "c",
		})
	}

	if err := o.SubmitCreate(context.Background(), agg); err != nil {
		t.Fatalf("submit create: %v", err)
	}

	got := r.byBin[stream.Recommendations]
	if len(got) != 5 {
		t.Fatalf("want 5 recommendation envelopes, got %d", len(got))
	}

	for i, env := range got {
		want, err := event.NewCreate(4, event.Recommendation{
			ProductID: 4, RecommendationID: i + 1, Author: "a", Rate: i + 1, Content: "c",
		})
		if err != nil {
			t.Fatalf("expected envelope: %v", err)
		}

		if !event.Equivalent(want, env) {
			t.Fatalf("list order broken at %d: %+v", i, env)
		}
	}
}

func TestSubmitCreate_MalformedRejectedBeforeDispatch(t *testing.T) {
	o, r := newTestOrchestrator()

	agg := composite.ProductAggregate{
		ProductID: 1,
		Name:      "name",
		Recommendations: []composite.RecommendationSummary{
			{RecommendationID: 1, Author: "a"},
			{RecommendationID: 0, Author: "b"}, // malformed mid-list
		},
	}

	err := o.SubmitCreate(context.Background(), agg)
	if !errors.Is(err, perr.ErrMalformedAggregate) {
		t.Fatalf("want ErrMalformedAggregate, got %v", err)
	}

	// no partial fan-out: nothing at all was dispatched
	if len(r.order) != 0 {
		t.Fatalf("partial fan-out: %v", r.order)
	}
}

func TestSubmitDelete_TripleUnconditional(t *testing.T) {
	o, r := newTestOrchestrator()

	if err := o.SubmitDelete(context.Background(), 1); err != nil {
		t.Fatalf("submit delete: %v", err)
	}

	want := event.NewDelete(1)

	for _, b := range stream.Bindings() {
		got := r.byBin[b]
		if len(got) != 1 {
			t.Fatalf("%s: want 1 DELETE envelope, got %d", b, len(got))
		}

		if !event.Equivalent(want, got[0]) {
			t.Fatalf("%s envelope: %+v", b, got[0])
		}

		if got[0].Payload != nil {
			t.Fatalf("%s: DELETE payload must be null, got %s", b, got[0].Payload)
		}
	}
}

func TestSubmitDelete_BadID(t *testing.T) {
	o, r := newTestOrchestrator()

	if err := o.SubmitDelete(context.Background(), 0); !errors.Is(err, perr.ErrMalformedAggregate) {
		t.Fatalf("want ErrMalformedAggregate, got %v", err)
	}

	if len(r.order) != 0 {
		t.Fatalf("nothing must be dispatched for a bad id: %v", r.order)
	}
}

func TestSubmit_EmitterFailurePropagates(t *testing.T) {
	o, r := newTestOrchestrator()
	r.fail = errors.New("publisher closed")

	if err := o.SubmitCreate(context.Background(), composite.ProductAggregate{ProductID: 1}); err == nil {
		t.Fatalf("expected error")
	}

	if err := o.SubmitDelete(context.Background(), 1); err == nil {
		t.Fatalf("expected error")
	}
}
