package composite_test

import (
	"errors"
	"testing"

	"github.com/next-trace/scg-product-events/contract/composite"
	perr "github.com/next-trace/scg-product-events/contract/errors"
)

func TestValidate_OK(t *testing.T) {
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

	if err := agg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	// Empty sub-resource lists are a valid, common case.
	if err := (composite.ProductAggregate{ProductID: 2}).Validate(); err != nil {
		t.Fatalf("validate empty lists: %v", err)
	}
}

func TestValidate_Malformed(t *testing.T) {
	tests := []struct {
		name string
		agg  composite.ProductAggregate
	}{
		{"zero product id", composite.ProductAggregate{ProductID: 0}},
		{"negative product id", composite.ProductAggregate{ProductID: -3}},
		{"bad recommendation id", composite.ProductAggregate{
			ProductID:       1,
			Recommendations: []composite.RecommendationSummary{{RecommendationID: 0}},
		}},
		{"bad review id", composite.ProductAggregate{
			ProductID: 1,
			Reviews:   []composite.ReviewSummary{{ReviewID: -1}},
		}},
	}

	for _, tc := range tests {
		if err := tc.agg.Validate(); !errors.Is(err, perr.ErrMalformedAggregate) {
			t.Fatalf("%s: want ErrMalformedAggregate, got %v", tc.name, err)
		}
	}
}
