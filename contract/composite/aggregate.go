package composite

import (
	"fmt"

	perr "github.com/next-trace/scg-product-events/contract/errors"
)

// ProductAggregate is the inbound create request: one product bundled with
// zero or more recommendation and review summaries. The sequences are ordered;
// fan-out preserves their order on the respective bindings.
type ProductAggregate struct {
	ProductID       int                     `json:"productId"`
	Name            string                  `json:"name"`
	Weight          int                     `json:"weight"`
	Recommendations []RecommendationSummary `json:"recommendations,omitempty"`
	Reviews         []ReviewSummary         `json:"reviews,omitempty"`
}

// RecommendationSummary is one recommendation entry of an aggregate request.
type RecommendationSummary struct {
	RecommendationID int    `json:"recommendationId"`
	Author           string `json:"author"`
	Rate             int    `json:"rate"`
	Content          string `json:"content"`
}

// ReviewSummary is one review entry of an aggregate request.
type ReviewSummary struct {
	ReviewID int    `json:"reviewId"`
	Author   string `json:"author"`
	Subject  string `json:"subject"`
	Content  string `json:"content"`
}

// Validate rejects malformed aggregates before any event is derived, so a
// bad entry mid-list can never cause a partial fan-out.
func (a ProductAggregate) Validate() error {
	if a.ProductID < 1 {
		return fmt.Errorf("product id %d: %w", a.ProductID, perr.ErrMalformedAggregate)
	}

	for i, r := range a.Recommendations {
		if r.RecommendationID < 1 {
			return fmt.Errorf("recommendation[%d] id %d: %w", i, r.RecommendationID, perr.ErrMalformedAggregate)
		}
	}

	for i, r := range a.Reviews {
		if r.ReviewID < 1 {
			return fmt.Errorf("review[%d] id %d: %w", i, r.ReviewID, perr.ErrMalformedAggregate)
		}
	}

	return nil
}
