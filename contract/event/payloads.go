package event

// Domain records carried as CREATE payloads, one per binding.

// Product is the payload on the products binding, built from the aggregate's
// own fields with the sub-resource lists stripped.
type Product struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Weight int    `json:"weight"`
}

// Recommendation is the payload on the recommendations binding, describing a
// single recommendation of one product.
type Recommendation struct {
	ProductID        int    `json:"productId"`
	RecommendationID int    `json:"recommendationId"`
	Author           string `json:"author"`
	Rate             int    `json:"rate"`
	Content          string `json:"content"`
}

// Review is the payload on the reviews binding, describing a single review of
// one product.
type Review struct {
	ProductID int    `json:"productId"`
	ReviewID  int    `json:"reviewId"`
	Author    string `json:"author"`
	Subject   string `json:"subject"`
	Content   string `json:"content"`
}
