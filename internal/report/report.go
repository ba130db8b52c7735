// Package report models the ProductReport document produced by the analyzer
// pipeline: scraped product details, reviews with their aggregate analysis,
// an AI-generated summary and similar products.
package report

import (
	"fmt"
)

// ProductReport is the document describing one analyzed product.
type ProductReport struct {
	URL             string           `json:"url"`
	ProductDetails  *ProductDetails  `json:"product_details"`
	ReviewData      *ReviewData      `json:"review_data"`
	AISummary       *AISummary       `json:"ai_summary"`
	SimilarProducts []SimilarProduct `json:"similar_products,omitempty"`
}

// ProductDetails holds the scraped description and specification table.
type ProductDetails struct {
	Description    string         `json:"description"`
	Specifications Specifications `json:"specifications"`
	ImageURL       string         `json:"image_url"`
	Price          string         `json:"price"`
}

// ReviewData groups the scraped reviews with their aggregate analysis.
type ReviewData struct {
	Reviews  []Review        `json:"reviews"`
	Analysis *ReviewAnalysis `json:"analysis,omitempty"`
}

// Review is a single customer review.
type Review struct {
	ReviewerName     string  `json:"reviewer_name"`
	Title            string  `json:"title"`
	Rating           float64 `json:"rating"`
	Date             string  `json:"date"`
	Text             string  `json:"text"`
	VerifiedPurchase bool    `json:"verified_purchase"`
	HelpfulVotes     int     `json:"helpful_votes"`
}

// ReviewAnalysis carries aggregate review counts.
type ReviewAnalysis struct {
	AverageRating float64        `json:"average_rating"`
	TotalReviews  int            `json:"total_reviews"`
	RatingCounts  map[string]int `json:"rating_counts,omitempty"`
}

// AISummary is the generated review summary.
type AISummary struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points"`
	Pros      []string `json:"pros"`
	Cons      []string `json:"cons"`
	Sentiment string   `json:"sentiment"`
}

// SimilarProduct is a related listing shown next to the product.
type SimilarProduct struct {
	Title     string `json:"title"`
	ImageURL  string `json:"image_url"`
	Price     string `json:"price"`
	URL       string `json:"url,omitempty"`
	PriceText string `json:"price_text,omitempty"`
}

// MissingFieldError reports an expected field absent from a report.
type MissingFieldError struct {
	Field string
}

// Error implements the error interface.
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("report: missing required field %q", e.Field)
}

// Validate checks that every field the page projection relies on is present.
// It returns the first missing field in document order.
func Validate(r *ProductReport) error {
	if r == nil {
		return &MissingFieldError{Field: "report"}
	}
	switch {
	case r.ProductDetails == nil:
		return &MissingFieldError{Field: "product_details"}
	case !r.ProductDetails.Specifications.Present():
		return &MissingFieldError{Field: "product_details.specifications"}
	case r.ReviewData == nil:
		return &MissingFieldError{Field: "review_data"}
	case r.ReviewData.Reviews == nil:
		return &MissingFieldError{Field: "review_data.reviews"}
	case r.AISummary == nil:
		return &MissingFieldError{Field: "ai_summary"}
	case r.AISummary.Pros == nil:
		return &MissingFieldError{Field: "ai_summary.pros"}
	case r.AISummary.Cons == nil:
		return &MissingFieldError{Field: "ai_summary.cons"}
	}
	return nil
}
