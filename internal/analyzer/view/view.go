// Package view projects a ProductReport onto the regions of the results page.
package view

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/AlexandruDodita/AmazonProductScraper/internal/report"
)

const (
	altTextLimit      = 50
	excerptLimit      = 200
	maxReviews        = 3
	ellipsis          = "..."
	similarImageDummy = "https://via.placeholder.com/100"
	similarAltDummy   = "Similar product"
	similarTitleDummy = "Product"
)

// Page is the rendered form of one report.
type Page struct {
	ImageURL    string
	ImageAlt    string
	Title       string
	Price       string
	Description string
	Specs       []SpecRow
	Summary     template.HTML
	Pros        []string
	Cons        []string
	Reviews     []ReviewCard
	Similar     []SimilarCard
}

// HasSimilar reports whether the similar products region should be shown.
func (p Page) HasSimilar() bool { return len(p.Similar) > 0 }

// SpecRow is one row of the specifications table.
type SpecRow struct {
	Label string
	Value string
}

// ReviewCard is an excerpt of a top review.
type ReviewCard struct {
	Title       string
	Reviewer    string
	Rating      string
	Date        string
	Excerpt     string
	ReadMoreURL string
}

// SimilarCard is one similar product tile.
type SimilarCard struct {
	ImageURL string
	ImageAlt string
	Title    string
}

var (
	summaryPolicy = newSummaryPolicy()
	markdown      = goldmark.New()
)

// Option adjusts how a report is projected.
type Option func(*options)

type options struct {
	markdownSummary bool
}

// WithMarkdownSummary renders the AI summary as sanitized markdown instead of
// plain text.
func WithMarkdownSummary() Option {
	return func(o *options) {
		o.markdownSummary = true
	}
}

func newSummaryPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return policy
}

// Project validates r and builds the page regions from it. Text fields are
// copied verbatim; escaping is left to the template. r is not modified.
func Project(r *report.ProductReport, opts ...Option) (Page, error) {
	if err := report.Validate(r); err != nil {
		return Page{}, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	details := r.ProductDetails
	description := details.Description

	page := Page{
		ImageURL:    strings.TrimSpace(details.ImageURL),
		ImageAlt:    truncate(description, altTextLimit) + ellipsis,
		Title:       titleOf(description),
		Price:       details.Price,
		Description: description,
		Pros:        clone(r.AISummary.Pros),
		Cons:        clone(r.AISummary.Cons),
	}

	for _, spec := range details.Specifications.All() {
		page.Specs = append(page.Specs, SpecRow{Label: spec.Label, Value: spec.Value})
	}

	if o.markdownSummary {
		summary, err := renderSummary(r.AISummary.Summary)
		if err != nil {
			return Page{}, err
		}
		page.Summary = summary
	} else {
		page.Summary = template.HTML(template.HTMLEscapeString(r.AISummary.Summary))
	}

	reviews := r.ReviewData.Reviews
	if len(reviews) > maxReviews {
		reviews = reviews[:maxReviews]
	}
	for _, rv := range reviews {
		page.Reviews = append(page.Reviews, ReviewCard{
			Title:       rv.Title,
			Reviewer:    rv.ReviewerName,
			Rating:      strconv.FormatFloat(rv.Rating, 'f', -1, 64) + " stars",
			Date:        rv.Date,
			Excerpt:     excerpt(rv.Text),
			ReadMoreURL: r.URL,
		})
	}

	for _, sp := range r.SimilarProducts {
		card := SimilarCard{
			ImageURL: strings.TrimSpace(sp.ImageURL),
			ImageAlt: sp.Title,
			Title:    sp.Title,
		}
		if card.ImageURL == "" {
			card.ImageURL = similarImageDummy
		}
		if card.ImageAlt == "" {
			card.ImageAlt = similarAltDummy
		}
		if card.Title == "" {
			card.Title = similarTitleDummy
		}
		page.Similar = append(page.Similar, card)
	}

	return page, nil
}

func renderSummary(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("view: render summary: %w", err)
	}
	return template.HTML(summaryPolicy.SanitizeBytes(buf.Bytes())), nil
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// titleOf returns the description up to its first hyphen.
func titleOf(description string) string {
	if idx := strings.Index(description, "-"); idx >= 0 {
		return description[:idx]
	}
	return description
}

func excerpt(s string) string {
	if utf8.RuneCountInString(s) > excerptLimit {
		return truncate(s, excerptLimit) + ellipsis
	}
	return s
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
