package report

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

var summarySpecLabels = []string{"Brand", "Capacity", "Material", "Color", "Product Dimensions", "Item Weight"}

const maxSummarySimilar = 5

// WriteSummary prints a console digest of the report: product identity, key
// specifications, rating distribution, the AI summary and up to five similar
// products.
func WriteSummary(w io.Writer, r *ProductReport) error {
	if r == nil {
		return fmt.Errorf("report: nil report")
	}
	bw := bufio.NewWriter(w)
	rule := strings.Repeat("=", 80)
	thin := strings.Repeat("-", 80)

	fmt.Fprintf(bw, "\n%s\nAMAZON PRODUCT SUMMARY\n%s\n", rule, rule)

	if d := r.ProductDetails; d != nil {
		specs := d.Specifications
		brand, _ := specs.Get("Brand")
		title, _ := specs.Get("Title")
		asin, ok := specs.Get("ASIN")
		if !ok {
			asin = "Unknown"
		}
		fmt.Fprintf(bw, "\nProduct: %s %s\n", brand, title)
		fmt.Fprintf(bw, "ASIN: %s\n", asin)
		fmt.Fprintln(bw, "\nSpecifications:")
		for _, label := range summarySpecLabels {
			if v, ok := specs.Get(label); ok {
				fmt.Fprintf(bw, "  %s: %s\n", label, v)
			}
		}
	}

	if r.ReviewData != nil && r.ReviewData.Analysis != nil {
		a := r.ReviewData.Analysis
		fmt.Fprintf(bw, "\nTotal Reviews: %d\n", a.TotalReviews)
		fmt.Fprintf(bw, "Average Rating: %s stars\n", strconv.FormatFloat(a.AverageRating, 'f', -1, 64))
		if len(a.RatingCounts) > 0 {
			fmt.Fprintln(bw, "\nRating Distribution:")
			keys := make([]string, 0, len(a.RatingCounts))
			for k := range a.RatingCounts {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(bw, "  %s: %d reviews\n", k, a.RatingCounts[k])
			}
		}
	}

	if s := r.AISummary; s != nil {
		fmt.Fprintf(bw, "\n%s\nAI-GENERATED REVIEW SUMMARY\n%s\n", thin, thin)
		text := s.Summary
		if text == "" {
			text = "No summary available."
		}
		fmt.Fprintf(bw, "\n%s\n", text)
		writeBullets(bw, "Key Points", "•", s.KeyPoints)
		writeBullets(bw, "Pros", "✓", s.Pros)
		writeBullets(bw, "Cons", "✗", s.Cons)
	}

	if len(r.SimilarProducts) > 0 {
		fmt.Fprintf(bw, "\n%s\nSIMILAR PRODUCTS\n%s\n", thin, thin)
		for i, p := range r.SimilarProducts {
			if i == maxSummarySimilar {
				break
			}
			title := p.Title
			if title == "" {
				title = "Unknown"
			}
			fmt.Fprintf(bw, "%d. %s\n", i+1, title)
			fmt.Fprintf(bw, "   URL: %s\n", p.URL)
			if p.PriceText != "" {
				fmt.Fprintf(bw, "   Price: %s\n", p.PriceText)
			}
			fmt.Fprintln(bw)
		}
	}

	fmt.Fprintln(bw, rule)
	return bw.Flush()
}

func writeBullets(w io.Writer, heading, mark string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", heading)
	for _, item := range items {
		fmt.Fprintf(w, "%s %s\n", mark, item)
	}
}
