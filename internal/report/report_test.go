package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodePreservesSpecificationOrder(t *testing.T) {
	doc := []byte(`{
		"url": "https://www.amazon.com/dp/B000",
		"product_details": {
			"description": "Kettle - steel",
			"specifications": {"Zeta": "last letter", "Alpha": "first", "Capacity": 1.7, "Empty": null, "Escaped": "a \"quoted\" é"},
			"image_url": "https://example.com/k.jpg",
			"price": "$20"
		},
		"review_data": {"reviews": []},
		"ai_summary": {"summary": "ok", "pros": [], "cons": []}
	}`)

	r, err := Decode(doc)
	require.NoError(t, err)
	require.NoError(t, Validate(r))

	rows := r.ProductDetails.Specifications.All()
	labels := make([]string, 0, len(rows))
	for _, row := range rows {
		labels = append(labels, row.Label)
	}
	require.Equal(t, []string{"Zeta", "Alpha", "Capacity", "Empty", "Escaped"}, labels)

	capacity, ok := r.ProductDetails.Specifications.Get("Capacity")
	require.True(t, ok)
	require.Equal(t, "1.7", capacity)

	escaped, _ := r.ProductDetails.Specifications.Get("Escaped")
	require.Equal(t, `a "quoted" é`, escaped)

	empty, ok := r.ProductDetails.Specifications.Get("Empty")
	require.True(t, ok)
	require.Empty(t, empty)
}

func TestSpecificationsMarshalKeepsOrder(t *testing.T) {
	specs := NewSpecifications(
		Specification{Label: "Weight", Value: "1 lb"},
		Specification{Label: "Brand", Value: "Acme"},
	)
	out, err := json.Marshal(specs)
	require.NoError(t, err)
	require.JSONEq(t, `{"Weight":"1 lb","Brand":"Acme"}`, string(out))
	require.Less(t, bytes.Index(out, []byte("Weight")), bytes.Index(out, []byte("Brand")))
}

func TestSpecificationsRejectNonObject(t *testing.T) {
	_, err := Decode([]byte(`{"product_details": {"specifications": ["a", "b"]}}`))
	require.Error(t, err)
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`{"url": `))
	require.Error(t, err)
}

func TestValidateReportsFirstMissingField(t *testing.T) {
	cases := []struct {
		name  string
		doc   string
		field string
	}{
		{"no details", `{"review_data":{"reviews":[]},"ai_summary":{"pros":[],"cons":[]}}`, "product_details"},
		{"null specs", `{"product_details":{"specifications":null},"review_data":{"reviews":[]},"ai_summary":{"pros":[],"cons":[]}}`, "product_details.specifications"},
		{"no review data", `{"product_details":{"specifications":{}},"ai_summary":{"pros":[],"cons":[]}}`, "review_data"},
		{"no reviews", `{"product_details":{"specifications":{}},"review_data":{},"ai_summary":{"pros":[],"cons":[]}}`, "review_data.reviews"},
		{"no summary", `{"product_details":{"specifications":{}},"review_data":{"reviews":[]}}`, "ai_summary"},
		{"no pros", `{"product_details":{"specifications":{}},"review_data":{"reviews":[]},"ai_summary":{"cons":[]}}`, "ai_summary.pros"},
		{"no cons", `{"product_details":{"specifications":{}},"review_data":{"reviews":[]},"ai_summary":{"pros":[]}}`, "ai_summary.cons"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := Decode([]byte(tc.doc))
			require.NoError(t, err)

			err = Validate(r)
			var missing *MissingFieldError
			require.True(t, errors.As(err, &missing))
			require.Equal(t, tc.field, missing.Field)
		})
	}

	require.Error(t, Validate(nil))
}

func TestFallbackIsCompleteAndIndependent(t *testing.T) {
	first := Fallback()
	require.NoError(t, Validate(first))
	require.Equal(t, "https://www.amazon.com/sample-product", first.URL)
	require.Len(t, first.ReviewData.Reviews, 3)
	require.Len(t, first.SimilarProducts, 2)
	require.Equal(t, []string{"Brand", "Model", "Color", "Dimensions", "Weight"}, labelsOf(first.ProductDetails.Specifications))

	first.ReviewData.Reviews = nil
	second := Fallback()
	require.Len(t, second.ReviewData.Reviews, 3)
}

func TestWriteSummary(t *testing.T) {
	r := Fallback()
	r.SimilarProducts = append(r.SimilarProducts, SimilarProduct{Title: "Kettle", URL: "https://www.amazon.com/dp/K", PriceText: "$12.00"})

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, r))
	out := buf.String()

	require.Contains(t, out, "AMAZON PRODUCT SUMMARY")
	require.Contains(t, out, "Product: Sample Brand \n")
	require.Contains(t, out, "ASIN: Unknown")
	require.Contains(t, out, "  Color: Blue")
	require.NotContains(t, out, "  Model:")
	require.Contains(t, out, "Total Reviews: 3")
	require.Contains(t, out, "Average Rating: 4 stars")
	require.Contains(t, out, "  3_star: 1 reviews")
	require.Less(t, strings.Index(out, "1_star"), strings.Index(out, "5_star"))
	require.Contains(t, out, "• Easy to use")
	require.Contains(t, out, "✓ High quality materials")
	require.Contains(t, out, "✗ Minor design issues")
	require.Contains(t, out, "3. Kettle\n   URL: https://www.amazon.com/dp/K\n   Price: $12.00")
	require.NotContains(t, out, "1. Similar Product 1\n   URL: \n   Price")
}

func TestWriteSummaryPlaceholders(t *testing.T) {
	r := &ProductReport{
		AISummary:       &AISummary{},
		SimilarProducts: []SimilarProduct{{}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, r))
	require.Contains(t, buf.String(), "No summary available.")
	require.Contains(t, buf.String(), "1. Unknown")
	require.NotContains(t, buf.String(), "Pros:")
}

func labelsOf(s Specifications) []string {
	var out []string
	for _, row := range s.All() {
		out = append(out, row.Label)
	}
	return out
}
