// Package fixture loads the ProductReport shown by the analyzer page.
//
// The analyzer is a demo: the product URL a visitor submits is validated but
// never forwarded. Every load requests the same local fixture document.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AlexandruDodita/AmazonProductScraper/internal/platform/observability"
	"github.com/AlexandruDodita/AmazonProductScraper/internal/report"
)

// Loader retrieves a product report.
type Loader interface {
	Load(ctx context.Context) (*report.ProductReport, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context) (*report.ProductReport, error)

// Load calls f(ctx).
func (f LoaderFunc) Load(ctx context.Context) (*report.ProductReport, error) {
	return f(ctx)
}

// StatusError is returned when the fixture endpoint answers with a non-2xx status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! Status: %d", e.StatusCode)
}

const tracerName = "analyzer.fixture"

// HTTPLoader fetches the fixture document over HTTP with a single GET.
// Client has no timeout of its own; only the request context aborts a fetch.
type HTTPLoader struct {
	Client  *http.Client
	BaseURL string
	Path    string
}

// Load implements Loader.
func (l HTTPLoader) Load(ctx context.Context) (*report.ProductReport, error) {
	endpoint, err := l.endpoint()
	if err != nil {
		return nil, err
	}

	ctx, span := observability.Tracer(tracerName).Start(ctx, "fixture.Load",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("fixture.source", "http"),
			attribute.String("url.full", endpoint),
		))
	defer span.End()

	r, err := l.fetch(ctx, endpoint)
	if err != nil {
		recordFailure(span, err)
		return nil, err
	}
	return r, nil
}

func (l HTTPLoader) endpoint() (string, error) {
	base := strings.TrimRight(strings.TrimSpace(l.BaseURL), "/")
	if base == "" {
		return "", errors.New("fixture: base url is required")
	}
	path := "/" + strings.TrimLeft(strings.TrimSpace(l.Path), "/")
	endpoint := base + path
	if _, err := url.Parse(endpoint); err != nil {
		return "", fmt.Errorf("fixture: invalid endpoint: %w", err)
	}
	return endpoint, nil
}

func (l HTTPLoader) fetch(ctx context.Context, endpoint string) (*report.ProductReport, error) {
	client := l.Client
	if client == nil {
		client = &http.Client{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}
	return report.DecodeReader(resp.Body)
}

// FileLoader reads the fixture document from disk.
type FileLoader struct {
	Path string
}

// Load implements Loader.
func (l FileLoader) Load(ctx context.Context) (*report.ProductReport, error) {
	_, span := observability.Tracer(tracerName).Start(ctx, "fixture.Load",
		trace.WithAttributes(
			attribute.String("fixture.source", "file"),
			attribute.String("file.path", l.Path),
		))
	defer span.End()

	data, err := os.ReadFile(l.Path)
	if err != nil {
		recordFailure(span, err)
		return nil, fmt.Errorf("fixture: read %s: %w", l.Path, err)
	}
	r, err := report.Decode(data)
	if err != nil {
		recordFailure(span, err)
		return nil, err
	}
	return r, nil
}

func recordFailure(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		span.SetAttributes(attribute.Int("http.response.status_code", statusErr.StatusCode))
	}
}
