// Package testutil starts the analyzer HTTP stack for integration tests.
package testutil

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/AlexandruDodita/AmazonProductScraper/internal/analyzer/fixture"
	"github.com/AlexandruDodita/AmazonProductScraper/internal/analyzer/httpserver"
	"github.com/AlexandruDodita/AmazonProductScraper/internal/analyzer/session"
	"github.com/AlexandruDodita/AmazonProductScraper/internal/analyzer/ui"
	"github.com/AlexandruDodita/AmazonProductScraper/internal/report"
)

// FixtureDocument is the report served as /review.json by default.
const FixtureDocument = `{
  "url": "https://www.amazon.com/dp/B0TESTKETL",
  "product_details": {
    "description": "Steel Kettle - 1.7L cordless kettle with auto shut-off",
    "specifications": {
      "Brand": "Acme",
      "Capacity": "1.7 Liters",
      "Material": "Stainless Steel",
      "ASIN": "B0TESTKETL"
    },
    "image_url": "https://example.com/kettle.jpg",
    "price": "$34.99"
  },
  "review_data": {
    "reviews": [
      {"reviewer_name": "Ann", "title": "Boils fast", "rating": 5.0, "date": "Reviewed on May 1, 2025", "text": "Boils a full jug in under four minutes.", "verified_purchase": true, "helpful_votes": 3},
      {"reviewer_name": "Ben", "title": "Loud", "rating": 3.5, "date": "Reviewed on May 2, 2025", "text": "Works well but the base clicks loudly when it switches off, which wakes the baby every single morning without fail. I have tried every outlet in the kitchen and it makes no difference at all. Still, it boils quickly and the handle stays cool.", "verified_purchase": true, "helpful_votes": 1},
      {"reviewer_name": "Cy", "title": "Fine", "rating": 4.0, "date": "Reviewed on May 3, 2025", "text": "Does the job.", "verified_purchase": false, "helpful_votes": 0},
      {"reviewer_name": "Dee", "title": "Hidden fourth", "rating": 1.0, "date": "Reviewed on May 4, 2025", "text": "Should not be shown.", "verified_purchase": false, "helpful_votes": 0}
    ],
    "analysis": {"average_rating": 3.4, "total_reviews": 4, "rating_counts": {"1_star": 1, "3_star": 1, "4_star": 1, "5_star": 1}}
  },
  "ai_summary": {
    "summary": "Buyers like how **fast** it boils.",
    "key_points": ["Fast", "Loud click"],
    "pros": ["Fast boil", "Cool handle"],
    "cons": ["Loud base"],
    "sentiment": "positive"
  },
  "similar_products": [
    {"title": "Glass Kettle", "image_url": "", "price": "$29.99"}
  ]
}`

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*options)

type options struct {
	cfg      httpserver.Config
	files    map[string]string
	selfLoad bool
}

// WithLoader replaces the default loader, which fetches /review.json from the
// test server itself.
func WithLoader(loader fixture.Loader) ServerOption {
	return func(o *options) {
		o.cfg.Loader = loader
		o.selfLoad = false
	}
}

// WithBasePath sets a custom base path for the analyzer routes.
func WithBasePath(path string) ServerOption {
	return func(o *options) {
		o.cfg.BasePath = path
	}
}

// WithContentFile adds or replaces a file under the content root. An empty
// body removes the default file of that name.
func WithContentFile(name, body string) ServerOption {
	return func(o *options) {
		o.files[name] = body
	}
}

// WithStore shares a model store with the test.
func WithStore(store *ui.Store) ServerOption {
	return func(o *options) {
		o.cfg.Store = store
	}
}

// WithMarkdownSummary renders the AI summary as markdown.
func WithMarkdownSummary() ServerOption {
	return func(o *options) {
		o.cfg.MarkdownSummary = true
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *zap.Logger) ServerOption {
	return func(o *options) {
		o.cfg.Logger = logger
	}
}

// NewServer constructs an httptest server running the analyzer HTTP stack with sensible defaults.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	o := &options{
		cfg: httpserver.Config{
			Address:  ":0",
			BasePath: "/analyzer",
			Session:  session.Config{HashKey: []byte("0123456789abcdef0123456789abcdef")},
			Store:    ui.NewStore(),
		},
		files: map[string]string{
			"index.html":  `<!DOCTYPE html><html><head><title>Home</title></head><body><a href="/analyzer/">Open analyzer</a></body></html>`,
			"review.json": FixtureDocument,
		},
		selfLoad: true,
	}
	for _, opt := range opts {
		opt(o)
	}

	root := t.TempDir()
	for name, body := range o.files {
		if body == "" {
			continue
		}
		full := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("create content dir: %v", err)
		}
		if err := os.WriteFile(full, []byte(body), 0o644); err != nil {
			t.Fatalf("write content file: %v", err)
		}
	}
	o.cfg.ContentRoot = root

	self := &selfLoader{}
	if o.selfLoad {
		o.cfg.Loader = self
	}

	srv, err := httpserver.New(o.cfg)
	if err != nil {
		t.Fatalf("httpserver.New: %v", err)
	}
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	self.bind(fixture.HTTPLoader{Client: ts.Client(), BaseURL: ts.URL, Path: "/review.json"})
	return ts
}

// NewClient returns a client with a cookie jar that does not follow redirects.
func NewClient(t testing.TB) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// selfLoader defers to an HTTP loader bound once the test server URL is known.
type selfLoader struct {
	mu     sync.Mutex
	loader fixture.Loader
}

func (s *selfLoader) bind(l fixture.Loader) {
	s.mu.Lock()
	s.loader = l
	s.mu.Unlock()
}

func (s *selfLoader) Load(ctx context.Context) (*report.ProductReport, error) {
	s.mu.Lock()
	l := s.loader
	s.mu.Unlock()
	return l.Load(ctx)
}
