// Package httpserver wires the analyzer pages, health check and static
// content responder onto one chi router.
package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/AlexandruDodita/AmazonProductScraper/internal/analyzer/fixture"
	"github.com/AlexandruDodita/AmazonProductScraper/internal/analyzer/session"
	"github.com/AlexandruDodita/AmazonProductScraper/internal/analyzer/ui"
	"github.com/AlexandruDodita/AmazonProductScraper/internal/analyzer/view"
	"github.com/AlexandruDodita/AmazonProductScraper/internal/platform/observability"
	"github.com/AlexandruDodita/AmazonProductScraper/internal/staticfs"
)

const (
	defaultBasePath       = "/analyzer"
	defaultRequestTimeout = 60 * time.Second
	defaultReadTimeout    = 15 * time.Second
	defaultWriteTimeout   = 75 * time.Second
	defaultIdleTimeout    = 120 * time.Second
)

// Config holds runtime options for the analyzer HTTP server.
type Config struct {
	Address      string
	BasePath     string
	ContentRoot  string
	IndexFile    string
	TemplatesDir string

	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration

	// MarkdownSummary renders the AI summary as markdown instead of plain text.
	MarkdownSummary bool

	Logger  *zap.Logger
	Loader  fixture.Loader
	Store   *ui.Store
	Session session.Config
}

// New constructs the HTTP server with its middleware stack and embedded assets.
func New(cfg Config) (*http.Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Loader == nil {
		return nil, errors.New("httpserver: fixture loader is required")
	}
	if strings.TrimSpace(cfg.ContentRoot) == "" {
		return nil, errors.New("httpserver: content root is required")
	}

	sessionCfg := cfg.Session
	if len(sessionCfg.HashKey) == 0 {
		logger.Warn("session hash key not configured; generated an ephemeral key, sessions will not survive restarts")
		sessionCfg.HashKey = session.GenerateKey()
	}
	sessions, err := session.NewManager(sessionCfg)
	if err != nil {
		return nil, err
	}

	tmpl, err := newRenderer(cfg.TemplatesDir)
	if err != nil {
		return nil, err
	}
	staticContent, err := staticFS()
	if err != nil {
		return nil, fmt.Errorf("embed static: %w", err)
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.InjectLoggerMiddleware(logger))
	router.Use(observability.TraceMiddleware())
	router.Use(observability.RequestLoggerMiddleware())
	router.Use(observability.RecoveryMiddleware(logger))
	router.Use(chimw.Timeout(durationOr(cfg.RequestTimeout, defaultRequestTimeout)))

	router.Get("/healthz", healthz)
	router.Handle("/public/static/*", http.StripPrefix("/public/static/", http.FileServer(http.FS(staticContent))))

	var serviceOpts []ui.ServiceOption
	if cfg.MarkdownSummary {
		serviceOpts = append(serviceOpts, ui.WithViewOptions(view.WithMarkdownSummary()))
	}

	base := normalizeBasePath(cfg.BasePath)
	mountAnalyzerRoutes(router, base, &handlers{
		service:  ui.NewService(cfg.Store, cfg.Loader, serviceOpts...),
		renderer: tmpl,
		base:     base,
	}, sessions)

	router.NotFound(staticfs.New(cfg.ContentRoot, staticfs.WithIndex(cfg.IndexFile)).ServeHTTP)

	return &http.Server{
		Addr:              cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       durationOr(cfg.ReadTimeout, defaultReadTimeout),
		WriteTimeout:      durationOr(cfg.WriteTimeout, defaultWriteTimeout),
		IdleTimeout:       durationOr(cfg.IdleTimeout, defaultIdleTimeout),
	}, nil
}

func mountAnalyzerRoutes(router chi.Router, base string, h *handlers, sessions *session.Manager) {
	router.Group(func(r chi.Router) {
		r.Use(noStore)
		r.Use(session.Middleware(sessions))

		r.Get(base, h.page)
		r.Get(base+"/", h.page)
		r.Post(base+"/analyze", h.analyze)
		r.Post(base+"/fallback", h.acceptFallback)
		r.Post(base+"/reset", h.reset)
	})
}

func normalizeBasePath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return defaultBasePath
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return defaultBasePath
	}
	return p
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
