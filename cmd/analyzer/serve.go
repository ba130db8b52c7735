package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AlexandruDodita/AmazonProductScraper/internal/analyzer/fixture"
	"github.com/AlexandruDodita/AmazonProductScraper/internal/analyzer/httpserver"
	"github.com/AlexandruDodita/AmazonProductScraper/internal/analyzer/session"
	"github.com/AlexandruDodita/AmazonProductScraper/internal/analyzer/ui"
	"github.com/AlexandruDodita/AmazonProductScraper/internal/platform/config"
	"github.com/AlexandruDodita/AmazonProductScraper/internal/platform/observability"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

type serveOptions struct {
	port       string
	root       string
	configFile string
	envFile    string
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyzer pages and the content root",
		Args:  cobra.NoArgs,
		RunE:  opts.run,
	}
	opts.bindFlags(cmd)
	return cmd
}

// bindFlags registers the serve flags on cmd. The root command shares them so
// a bare invocation serves.
func (o *serveOptions) bindFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.port, "port", "", "listen port (overrides ANALYZER_PORT)")
	cmd.Flags().StringVar(&o.root, "root", "", "content root directory (overrides ANALYZER_CONTENT_ROOT)")
	cmd.Flags().StringVar(&o.configFile, "config", "", "optional YAML configuration file")
	cmd.Flags().StringVar(&o.envFile, "env-file", ".env", "dotenv file read when present")
}

func (o *serveOptions) run(cmd *cobra.Command, _ []string) error {
	cfg, err := o.load(cmd.Context())
	if err != nil {
		return err
	}
	return serve(cmd.Context(), cfg)
}

func (o *serveOptions) load(ctx context.Context) (config.Config, error) {
	overrides := map[string]string{}
	if p := strings.TrimSpace(o.port); p != "" {
		overrides["ANALYZER_PORT"] = p
	}
	if r := strings.TrimSpace(o.root); r != "" {
		overrides["ANALYZER_CONTENT_ROOT"] = r
	}

	loadOpts := []config.Option{config.WithEnvFile(o.envFile), config.WithEnvMap(overrides)}
	if f := strings.TrimSpace(o.configFile); f != "" {
		loadOpts = append(loadOpts, config.WithYAMLFile(f))
	}
	cfg, err := config.Load(ctx, loadOpts...)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg config.Config) error {
	baseLogger, err := observability.NewLogger(observability.LoggerOptions{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return fmt.Errorf("initialise logger: %w", err)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("analyzer").With(zap.String("environment", cfg.UI.Environment))

	store := ui.NewStore(ui.WithIdleTTL(cfg.Session.IdleTimeout))
	server, err := httpserver.New(httpserver.Config{
		Address:         cfg.Server.Address(),
		BasePath:        cfg.UI.BasePath,
		ContentRoot:     cfg.Content.Root,
		IndexFile:       cfg.Content.IndexFile,
		TemplatesDir:    cfg.UI.TemplatesDir,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		RequestTimeout:  cfg.Server.RequestTimeout,
		MarkdownSummary: cfg.UI.MarkdownSummary,
		Logger:          logger,
		Loader:          newLoader(cfg),
		Store:           store,
		Session: session.Config{
			CookieName:   cfg.Session.CookieName,
			HashKey:      []byte(cfg.Session.HashKey),
			CookieSecure: cfg.Session.Secure,
			IdleTimeout:  cfg.Session.IdleTimeout,
		},
	})
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))

	g.Go(func() error {
		serverLogger.Info("analyzer listening",
			zap.String("content_root", cfg.Content.Root),
			zap.String("analyzer_path", cfg.UI.BasePath+"/"),
			zap.String("fixture_source", cfg.Fixture.Source),
			zap.Bool("dev_templates", cfg.UI.DevMode()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return store.Run(ctx, sweepInterval)
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutdown signal received; draining requests")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			return err
		}
		return nil
	})

	return g.Wait()
}

// newLoader picks the fixture source. Both read the same document; the HTTP
// source goes through the server's own static responder.
func newLoader(cfg config.Config) fixture.Loader {
	if cfg.Fixture.Source == config.FixtureSourceFile {
		return fixture.FileLoader{
			Path: filepath.Join(cfg.Content.Root, filepath.FromSlash(strings.TrimLeft(cfg.Fixture.Path, "/"))),
		}
	}
	return fixture.HTTPLoader{
		Client:  &http.Client{},
		BaseURL: cfg.Fixture.BaseURL,
		Path:    cfg.Fixture.Path,
	}
}
