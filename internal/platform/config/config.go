package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile            = ".env"
	defaultPort               = "8000"
	defaultReadTimeout        = 15 * time.Second
	defaultWriteTimeout       = 75 * time.Second
	defaultIdleTimeout        = 120 * time.Second
	defaultRequestTimeout     = 60 * time.Second
	defaultContentRoot        = "public"
	defaultIndexFile          = "index.html"
	defaultFixturePath        = "/review.json"
	defaultBasePath           = "/analyzer"
	defaultEnvironment        = "development"
	defaultSessionCookieName  = "analyzer_session"
	defaultSessionIdleTimeout = 30 * time.Minute
	defaultLogLevel           = "info"
	defaultLogFormat          = "json"

	// FixtureSourceHTTP fetches the fixture over HTTP from the server's own content root.
	FixtureSourceHTTP = "http"
	// FixtureSourceFile reads the fixture straight from disk.
	FixtureSourceFile = "file"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server  ServerConfig
	Content ContentConfig
	Fixture FixtureConfig
	UI      UIConfig
	Session SessionConfig
	Log     LogConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// Address returns the listen address for the configured port.
func (s ServerConfig) Address() string {
	return ":" + s.Port
}

// ContentConfig locates the static content root.
type ContentConfig struct {
	Root      string
	IndexFile string
}

// FixtureConfig describes where the analyzer loads its report document from.
type FixtureConfig struct {
	Path    string
	BaseURL string
	Source  string
}

// UIConfig controls the analyzer pages.
type UIConfig struct {
	BasePath        string
	TemplatesDir    string
	Environment     string
	MarkdownSummary bool
}

// DevMode reports whether templates should be reparsed on every request.
func (u UIConfig) DevMode() bool {
	return strings.TrimSpace(u.TemplatesDir) != ""
}

// SessionConfig controls the analyzer session cookie.
type SessionConfig struct {
	CookieName  string
	HashKey     string
	Secure      bool
	IdleTimeout time.Duration
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level  string
	Format string
}

// ValidationError is returned when configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	yamlFile     string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithYAMLFile layers a YAML config file underneath the environment.
func WithYAMLFile(path string) Option {
	return func(o *loaderOptions) {
		o.yamlFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the configuration from defaults, an optional YAML file, .env overrides,
// environment variables and an explicit map, in increasing order of precedence.
func Load(_ context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	yamlValues, err := loadYAMLFile(options.yamlFile)
	if err != nil {
		return Config{}, err
	}
	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if value, ok := dotEnvValues[key]; ok {
			return value, true
		}
		if value, ok := yamlValues[key]; ok {
			return value, true
		}
		return "", false
	}

	port := stringWithDefault(lookup, "ANALYZER_PORT", "")
	if port == "" {
		port = stringWithDefault(lookup, "PORT", defaultPort)
	}

	cfg := Config{
		Server: ServerConfig{
			Port:           port,
			ReadTimeout:    durationWithDefault(lookup, "ANALYZER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:   durationWithDefault(lookup, "ANALYZER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:    durationWithDefault(lookup, "ANALYZER_IDLE_TIMEOUT", defaultIdleTimeout),
			RequestTimeout: durationWithDefault(lookup, "ANALYZER_REQUEST_TIMEOUT", defaultRequestTimeout),
		},
		Content: ContentConfig{
			Root:      stringWithDefault(lookup, "ANALYZER_CONTENT_ROOT", defaultContentRoot),
			IndexFile: stringWithDefault(lookup, "ANALYZER_INDEX_FILE", defaultIndexFile),
		},
		Fixture: FixtureConfig{
			Path:    stringWithDefault(lookup, "ANALYZER_FIXTURE_PATH", defaultFixturePath),
			BaseURL: stringWithDefault(lookup, "ANALYZER_FIXTURE_BASE_URL", ""),
			Source:  strings.ToLower(stringWithDefault(lookup, "ANALYZER_FIXTURE_SOURCE", FixtureSourceHTTP)),
		},
		UI: UIConfig{
			BasePath:        normalizeBasePath(stringWithDefault(lookup, "ANALYZER_BASE_PATH", defaultBasePath)),
			TemplatesDir:    stringWithDefault(lookup, "ANALYZER_TEMPLATES_DIR", ""),
			Environment:     strings.ToLower(stringWithDefault(lookup, "ANALYZER_ENV", defaultEnvironment)),
			MarkdownSummary: boolWithDefault(lookup, "ANALYZER_MARKDOWN_SUMMARY", false),
		},
		Session: SessionConfig{
			CookieName:  stringWithDefault(lookup, "ANALYZER_SESSION_COOKIE", defaultSessionCookieName),
			HashKey:     stringWithDefault(lookup, "ANALYZER_SESSION_HASH_KEY", ""),
			Secure:      boolWithDefault(lookup, "ANALYZER_SESSION_SECURE", false),
			IdleTimeout: durationWithDefault(lookup, "ANALYZER_SESSION_IDLE_TIMEOUT", defaultSessionIdleTimeout),
		},
		Log: LogConfig{
			Level:  strings.ToLower(stringWithDefault(lookup, "LOG_LEVEL", defaultLogLevel)),
			Format: strings.ToLower(stringWithDefault(lookup, "ANALYZER_LOG_FORMAT", defaultLogFormat)),
		},
	}

	// The fixture is served by this process unless pointed elsewhere.
	if cfg.Fixture.BaseURL == "" {
		cfg.Fixture.BaseURL = "http://127.0.0.1:" + cfg.Server.Port
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var invalid []string

	// The fixture base URL is derived from the port, so an ephemeral port is refused.
	if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port < 1 || port > 65535 {
		invalid = append(invalid, "Server.Port")
	}
	if cfg.Server.ReadTimeout <= 0 {
		invalid = append(invalid, "Server.ReadTimeout")
	}
	if cfg.Server.RequestTimeout <= 0 {
		invalid = append(invalid, "Server.RequestTimeout")
	}
	// A write deadline at or below the handler timeout cuts the connection
	// before the handler can answer.
	if cfg.Server.WriteTimeout <= 0 || cfg.Server.WriteTimeout <= cfg.Server.RequestTimeout {
		invalid = append(invalid, "Server.WriteTimeout")
	}
	if strings.TrimSpace(cfg.Content.Root) == "" {
		invalid = append(invalid, "Content.Root")
	}
	if strings.ContainsAny(cfg.Content.IndexFile, `/\`) || strings.TrimSpace(cfg.Content.IndexFile) == "" {
		invalid = append(invalid, "Content.IndexFile")
	}
	if !strings.HasPrefix(cfg.Fixture.Path, "/") {
		invalid = append(invalid, "Fixture.Path")
	}
	switch cfg.Fixture.Source {
	case FixtureSourceHTTP:
		if u, err := url.Parse(cfg.Fixture.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			invalid = append(invalid, "Fixture.BaseURL")
		}
	case FixtureSourceFile:
	default:
		invalid = append(invalid, "Fixture.Source")
	}
	if cfg.UI.BasePath == "/" {
		invalid = append(invalid, "UI.BasePath")
	}
	if cfg.Session.IdleTimeout <= 0 {
		invalid = append(invalid, "Session.IdleTimeout")
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "console" {
		invalid = append(invalid, "Log.Format")
	}

	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

func normalizeBasePath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return defaultBasePath
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	if p == "" {
		return "/"
	}
	return p
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		values[key] = strings.Trim(value, "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
