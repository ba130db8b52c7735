package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the environment keys as a nested YAML document.
type fileConfig struct {
	Server struct {
		Port           string `yaml:"port"`
		ReadTimeout    string `yaml:"read_timeout"`
		WriteTimeout   string `yaml:"write_timeout"`
		IdleTimeout    string `yaml:"idle_timeout"`
		RequestTimeout string `yaml:"request_timeout"`
	} `yaml:"server"`
	Content struct {
		Root      string `yaml:"root"`
		IndexFile string `yaml:"index_file"`
	} `yaml:"content"`
	Fixture struct {
		Path    string `yaml:"path"`
		BaseURL string `yaml:"base_url"`
		Source  string `yaml:"source"`
	} `yaml:"fixture"`
	UI struct {
		BasePath        string `yaml:"base_path"`
		TemplatesDir    string `yaml:"templates_dir"`
		Environment     string `yaml:"environment"`
		MarkdownSummary *bool  `yaml:"markdown_summary"`
	} `yaml:"ui"`
	Session struct {
		CookieName  string `yaml:"cookie_name"`
		HashKey     string `yaml:"hash_key"`
		Secure      *bool  `yaml:"secure"`
		IdleTimeout string `yaml:"idle_timeout"`
	} `yaml:"session"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

func loadYAMLFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: yaml file %s not found: %w", path, err)
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", path, err)
	}

	values := make(map[string]string)
	set := func(key, value string) {
		if value != "" {
			values[key] = value
		}
	}
	set("ANALYZER_PORT", fc.Server.Port)
	set("ANALYZER_READ_TIMEOUT", fc.Server.ReadTimeout)
	set("ANALYZER_WRITE_TIMEOUT", fc.Server.WriteTimeout)
	set("ANALYZER_IDLE_TIMEOUT", fc.Server.IdleTimeout)
	set("ANALYZER_REQUEST_TIMEOUT", fc.Server.RequestTimeout)
	set("ANALYZER_CONTENT_ROOT", fc.Content.Root)
	set("ANALYZER_INDEX_FILE", fc.Content.IndexFile)
	set("ANALYZER_FIXTURE_PATH", fc.Fixture.Path)
	set("ANALYZER_FIXTURE_BASE_URL", fc.Fixture.BaseURL)
	set("ANALYZER_FIXTURE_SOURCE", fc.Fixture.Source)
	set("ANALYZER_BASE_PATH", fc.UI.BasePath)
	set("ANALYZER_TEMPLATES_DIR", fc.UI.TemplatesDir)
	set("ANALYZER_ENV", fc.UI.Environment)
	if fc.UI.MarkdownSummary != nil {
		values["ANALYZER_MARKDOWN_SUMMARY"] = fmt.Sprintf("%t", *fc.UI.MarkdownSummary)
	}
	set("ANALYZER_SESSION_COOKIE", fc.Session.CookieName)
	set("ANALYZER_SESSION_HASH_KEY", fc.Session.HashKey)
	set("ANALYZER_SESSION_IDLE_TIMEOUT", fc.Session.IdleTimeout)
	if fc.Session.Secure != nil {
		values["ANALYZER_SESSION_SECURE"] = fmt.Sprintf("%t", *fc.Session.Secure)
	}
	set("LOG_LEVEL", fc.Log.Level)
	set("ANALYZER_LOG_FORMAT", fc.Log.Format)
	return values, nil
}
