package httpserver

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/AlexandruDodita/AmazonProductScraper/internal/platform/observability"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

//go:embed static/*
var embeddedStatic embed.FS

const pageTemplate = "analyzer"

// renderer executes the page templates. When dir is set the templates are
// reparsed from disk on every request.
type renderer struct {
	dir    string
	cached *template.Template
}

func newRenderer(dir string) (*renderer, error) {
	r := &renderer{dir: strings.TrimSpace(dir)}
	if r.dir != "" {
		return r, nil
	}
	t, err := template.New("_root").ParseFS(embeddedTemplates, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse embedded templates: %w", err)
	}
	r.cached = t
	return r, nil
}

func (r *renderer) templates() (*template.Template, error) {
	if r.dir == "" {
		return r.cached, nil
	}
	var files []string
	if err := filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", r.dir)
	}
	return template.New("_root").ParseFiles(files...)
}

func (r *renderer) render(w http.ResponseWriter, req *http.Request, status int, data pageData) {
	logger := observability.FromContext(req.Context())

	t, err := r.templates()
	if err != nil {
		logger.Error("template parse failed", zap.Error(err))
		http.Error(w, fmt.Sprintf("template parse error: %v", err), http.StatusInternalServerError)
		return
	}
	page := t.Lookup(pageTemplate)
	if page == nil {
		logger.Error("template missing", zap.String("template", pageTemplate))
		http.Error(w, "template not initialized", http.StatusInternalServerError)
		return
	}

	templ.Handler(
		templ.FromGoHTML(page, data),
		templ.WithStatus(status),
		templ.WithErrorHandler(func(_ *http.Request, err error) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				logger.Error("template exec failed", zap.Error(err))
				http.Error(w, fmt.Sprintf("template exec error: %v", err), http.StatusInternalServerError)
			})
		}),
	).ServeHTTP(w, req)
}

func staticFS() (fs.FS, error) {
	return fs.Sub(embeddedStatic, "static")
}
