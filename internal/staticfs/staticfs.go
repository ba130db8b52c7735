// Package staticfs serves files from a content root with a fixed extension
// to content-type table. It never lists directories, sets no caching headers
// and ignores Range requests.
package staticfs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/AlexandruDodita/AmazonProductScraper/internal/platform/observability"
)

const (
	defaultIndex       = "index.html"
	defaultContentType = "application/octet-stream"
)

var contentTypes = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "text/javascript",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
}

// ContentType maps a file name to its content type by extension.
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return defaultContentType
}

// Option customises a Responder.
type Option func(*Responder)

// WithIndex overrides the document served for directory paths.
func WithIndex(name string) Option {
	return func(r *Responder) {
		if name = strings.TrimSpace(name); name != "" {
			r.index = name
		}
	}
}

// Responder maps request paths onto files beneath root.
type Responder struct {
	root  string
	index string
}

// New constructs a Responder rooted at root.
func New(root string, opts ...Option) *Responder {
	r := &Responder{root: root, index: defaultIndex}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Root returns the content root directory.
func (s *Responder) Root() string { return s.root }

// ServeHTTP implements http.Handler.
func (s *Responder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := observability.FromContext(r.Context())

	urlPath := cleanPath(r.URL.Path)
	if strings.HasSuffix(urlPath, "/") {
		urlPath += s.index
	}
	name := filepath.Join(s.root, filepath.FromSlash(urlPath))

	info, err := os.Stat(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeText(w, http.StatusNotFound, fmt.Sprintf("File %s not found!", urlPath))
			return
		}
		logger.Error("stat content file", zap.String("path", urlPath), zap.Error(err))
		writeText(w, http.StatusInternalServerError, fmt.Sprintf("Error checking for file: %s", errorCode(err)))
		return
	}
	if info.IsDir() {
		urlPath = path.Join(urlPath, s.index)
		name = filepath.Join(name, s.index)
	}

	f, err := os.Open(name)
	if err == nil {
		info, err = f.Stat()
		if err == nil && info.IsDir() {
			err = fmt.Errorf("%s: is a directory", urlPath)
		}
	}
	if err != nil {
		if f != nil {
			_ = f.Close()
		}
		logger.Error("open content file", zap.String("path", urlPath), zap.Error(err))
		writeText(w, http.StatusInternalServerError, fmt.Sprintf("Error reading file: %s", errorCode(err)))
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", ContentType(urlPath))
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, f); err != nil {
		logger.Warn("stream content file", zap.String("path", urlPath), zap.Error(err))
	}
}

// cleanPath keeps the trailing separator so directory requests still resolve
// to the index document.
func cleanPath(p string) string {
	cleaned := path.Clean("/" + p)
	if strings.HasSuffix(p, "/") && cleaned != "/" {
		cleaned += "/"
	}
	return cleaned
}

// errorCode reduces an error to its underlying cause without the file system
// path.
func errorCode(err error) string {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	return err.Error()
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
