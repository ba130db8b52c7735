package staticfs

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newContentRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"index.html":       "<h1>home</h1>",
		"review.json":      `{"url":"x"}`,
		"assets/site.css":  "body{}",
		"docs/index.html":  "<p>docs</p>",
		"data/blob.bin":    "\x00\x01",
		"data/UPPER.PNG":   "png",
		"empty/.keep":      "",
		"nested/a/b/c.txt": "deep",
	}
	for name, body := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
	}
	return root
}

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestResponderServesFilesWithTableContentType(t *testing.T) {
	h := New(newContentRoot(t))

	cases := []struct {
		target string
		status int
		ctype  string
		body   string
	}{
		{"/", http.StatusOK, "text/html", "<h1>home</h1>"},
		{"/review.json", http.StatusOK, "application/json", `{"url":"x"}`},
		{"/assets/site.css", http.StatusOK, "text/css", "body{}"},
		{"/docs/", http.StatusOK, "text/html", "<p>docs</p>"},
		{"/docs", http.StatusOK, "text/html", "<p>docs</p>"},
		{"/data/blob.bin", http.StatusOK, "application/octet-stream", "\x00\x01"},
		{"/data/UPPER.PNG", http.StatusOK, "image/png", "png"},
		{"/nested/a/b/c.txt", http.StatusOK, "application/octet-stream", "deep"},
	}
	for _, tc := range cases {
		t.Run(tc.target, func(t *testing.T) {
			rec := serve(t, h, http.MethodGet, tc.target)
			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, tc.ctype, rec.Header().Get("Content-Type"))
			require.Equal(t, tc.body, rec.Body.String())
			require.Empty(t, rec.Header().Get("Cache-Control"))
			require.Empty(t, rec.Header().Get("Accept-Ranges"))
		})
	}
}

func TestResponderNotFound(t *testing.T) {
	h := New(newContentRoot(t))

	rec := serve(t, h, http.MethodGet, "/missing.html")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "File /missing.html not found!", rec.Body.String())
}

func TestResponderCannotEscapeRoot(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "public")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(parent, "secret.txt"), []byte("nope"), 0o644))

	h := New(root)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.URL.Path = "/../secret.txt"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NotContains(t, rec.Body.String(), "nope")
}

func TestResponderDirectoryWithoutIndexIsServerError(t *testing.T) {
	h := New(newContentRoot(t))

	rec := serve(t, h, http.MethodGet, "/empty")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "Error reading file:")
}

func TestResponderIgnoresRangeAndServesHead(t *testing.T) {
	h := New(newContentRoot(t))

	req := httptest.NewRequest(http.MethodGet, "/review.json", nil)
	req.Header.Set("Range", "bytes=0-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, `{"url":"x"}`, rec.Body.String())

	head := serve(t, h, http.MethodHead, "/review.json")
	require.Equal(t, http.StatusOK, head.Code)
	require.Equal(t, "11", head.Header().Get("Content-Length"))
	require.Empty(t, head.Body.String())
}

func TestWithIndexOverridesDirectoryDocument(t *testing.T) {
	root := newContentRoot(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "home.html"), []byte("custom"), 0o644))

	rec := serve(t, New(root, WithIndex("home.html")), http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "custom", rec.Body.String())
}

func TestContentType(t *testing.T) {
	require.Equal(t, "text/javascript", ContentType("app.js"))
	require.Equal(t, "image/jpeg", ContentType("photo.JPEG"))
	require.Equal(t, "image/svg+xml", ContentType("/icons/logo.svg"))
	require.Equal(t, "image/x-icon", ContentType("favicon.ico"))
	require.Equal(t, "image/gif", ContentType("a.gif"))
	require.Equal(t, "application/octet-stream", ContentType("README"))
}
