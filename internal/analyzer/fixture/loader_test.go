package fixture

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AlexandruDodita/AmazonProductScraper/internal/report"
)

const sampleDocument = `{
	"url": "https://www.amazon.com/dp/B0TEST",
	"product_details": {"description": "Kettle - 1.7L", "specifications": {"Brand": "Acme"}, "image_url": "", "price": "$20"},
	"review_data": {"reviews": []},
	"ai_summary": {"summary": "fine", "pros": ["fast"], "cons": []}
}`

func TestHTTPLoaderFetchesFixturePath(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/review.json", r.URL.Path)
		require.Empty(t, r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleDocument))
	}))
	t.Cleanup(srv.Close)

	loader := HTTPLoader{Client: srv.Client(), BaseURL: srv.URL + "/", Path: "review.json"}
	r, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "https://www.amazon.com/dp/B0TEST", r.URL)
	require.Equal(t, int32(1), hits.Load())
}

func TestHTTPLoaderStatusError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	_, err := HTTPLoader{Client: srv.Client(), BaseURL: srv.URL, Path: "/review.json"}.Load(context.Background())

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	require.EqualError(t, err, "HTTP error! Status: 404")
	require.False(t, IsNetworkError(err))
}

func TestHTTPLoaderMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"url": `))
	}))
	t.Cleanup(srv.Close)

	_, err := HTTPLoader{Client: srv.Client(), BaseURL: srv.URL, Path: "/review.json"}.Load(context.Background())
	require.Error(t, err)
	require.False(t, IsNetworkError(err))
}

func TestHTTPLoaderUnreachableIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := HTTPLoader{BaseURL: base, Path: "/review.json"}.Load(context.Background())
	require.Error(t, err)
	require.True(t, IsNetworkError(err))
}

func TestHTTPLoaderHonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := HTTPLoader{Client: srv.Client(), BaseURL: srv.URL, Path: "/review.json"}.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestHTTPLoaderRequiresBaseURL(t *testing.T) {
	_, err := HTTPLoader{Path: "/review.json"}.Load(context.Background())
	require.Error(t, err)
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "review.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDocument), 0o644))

	r, err := FileLoader{Path: path}.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, report.Validate(r))

	_, err = FileLoader{Path: filepath.Join(dir, "missing.json")}.Load(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoaderFunc(t *testing.T) {
	want := report.Fallback()
	var l Loader = LoaderFunc(func(context.Context) (*report.ProductReport, error) { return want, nil })
	got, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Same(t, want, got)
}

func TestIsNetworkError(t *testing.T) {
	require.False(t, IsNetworkError(nil))
	require.True(t, IsNetworkError(errors.New("TypeError: NetworkError when attempting to fetch resource.")))
	require.True(t, IsNetworkError(errors.New("blocked by CORS policy")))
	require.False(t, IsNetworkError(errors.New("HTTP error! Status: 500")))
}
