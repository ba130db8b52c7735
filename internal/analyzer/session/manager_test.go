package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	current time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.current
}

func newTestManager(t *testing.T) (*Manager, *fixedClock) {
	t.Helper()

	clock := &fixedClock{current: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	mgr, err := NewManager(Config{
		CookieName:  "test_session",
		HashKey:     []byte("12345678901234567890123456789012"),
		IdleTimeout: 10 * time.Minute,
		Lifetime:    2 * time.Hour,
		Now:         clock.Now,
	})
	require.NoError(t, err)
	return mgr, clock
}

func roundTrip(t *testing.T, mgr *Manager, sess *Session) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, mgr.Save(rec, sess))
	for _, c := range rec.Result().Cookies() {
		if c.Name == mgr.CookieName() {
			return c
		}
	}
	t.Fatalf("cookie %q not set", mgr.CookieName())
	return nil
}

func TestNewManagerRequiresHashKey(t *testing.T) {
	_, err := NewManager(Config{})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestManagerIssuesULIDAndRestoresIt(t *testing.T) {
	mgr, clock := newTestManager(t)

	sess, err := mgr.Load(httptest.NewRequest(http.MethodGet, "/analyzer/", nil))
	require.NoError(t, err)
	require.True(t, sess.Fresh())
	_, err = ulid.ParseStrict(sess.ID())
	require.NoError(t, err)
	require.Equal(t, clock.current, sess.CreatedAt())
	require.Equal(t, clock.current.Add(2*time.Hour), sess.ExpiresAt())

	cookie := roundTrip(t, mgr, sess)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	require.Equal(t, 7200, cookie.MaxAge)

	clock.current = clock.current.Add(5 * time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/analyzer/", nil)
	req.AddCookie(cookie)
	restored, err := mgr.Load(req)
	require.NoError(t, err)
	require.False(t, restored.Fresh())
	require.Equal(t, sess.ID(), restored.ID())
}

func TestManagerExpiresIdleSessions(t *testing.T) {
	mgr, clock := newTestManager(t)
	cookie := roundTrip(t, mgr, mgr.New())

	clock.current = clock.current.Add(11 * time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	_, err := mgr.Load(req)
	require.ErrorIs(t, err, ErrExpired)
}

func TestManagerExpiresAfterLifetime(t *testing.T) {
	mgr, clock := newTestManager(t)
	sess := mgr.New()

	for i := 0; i < 15; i++ {
		clock.current = clock.current.Add(9 * time.Minute)
		cookie := roundTrip(t, mgr, sess)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookie)
		loaded, err := mgr.Load(req)
		if err != nil {
			require.ErrorIs(t, err, ErrExpired)
			require.True(t, clock.current.After(sess.ExpiresAt()))
			return
		}
		sess = loaded
	}
	t.Fatal("session never expired")
}

func TestManagerIgnoresTamperedCookie(t *testing.T) {
	mgr, _ := newTestManager(t)
	original := mgr.New()
	cookie := roundTrip(t, mgr, original)
	cookie.Value = cookie.Value[:len(cookie.Value)-2] + "xx"

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	sess, err := mgr.Load(req)
	require.NoError(t, err)
	require.True(t, sess.Fresh())
	require.NotEqual(t, original.ID(), sess.ID())
}

func TestMiddlewareAttachesSessionAndSetsCookie(t *testing.T) {
	mgr, clock := newTestManager(t)

	var seen string
	h := Middleware(mgr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := FromContext(r.Context())
		require.True(t, ok)
		seen = sess.ID()
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotEmpty(t, seen)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	clock.current = clock.current.Add(time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	first := seen
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.NotEqual(t, first, seen, "idle session should be replaced")

	_, ok := FromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	require.False(t, ok)
}

func TestDestroyClearsCookie(t *testing.T) {
	mgr, _ := newTestManager(t)
	rec := httptest.NewRecorder()
	mgr.Destroy(rec)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, -1, cookies[0].MaxAge)
}
