package session

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/AlexandruDodita/AmazonProductScraper/internal/platform/observability"
)

type contextKey string

const sessionContextKey contextKey = "analyzer.session"

// Middleware loads the session, refreshes its cookie and attaches it to the
// request context. The cookie is written before the handler runs so it is
// never lost behind an already committed response.
func Middleware(m *Manager) func(http.Handler) http.Handler {
	if m == nil {
		panic("session manager is required")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := observability.FromContext(r.Context())

			sess, err := m.Load(r)
			switch {
			case errors.Is(err, ErrExpired):
				logger.Debug("session expired: resetting")
				sess = m.New()
			case err != nil || sess == nil:
				if err != nil {
					logger.Warn("session load failed", zap.Error(err))
				}
				sess = m.New()
			}

			if err := m.Save(w, sess); err != nil {
				logger.Error("session save failed", zap.Error(err))
			}

			logger = logger.With(zap.String("session_id", sess.ID()))
			ctx := context.WithValue(r.Context(), sessionContextKey, sess)
			ctx = observability.WithLogger(ctx, logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext retrieves the session attached to this request.
func FromContext(ctx context.Context) (*Session, bool) {
	if ctx == nil {
		return nil, false
	}
	sess, ok := ctx.Value(sessionContextKey).(*Session)
	return sess, ok && sess != nil
}
