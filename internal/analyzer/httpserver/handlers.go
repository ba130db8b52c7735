package httpserver

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/AlexandruDodita/AmazonProductScraper/internal/analyzer/session"
	"github.com/AlexandruDodita/AmazonProductScraper/internal/analyzer/ui"
	"github.com/AlexandruDodita/AmazonProductScraper/internal/analyzer/view"
	"github.com/AlexandruDodita/AmazonProductScraper/internal/platform/observability"
)

const (
	maxFormBytes          = 64 << 10
	loadingRefreshSeconds = 1
	pageTitle             = "Amazon Product Analyzer"
)

type pageData struct {
	Title        string
	BasePath     string
	State        ui.State
	Refresh      int
	Model        ui.Model
	Page         *view.Page
	ShowForm     bool
	ShowLoading  bool
	ShowResults  bool
	ShowFallback bool
}

func newPageData(base string, m ui.Model) pageData {
	data := pageData{
		Title:        pageTitle,
		BasePath:     base,
		State:        m.State,
		Model:        m,
		Page:         m.Page,
		ShowForm:     m.State == ui.StateForm,
		ShowLoading:  m.State == ui.StateLoading,
		ShowResults:  m.State == ui.StateResults && m.Page != nil,
		ShowFallback: m.State == ui.StateFallbackPrompt,
	}
	if data.ShowLoading {
		data.Refresh = loadingRefreshSeconds
	}
	if data.ShowResults && m.Page.Title != "" {
		data.Title = m.Page.Title + " | " + pageTitle
	}
	return data
}

type handlers struct {
	service  *ui.Service
	renderer *renderer
	base     string
}

func (h *handlers) sessionID(r *http.Request) (string, bool) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		return "", false
	}
	return sess.ID(), true
}

// page renders the current state of the visitor's analyzer.
func (h *handlers) page(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.renderer.render(w, r, http.StatusOK, newPageData(h.base, h.service.Current(id)))
}

func (h *handlers) analyze(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	m, err := h.service.Analyze(r.Context(), id, r.PostForm.Get("url"))
	h.finish(w, r, m, err)
}

func (h *handlers) acceptFallback(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	m, err := h.service.AcceptFallback(r.Context(), id)
	h.finish(w, r, m, err)
}

func (h *handlers) reset(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	m, err := h.service.Reset(r.Context(), id)
	h.finish(w, r, m, err)
}

// finish redirects back to the page after a successful action. Rejected
// actions re-render the current state with 409 so a stale form cannot move
// the page.
func (h *handlers) finish(w http.ResponseWriter, r *http.Request, m ui.Model, err error) {
	switch {
	case err == nil:
		http.Redirect(w, r, h.base+"/", http.StatusSeeOther)
	case errors.Is(err, ui.ErrBusy), errors.Is(err, ui.ErrInvalidTransition):
		observability.FromContext(r.Context()).Info("analyzer action rejected",
			zap.String("state", string(m.State)), zap.Error(err))
		h.renderer.render(w, r, http.StatusConflict, newPageData(h.base, m))
	default:
		observability.FromContext(r.Context()).Error("analyzer action failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, max-age=0")
		w.Header().Set("Pragma", "no-cache")
		next.ServeHTTP(w, r)
	})
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
