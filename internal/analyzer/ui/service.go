package ui

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/AlexandruDodita/AmazonProductScraper/internal/analyzer/fixture"
	"github.com/AlexandruDodita/AmazonProductScraper/internal/analyzer/view"
	"github.com/AlexandruDodita/AmazonProductScraper/internal/platform/observability"
	"github.com/AlexandruDodita/AmazonProductScraper/internal/report"
)

// ErrBusy is returned when a session submits while its previous fetch is
// still running.
var ErrBusy = errors.New("ui: analysis already in progress")

// Service runs the page operations against the store.
type Service struct {
	store  *Store
	loader fixture.Loader
	view   []view.Option
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithViewOptions sets the projection options used for every report shown.
func WithViewOptions(opts ...view.Option) ServiceOption {
	return func(s *Service) {
		s.view = append(s.view, opts...)
	}
}

// NewService wires a store and a loader.
func NewService(store *Store, loader fixture.Loader, opts ...ServiceOption) *Service {
	if store == nil {
		store = NewStore()
	}
	s := &Service{store: store, loader: loader}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store exposes the underlying model store.
func (s *Service) Store() *Store { return s.store }

// Current returns the model for the session.
func (s *Service) Current(id string) Model {
	return s.store.Get(id)
}

// Analyze validates rawURL and, when it is acceptable, loads the fixture and
// shows either the results or the fallback prompt. Invalid input returns the
// form model with an inline message and never reaches the loader.
func (s *Service) Analyze(ctx context.Context, id, rawURL string) (Model, error) {
	m, err := s.store.Update(id, func(m Model) (Model, error) {
		if m.State == StateLoading {
			return m, ErrBusy
		}
		return Dispatch(m, EventSubmit, Input{URL: rawURL})
	})
	if err != nil || m.State != StateLoading {
		return m, err
	}

	logger := observability.FromContext(ctx)
	r, loadErr := s.load(ctx, id)

	event := EventFetchSucceeded
	if loadErr != nil {
		event = EventFetchFailed
		logger.Warn("fixture load failed", zap.Error(loadErr), zap.Bool("network", fixture.IsNetworkError(loadErr)))
	}
	m, err = s.store.Update(id, func(m Model) (Model, error) {
		return Dispatch(m, event, Input{Report: r, Err: loadErr, View: s.view})
	})
	if err != nil {
		return m, err
	}
	if m.State == StateForm {
		logger.Warn("fixture could not be projected", zap.String("message", m.ErrorMessage))
	}
	return m, nil
}

// AcceptFallback shows the built-in sample report after a failed fetch.
func (s *Service) AcceptFallback(_ context.Context, id string) (Model, error) {
	return s.store.Update(id, func(m Model) (Model, error) {
		return Dispatch(m, EventAcceptFallback, Input{View: s.view})
	})
}

// Reset returns the session to an empty form.
func (s *Service) Reset(_ context.Context, id string) (Model, error) {
	return s.store.Update(id, func(m Model) (Model, error) {
		return Dispatch(m, EventReset, Input{})
	})
}

// load runs the loader. A panicking loader fails the fetch for the session
// before the panic continues, so the session never stays in Loading.
func (s *Service) load(ctx context.Context, id string) (*report.ProductReport, error) {
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("fixture loader panicked: %v", rec)
			_, _ = s.store.Update(id, func(m Model) (Model, error) {
				return Dispatch(m, EventFetchFailed, Input{Err: err})
			})
			panic(rec)
		}
	}()
	if s.loader == nil {
		return nil, errors.New("fixture loader is not configured")
	}
	return s.loader.Load(ctx)
}
