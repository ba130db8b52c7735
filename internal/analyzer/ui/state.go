// Package ui holds the analyzer page state machine and the per-session store
// that keeps one Model per visitor.
package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AlexandruDodita/AmazonProductScraper/internal/analyzer/fixture"
	"github.com/AlexandruDodita/AmazonProductScraper/internal/analyzer/view"
	"github.com/AlexandruDodita/AmazonProductScraper/internal/report"
)

// State is the exclusive screen the analyzer page shows.
type State string

const (
	StateForm           State = "form"
	StateLoading        State = "loading"
	StateResults        State = "results"
	StateFallbackPrompt State = "fallback_prompt"
)

// Source records where the displayed report came from.
type Source string

const (
	SourceFixture  Source = "fixture"
	SourceFallback Source = "fallback"
)

// Event drives a transition between states.
type Event string

const (
	EventSubmit         Event = "submit"
	EventFetchSucceeded Event = "fetch_succeeded"
	EventFetchFailed    Event = "fetch_failed"
	EventAcceptFallback Event = "accept_fallback"
	EventReset          Event = "reset"
)

// Messages shown inline on the form.
const (
	MessageEmptyURL        = "Please enter an Amazon product URL"
	MessageInvalidURL      = "Please enter a valid Amazon product URL"
	MessageProcessingError = "Failed to process product data. Please try again later."
)

// ErrInvalidTransition is returned when an event is not accepted in the current state.
var ErrInvalidTransition = errors.New("ui: invalid transition")

// Model is everything the page needs to render one visitor's screen.
type Model struct {
	State           State
	URLInput        string
	ErrorMessage    string
	LoadError       string
	ShowNetworkHint bool
	Source          Source
	Page            *view.Page
}

// Initial returns the empty form state.
func Initial() Model {
	return Model{State: StateForm}
}

// Input carries the payload of an event.
type Input struct {
	URL    string
	Report *report.ProductReport
	Err    error
	View   []view.Option
}

type transition struct {
	from  []State
	apply func(Model, Input) Model
}

var transitions = map[Event]transition{
	EventSubmit:         {from: []State{StateForm}, apply: submit},
	EventFetchSucceeded: {from: []State{StateLoading}, apply: fetchSucceeded},
	EventFetchFailed:    {from: []State{StateLoading}, apply: fetchFailed},
	EventAcceptFallback: {from: []State{StateFallbackPrompt}, apply: acceptFallback},
	EventReset:          {from: []State{StateResults}, apply: reset},
}

// Dispatch applies ev to m. On error m is returned unchanged.
func Dispatch(m Model, ev Event, in Input) (Model, error) {
	t, ok := transitions[ev]
	if !ok {
		return m, fmt.Errorf("%w: unknown event %q", ErrInvalidTransition, ev)
	}
	if !allowed(t.from, m.State) {
		return m, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, ev, m.State)
	}
	return t.apply(m, in), nil
}

func allowed(states []State, s State) bool {
	for _, candidate := range states {
		if candidate == s {
			return true
		}
	}
	return false
}

func submit(m Model, in Input) Model {
	raw := strings.TrimSpace(in.URL)
	m.URLInput = raw
	switch {
	case raw == "":
		m.ErrorMessage = MessageEmptyURL
		return m
	case !ValidAmazonURL(raw):
		m.ErrorMessage = MessageInvalidURL
		return m
	}
	return Model{State: StateLoading, URLInput: raw}
}

func fetchSucceeded(m Model, in Input) Model {
	return showReport(m, in.Report, SourceFixture, in.View)
}

func fetchFailed(m Model, in Input) Model {
	err := in.Err
	if err == nil {
		err = errors.New("unknown error")
	}
	return Model{
		State:           StateFallbackPrompt,
		URLInput:        m.URLInput,
		LoadError:       err.Error(),
		ShowNetworkHint: fixture.IsNetworkError(err),
	}
}

func acceptFallback(m Model, in Input) Model {
	return showReport(m, report.Fallback(), SourceFallback, in.View)
}

func reset(Model, Input) Model {
	return Initial()
}

func showReport(m Model, r *report.ProductReport, source Source, opts []view.Option) Model {
	page, err := view.Project(r, opts...)
	if err != nil {
		return Model{State: StateForm, URLInput: m.URLInput, ErrorMessage: MessageProcessingError}
	}
	return Model{State: StateResults, URLInput: m.URLInput, Source: source, Page: &page}
}
