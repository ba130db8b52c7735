package ui

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestStoreUpdateKeepsModelOnError(t *testing.T) {
	s := NewStore()

	m, err := s.Update("a", func(m Model) (Model, error) {
		m.URLInput = "first"
		return m, nil
	})
	require.NoError(t, err)
	require.Equal(t, "first", m.URLInput)

	_, err = s.Update("a", func(m Model) (Model, error) {
		m.URLInput = "second"
		return m, ErrBusy
	})
	require.ErrorIs(t, err, ErrBusy)
	require.Equal(t, "first", s.Get("a").URLInput)
	require.Equal(t, Initial(), s.Get("unknown"))
}

func TestStoreExpiresIdleModels(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewStore(WithIdleTTL(time.Minute), WithClock(clock.Now))

	_, err := s.Update("a", func(m Model) (Model, error) { m.URLInput = "a"; return m, nil })
	require.NoError(t, err)
	_, err = s.Update("b", func(m Model) (Model, error) { m.URLInput = "b"; return m, nil })
	require.NoError(t, err)

	clock.Advance(40 * time.Second)
	require.Equal(t, "a", s.Get("a").URLInput)

	clock.Advance(40 * time.Second)
	require.Equal(t, 1, s.Sweep(clock.Now()))
	require.Equal(t, 1, s.Len())
	require.Equal(t, "a", s.Get("a").URLInput)

	clock.Advance(2 * time.Minute)
	require.Equal(t, Initial(), s.Get("a"))
	require.Zero(t, s.Len())
}

func TestStoreRunStopsWithContext(t *testing.T) {
	s := NewStore(WithIdleTTL(time.Millisecond))
	_, err := s.Update("a", func(m Model) (Model, error) { return m, nil })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, time.Millisecond) }()

	require.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestStoreDelete(t *testing.T) {
	s := NewStore()
	_, _ = s.Update("a", func(m Model) (Model, error) { return m, nil })
	s.Delete("a")
	require.Zero(t, s.Len())
}
