package interaction

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fyrsmithlabs/mindmapd/internal/diagram"
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
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestManager(t *testing.T, cfg *Config) (*Manager, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewManager(cfg, zaptest.NewLogger(t))
	m.now = clock.Now
	return m, clock
}

func TestManager_OpenDoClose(t *testing.T) {
	m, _ := newTestManager(t, nil)

	info, snap, err := m.Open("map-1", threeChildNodes())
	require.NoError(t, err)
	assert.NotEmpty(t, info.ID)
	assert.Equal(t, "map-1", info.RecordID)
	assert.Len(t, snap.Nodes, 4)
	assert.Empty(t, snap.Edges)
	assert.Equal(t, 1, m.Len())

	var committed bool
	err = m.Do(info.ID, func(s *Session) error {
		committed = s.DragEnd("node-1-0", diagram.Position{X: 300, Y: -50})
		return nil
	})
	require.NoError(t, err)
	assert.True(t, committed)

	err = m.Do(info.ID, func(s *Session) error {
		assert.Len(t, s.Edges(), 1)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, m.Close(info.ID))
	assert.Equal(t, 0, m.Len())
	assert.ErrorIs(t, m.Close(info.ID), ErrSessionNotFound)
	assert.ErrorIs(t, m.Do(info.ID, func(*Session) error { return nil }), ErrSessionNotFound)
}

func TestManager_SessionsAreIndependent(t *testing.T) {
	m, _ := newTestManager(t, nil)

	a, _, err := m.Open("map-1", threeChildNodes())
	require.NoError(t, err)
	b, _, err := m.Open("map-1", threeChildNodes())
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	require.NoError(t, m.Do(a.ID, func(s *Session) error {
		s.ToggleFullscreen()
		return nil
	}))
	require.NoError(t, m.Do(b.ID, func(s *Session) error {
		assert.False(t, s.Fullscreen())
		return nil
	}))
}

func TestManager_DoPropagatesError(t *testing.T) {
	m, _ := newTestManager(t, nil)
	info, _, err := m.Open("map-1", threeChildNodes())
	require.NoError(t, err)

	boom := errors.New("boom")
	assert.ErrorIs(t, m.Do(info.ID, func(*Session) error { return boom }), boom)
}

func TestManager_Sweep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SessionTTL = 10 * time.Minute
	m, clock := newTestManager(t, cfg)

	stale, _, err := m.Open("map-1", threeChildNodes())
	require.NoError(t, err)
	clock.Advance(6 * time.Minute)
	fresh, _, err := m.Open("map-2", threeChildNodes())
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	assert.Equal(t, 1, m.Sweep())

	_, err = m.Info(stale.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	got, err := m.Info(fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, "map-2", got.RecordID)
}

func TestManager_UseRefreshesTTL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SessionTTL = 10 * time.Minute
	m, clock := newTestManager(t, cfg)

	info, _, err := m.Open("map-1", threeChildNodes())
	require.NoError(t, err)

	clock.Advance(8 * time.Minute)
	require.NoError(t, m.Do(info.ID, func(*Session) error { return nil }))
	clock.Advance(8 * time.Minute)

	assert.Equal(t, 0, m.Sweep())
	assert.Equal(t, 1, m.Len())
}

func TestManager_MaxSessions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSessions = 2
	cfg.SessionTTL = time.Minute
	m, clock := newTestManager(t, cfg)

	_, _, err := m.Open("a", nil)
	require.NoError(t, err)
	_, _, err = m.Open("b", nil)
	require.NoError(t, err)

	_, _, err = m.Open("c", nil)
	assert.ErrorIs(t, err, ErrTooManySessions)

	// Idle sessions are reclaimed before refusing.
	clock.Advance(2 * time.Minute)
	_, _, err = m.Open("c", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())
}

func TestManager_RunStopsOnCancel(t *testing.T) {
	m, _ := newTestManager(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestManager_ConcurrentDo(t *testing.T) {
	m, _ := newTestManager(t, nil)
	info, _, err := m.Open("map-1", threeChildNodes())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Do(info.ID, func(s *Session) error {
				s.Connect("node-0-0", "node-1-1")
				return nil
			})
		}()
	}
	wg.Wait()

	require.NoError(t, m.Do(info.ID, func(s *Session) error {
		assert.Len(t, s.CommittedEdges(), 50)
		return nil
	}))
}
