package interaction

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/mindmapd/internal/diagram"
)

var (
	// ErrSessionNotFound is returned for an unknown or evicted session id.
	ErrSessionNotFound = errors.New("viewer session not found")

	// ErrTooManySessions is returned when the session limit is reached.
	ErrTooManySessions = errors.New("too many open viewer sessions")
)

// Config configures the session manager.
type Config struct {
	CaptureRadius float64       `koanf:"capture_radius"`
	SessionTTL    time.Duration `koanf:"session_ttl"`
	MaxSessions   int           `koanf:"max_sessions"`
}

// DefaultConfig returns the stock manager settings.
func DefaultConfig() *Config {
	return &Config{
		CaptureRadius: DefaultCaptureRadius,
		SessionTTL:    30 * time.Minute,
		MaxSessions:   1000,
	}
}

// Info describes an open session.
type Info struct {
	ID       string    `json:"session_id"`
	RecordID string    `json:"mindmap_id"`
	OpenedAt time.Time `json:"opened_at"`
	LastUsed time.Time `json:"last_used"`
}

type entry struct {
	mu       sync.Mutex
	session  *Session
	recordID string
	openedAt time.Time
	lastUsed time.Time
}

// Manager keeps the open viewer sessions of this process. Each session is
// only ever touched by one caller at a time.
type Manager struct {
	cfg     Config
	logger  *zap.Logger
	metrics *Metrics
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewManager creates a Manager. A nil config uses DefaultConfig.
func NewManager(cfg *Config, logger *zap.Logger) *Manager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		cfg:      *cfg,
		logger:   logger,
		metrics:  NewMetrics(),
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Open starts a session over nodes for the mind map recordID.
func (m *Manager) Open(recordID string, nodes []diagram.Node) (Info, Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		m.sweepLocked()
		if len(m.sessions) >= m.cfg.MaxSessions {
			return Info{}, Snapshot{}, ErrTooManySessions
		}
	}

	now := m.now()
	e := &entry{
		session:  NewSession(nodes, Options{CaptureRadius: m.cfg.CaptureRadius}),
		recordID: recordID,
		openedAt: now,
		lastUsed: now,
	}
	id := uuid.New().String()
	m.sessions[id] = e
	m.metrics.Active.Set(float64(len(m.sessions)))
	m.metrics.Opened.Inc()

	m.logger.Debug("viewer session opened",
		zap.String("session_id", id),
		zap.String("mindmap_id", recordID),
		zap.Int("nodes", len(nodes)))

	return e.info(id), e.session.Snapshot(), nil
}

// Do runs fn with exclusive access to the session.
func (m *Manager) Do(id string, fn func(*Session) error) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if ok {
		e.lastUsed = m.now()
	}
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}

// Info returns the metadata of an open session.
func (m *Manager) Info(id string) (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return Info{}, ErrSessionNotFound
	}
	return e.info(id), nil
}

// Close tears the session down.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	m.metrics.Active.Set(float64(len(m.sessions)))
	m.logger.Debug("viewer session closed", zap.String("session_id", id))
	return nil
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle for longer than the TTL and returns how many
// were evicted.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked()
}

func (m *Manager) sweepLocked() int {
	if m.cfg.SessionTTL <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.cfg.SessionTTL)
	evicted := 0
	for id, e := range m.sessions {
		if e.lastUsed.Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		m.metrics.Active.Set(float64(len(m.sessions)))
		m.metrics.Evicted.Add(float64(evicted))
		m.logger.Info("evicted idle viewer sessions", zap.Int("count", evicted))
	}
	return evicted
}

// Run sweeps idle sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (e *entry) info(id string) Info {
	return Info{
		ID:       id,
		RecordID: e.recordID,
		OpenedAt: e.openedAt,
		LastUsed: e.lastUsed,
	}
}
