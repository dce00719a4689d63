package session

import (
	"sync"

	"edascope/adapters/stats/engine"
	"edascope/domain/core"
	"edascope/domain/dataset"
	"edascope/internal"

	"github.com/cockroachdb/errors"
)

// Manager keeps the open sessions of a server process
type Manager struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*Session
	engine   *engine.StatsEngine
	logger   *internal.Logger
}

// NewManager creates a session manager around a shared engine
func NewManager(eng *engine.StatsEngine, logger *internal.Logger) *Manager {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Manager{
		sessions: make(map[core.SessionID]*Session),
		engine:   eng,
		logger:   logger.Component("SessionManager"),
	}
}

// Engine returns the shared engine
func (m *Manager) Engine() *engine.StatsEngine {
	return m.engine
}

// Create opens and registers a session for table and target
func (m *Manager) Create(table *dataset.Table, target string) (*Session, error) {
	s, err := New(m.engine, table, target)
	if err != nil {
		m.logger.Warn("Rejected session for %q: %v", target, err)
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("Opened session %s (%s, %d rows, target %q as %s)",
		s.ID, table.Name, table.RowCount(), target, s.Kind())
	return s, nil
}

// Get returns a registered session
func (m *Manager) Get(id core.SessionID) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(core.ErrSessionNotFound, "%s", id)
	}
	return s, nil
}

// Replace re-selects the target of a session. The old session value, and
// with it the correlation cache, is discarded.
func (m *Manager) Replace(id core.SessionID, target string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.sessions[id]
	if !ok {
		return nil, errors.Wrapf(core.ErrSessionNotFound, "%s", id)
	}
	next, err := current.SelectTarget(target)
	if err != nil {
		return nil, err
	}
	m.sessions[id] = next
	m.logger.Info("Session %s target %q -> %q", id, current.Target(), target)
	return next, nil
}

// Close removes a session
func (m *Manager) Close(id core.SessionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return errors.Wrapf(core.ErrSessionNotFound, "%s", id)
	}
	s.cache.Invalidate()
	delete(m.sessions, id)
	m.logger.Info("Closed session %s", id)
	return nil
}

// Len returns the number of open sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
