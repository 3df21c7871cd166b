package session

import (
	"sync"

	"github.com/google/uuid"

	"parceldash/internal/types"
)

// Manager creates sessions and looks them up by id.
type Manager struct {
	opts           Options
	defaultVariant types.Variant

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(defaultVariant types.Variant, opts Options) *Manager {
	return &Manager{
		opts:           opts,
		defaultVariant: defaultVariant,
		sessions:       make(map[string]*Session),
	}
}

// Create opens a session on v, or on the default variant when v is zero.
func (m *Manager) Create(v types.Variant) (*Session, error) {
	if v == 0 {
		v = m.defaultVariant
	}
	s, err := New(uuid.NewString(), v, m.opts)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.opts.Metrics.SessionOpened()
	s.logger.Info("session created", "variant", v.String())
	return s, nil
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Delete closes the session and releases its cache.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return false
	}
	s.cache.Flush()
	m.opts.Metrics.SessionClosed()
	s.logger.Info("session closed")
	return true
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
