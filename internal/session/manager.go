package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the call session lifecycle state.
type State string

const (
	// StateConnecting means the socket is open but no start event arrived yet.
	StateConnecting State = "connecting"
	// StateStreaming means the stream identifiers are captured and the
	// audio pipelines are active.
	StateStreaming State = "streaming"
	// StateClosed is terminal; late backend results are discarded.
	StateClosed State = "closed"
)

var ErrNotFound = errors.New("session not found")

// Session tracks one media-stream connection's lifecycle. Pipeline state
// (buffers, counters, in-flight flags) lives with the relay event loop that
// owns the connection, not here.
type Session struct {
	ID             string    `json:"session_id"`
	CallSID        string    `json:"call_sid"`
	StreamSID      string    `json:"stream_sid"`
	State          State     `json:"state"`
	StartedAt      time.Time `json:"started_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

type Manager struct {
	mu                sync.RWMutex
	sessions          map[string]*Session
	inactivityTimeout time.Duration
	onExpire          func(*Session)
}

func NewManager(inactivityTimeout time.Duration) *Manager {
	if inactivityTimeout <= 0 {
		inactivityTimeout = 2 * time.Minute
	}
	return &Manager{
		sessions:          make(map[string]*Session),
		inactivityTimeout: inactivityTimeout,
	}
}

func (m *Manager) SetExpireHook(hook func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = hook
}

// Create registers a session in the connecting state.
func (m *Manager) Create() *Session {
	now := time.Now().UTC()
	s := &Session{
		ID:             uuid.NewString(),
		State:          StateConnecting,
		StartedAt:      now,
		LastActivityAt: now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return clone(s)
}

func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(s), nil
}

func (m *Manager) Touch(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	s.LastActivityAt = time.Now().UTC()
	return nil
}

// Activate transitions connecting -> streaming and captures the stream
// identifiers. Activating a closed session is a no-op error-free return so
// a racing start event after socket close cannot revive the session.
func (m *Manager) Activate(sessionID, callSID, streamSID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	if s.State == StateClosed {
		return nil
	}
	s.State = StateStreaming
	s.CallSID = callSID
	s.StreamSID = streamSID
	s.LastActivityAt = time.Now().UTC()
	return nil
}

// Close marks the session closed. Closed is terminal.
func (m *Manager) Close(sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	s.State = StateClosed
	s.LastActivityAt = time.Now().UTC()
	return clone(s), nil
}

// Remove drops a closed session from the registry.
func (m *Manager) Remove(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireInactive()
			}
		}
	}()
}

func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, s := range m.sessions {
		if s.State != StateClosed {
			count++
		}
	}
	return count
}

func (m *Manager) expireInactive() {
	now := time.Now().UTC()
	var expired []*Session

	m.mu.Lock()
	for _, s := range m.sessions {
		if s.State == StateClosed {
			continue
		}
		if now.Sub(s.LastActivityAt) < m.inactivityTimeout {
			continue
		}
		s.State = StateClosed
		s.LastActivityAt = now
		expired = append(expired, clone(s))
	}
	hook := m.onExpire
	m.mu.Unlock()

	if hook != nil {
		for _, s := range expired {
			hook(s)
		}
	}
}

func clone(s *Session) *Session {
	c := *s
	return &c
}
