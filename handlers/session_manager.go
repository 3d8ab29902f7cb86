package handlers

import (
	"context"
	"sync"

	"streakpick-go/logging"
	"streakpick-go/services"
)

// SessionManager owns the live sessions, one per user key. Sessions start
// lazily on first request and stop on explicit end or server shutdown.
type SessionManager struct {
	deps    services.SessionDeps
	onEvent func(userKey string, event services.SessionEvent)
	logger  *logging.Logger

	mu       sync.Mutex
	sessions map[string]*services.Session
}

// NewSessionManager creates a manager over shared session dependencies.
// onEvent receives every session event tagged with its owner's user key; the
// SSE layer fans these out to connected clients.
func NewSessionManager(deps services.SessionDeps, onEvent func(userKey string, event services.SessionEvent)) *SessionManager {
	if onEvent == nil {
		onEvent = func(string, services.SessionEvent) {}
	}
	return &SessionManager{
		deps:     deps,
		onEvent:  onEvent,
		logger:   logging.WithPrefix("SessionManager"),
		sessions: make(map[string]*services.Session),
	}
}

// Get returns the user's live session, starting one if needed
func (m *SessionManager) Get(ctx context.Context, userKey, displayName string) (*services.Session, error) {
	m.mu.Lock()
	session, ok := m.sessions[userKey]
	if !ok {
		key := userKey
		session = services.NewSession(userKey, m.deps, func(event services.SessionEvent) {
			m.onEvent(key, event)
		})
		m.sessions[userKey] = session
	}
	m.mu.Unlock()

	if err := session.Start(ctx); err != nil {
		m.mu.Lock()
		delete(m.sessions, userKey)
		m.mu.Unlock()
		return nil, err
	}
	session.SetDisplayName(displayName)
	return session, nil
}

// End stops and removes the user's session. Unresolved picks keep their
// persisted resolution state for re-arming on the next start.
func (m *SessionManager) End(userKey string) {
	m.mu.Lock()
	session, ok := m.sessions[userKey]
	delete(m.sessions, userKey)
	m.mu.Unlock()

	if ok {
		session.Stop()
		m.logger.Infof("Ended session for user %s", userKey)
	}
}

// ReevaluateAll forces a day-boundary check on every live session; the
// midnight maintenance job calls this
func (m *SessionManager) ReevaluateAll(ctx context.Context) {
	for _, session := range m.snapshot() {
		session.ReevaluateDay(ctx)
	}
}

// Shutdown stops every live session
func (m *SessionManager) Shutdown() {
	sessions := m.snapshot()
	m.mu.Lock()
	m.sessions = make(map[string]*services.Session)
	m.mu.Unlock()

	for _, session := range sessions {
		session.Stop()
	}
	m.logger.Infof("Stopped %d sessions", len(sessions))
}

func (m *SessionManager) snapshot() []*services.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	sessions := make([]*services.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}
