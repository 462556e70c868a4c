package server

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cpu-sched/cpu-sched/sim"
)

var (
	errSessionNotFound = errors.New("session not found")
	errSessionLimit    = errors.New("session limit reached")
)

// Session owns exactly one Simulator. The simulator is not safe for concurrent
// use, so every access goes through Do, which holds the session lock.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	sim      *sim.Simulator
	saved    bool      // run already persisted
	lastUsed time.Time // end of the last Do
}

// Do runs fn with exclusive access to the session's simulator.
func (s *Session) Do(fn func(*sim.Simulator) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := fn(s.sim)
	s.lastUsed = time.Now()
	return err
}

// evictable reports whether the session may be dropped to make room: its
// simulation ran to completion, or nobody has touched it for ttl.
// Sessions busy in Do are never evictable.
func (s *Session) evictable(now time.Time, ttl time.Duration) (time.Time, bool) {
	if !s.mu.TryLock() {
		return time.Time{}, false
	}
	defer s.mu.Unlock()
	done := s.sim.Clock() > 0 && s.sim.IsFinished()
	idle := ttl > 0 && now.Sub(s.lastUsed) >= ttl
	return s.lastUsed, done || idle
}

// SessionManager indexes live sessions by ID.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	max      int
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionManager creates a manager holding at most max sessions (0 = unlimited).
// When the limit is reached, Create evicts the least recently used session that
// has finished or has been idle for ttl (0 = never idle-evict).
func NewSessionManager(max int, ttl time.Duration) *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session), max: max, ttl: ttl, now: time.Now}
}

// Create starts a session around a new simulator.
func (m *SessionManager) Create(cfg sim.SimConfig) (*Session, error) {
	simulator, err := sim.NewSimulator(cfg)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.max > 0 && len(m.sessions) >= m.max && !m.evictOneLocked() {
		return nil, fmt.Errorf("%w (%d)", errSessionLimit, m.max)
	}
	now := m.now()
	s := &Session{
		ID:        "sess_" + uuid.New().String(),
		CreatedAt: now.UTC(),
		sim:       simulator,
		lastUsed:  now,
	}
	m.sessions[s.ID] = s
	return s, nil
}

// evictOneLocked drops the least recently used evictable session.
// The caller holds m.mu for writing.
func (m *SessionManager) evictOneLocked() bool {
	now := m.now()
	var victim *Session
	var victimUsed time.Time
	for _, s := range m.sessions {
		used, ok := s.evictable(now, m.ttl)
		if !ok {
			continue
		}
		if victim == nil || used.Before(victimUsed) {
			victim, victimUsed = s, used
		}
	}
	if victim == nil {
		return false
	}
	delete(m.sessions, victim.ID)
	logrus.WithFields(logrus.Fields{"component": "server", "session": victim.ID}).Info("session evicted")
	return true
}

// Get returns the session with the given ID.
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errSessionNotFound, id)
	}
	return s, nil
}

// Delete removes a session. Deleting an unknown ID is an error.
func (m *SessionManager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", errSessionNotFound, id)
	}
	delete(m.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
