package services

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/ad/go-asset-questionnaire/internal/flow"
	"github.com/ad/go-asset-questionnaire/internal/fsm"
	"github.com/google/uuid"
)

var ErrNoSession = errors.New("no active questionnaire session")

// Session is one user's run through the questionnaire. It lives only in
// memory and is replaced by the next /start.
type Session struct {
	ID        string
	UserID    int64
	StartedAt time.Time
	State     string

	// Set while waiting for the details of a new asset item.
	PendingStepID   int
	PendingCategory string

	Flow *flow.Controller

	mu sync.Mutex
}

func (s *Session) ClearPending() {
	s.PendingStepID = 0
	s.PendingCategory = ""
	if s.State == fsm.StateAwaitingItem {
		s.State = fsm.StateBrowsing
	}
}

type SessionManager struct {
	registry *flow.Registry
	now      func() time.Time

	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewSessionManager(registry *flow.Registry) *SessionManager {
	return &SessionManager{
		registry: registry,
		now:      time.Now,
		sessions: make(map[int64]*Session),
	}
}

// Start opens a fresh session for the user, discarding any previous one.
func (m *SessionManager) Start(userID int64) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		StartedAt: m.now(),
		State:     fsm.StateBrowsing,
		Flow:      flow.New(m.registry),
	}

	m.mu.Lock()
	_, replaced := m.sessions[userID]
	m.sessions[userID] = s
	m.mu.Unlock()

	if replaced {
		log.Printf("[SESSION] user=%d restarted, new session %s", userID, s.ID)
	} else {
		log.Printf("[SESSION] user=%d started session %s", userID, s.ID)
	}
	return s
}

func (m *SessionManager) Get(userID int64) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	return s, ok
}

func (m *SessionManager) Drop(userID int64) bool {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()

	if ok {
		log.Printf("[SESSION] user=%d dropped session %s", userID, s.ID)
	}
	return ok
}

func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// With runs fn while holding the session lock. Updates for one user may be
// dispatched concurrently; the controller itself is single-threaded.
func (m *SessionManager) With(userID int64, fn func(*Session) error) error {
	s, ok := m.Get(userID)
	if !ok {
		return ErrNoSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}
