package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-map/internal/view"
)

var (
	// ErrNotFound is returned when no session exists for a given id.
	ErrNotFound = errors.New("no session for id")
)

// Session binds one browser session to its weather view.
type Session struct {
	ID       string
	View     *view.WeatherView
	lastSeen time.Time
}

// SessionStore is a concurrency-safe in-memory registry of sessions.
type SessionStore struct {
	mu sync.RWMutex

	// key: session id
	data map[string]*Session

	newView func() *view.WeatherView
	now     func() time.Time

	// retention configuration
	maxAge time.Duration // idle sessions older than this are swept (0 = never)
}

// NewSessionStore creates a new SessionStore. newView builds the view for
// each fresh session.
func NewSessionStore(maxAge time.Duration, newView func() *view.WeatherView) *SessionStore {
	return &SessionStore{
		data:    make(map[string]*Session),
		newView: newView,
		now:     time.Now,
		maxAge:  maxAge,
	}
}

// Get returns the session for id and marks it as seen.
func (s *SessionStore) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	sess.lastSeen = s.now()
	return sess, nil
}

// GetOrCreate returns the session for id, creating a new one (with a fresh
// id) when id is empty or unknown. created reports whether that happened.
func (s *SessionStore) GetOrCreate(id string) (sess *Session, created bool) {
	if id != "" {
		if existing, err := s.Get(id); err == nil {
			return existing, false
		}
	}

	sess = &Session{
		ID:   uuid.NewString(),
		View: s.newView(),
	}

	s.mu.Lock()
	sess.lastSeen = s.now()
	s.data[sess.ID] = sess
	s.mu.Unlock()

	return sess, true
}

// Sweep drops sessions idle longer than maxAge and returns how many were removed.
func (s *SessionStore) Sweep() int {
	if s.maxAge <= 0 {
		return 0
	}

	cutoff := s.now().Add(-s.maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.data {
		if sess.lastSeen.Before(cutoff) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
