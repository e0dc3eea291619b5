package sessions

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/gitfiti/internal/errors"
)

// InMemoryRepo is a thread-safe in-memory implementation of Repo
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

// NewInMemoryRepo creates a new in-memory session repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// Upsert creates or updates a session
func (r *InMemoryRepo) Upsert(sessionID string, session Session) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	session.ID = sessionID
	session.UserProfile = bytes.Clone(session.UserProfile)
	r.sessions[sessionID] = session
	return nil
}

// Update replaces a stored session. A session deleted in the meantime is not
// brought back.
func (r *InMemoryRepo) Update(sessionID string, session Session) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sessionID]; !ok {
		return apperrors.ErrSessionNotFound
	}
	session.ID = sessionID
	session.UserProfile = bytes.Clone(session.UserProfile)
	r.sessions[sessionID] = session
	return nil
}

// Get retrieves a session. Expired sessions are removed and reported as
// ErrSessionExpired.
func (r *InMemoryRepo) Get(sessionID string) (Session, error) {
	if sessionID == "" {
		return Session{}, fmt.Errorf("sessionID is required")
	}

	r.mu.RLock()
	session, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return Session{}, apperrors.ErrSessionNotFound
	}

	if session.Expired(r.now()) {
		_ = r.Delete(sessionID)
		return Session{}, apperrors.ErrSessionExpired
	}

	session.UserProfile = bytes.Clone(session.UserProfile)
	return session, nil
}

// Delete removes a session
func (r *InMemoryRepo) Delete(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
	return nil
}

// PurgeExpired drops every expired session and returns how many were removed.
func (r *InMemoryRepo) PurgeExpired() int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, session := range r.sessions {
		if session.Expired(now) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired or not.
func (r *InMemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
