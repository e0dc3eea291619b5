package sessions

import (
	"encoding/json"
	"time"
)

// Session is the per-browser state of an authenticated user. It holds at most
// one access token and the cached provider profile; logout clears both.
type Session struct {
	ID string

	// AccessToken is the provider bearer token ("access_token" session key).
	AccessToken string
	// UserProfile is the raw GET /user body ("user_profile" session key),
	// fetched lazily on the first API call and reused until logout.
	UserProfile json.RawMessage

	CreatedAt time.Time
	ExpiresAt time.Time
}

// Authenticated reports whether the session carries an access token.
func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}

// Expired reports whether the session has outlived its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type Repo interface {
	Upsert(sessionID string, session Session) error
	// Update replaces an existing session. It returns ErrSessionNotFound,
	// without writing, when the session is gone.
	Update(sessionID string, session Session) error
	Get(sessionID string) (Session, error)
	Delete(sessionID string) error
}
