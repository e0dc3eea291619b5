package sessions

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/gitfiti/internal/errors"
)

// CookieName is the name of the cookie that binds a browser to its session.
const CookieName = "gitfiti_session"

// Manager binds sessions in a Repo to browsers through a signed cookie.
type Manager struct {
	repo   Repo
	codec  *CookieCodec
	maxAge time.Duration
	now    func() time.Time
}

func NewManager(repo Repo, codec *CookieCodec, maxAge time.Duration) *Manager {
	return &Manager{
		repo:   repo,
		codec:  codec,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Load returns the session bound to the request. ErrSessionNotFound is
// returned when the browser has no session cookie.
func (m *Manager) Load(r *http.Request) (Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return Session{}, apperrors.ErrSessionNotFound
	}
	sessionID, err := m.codec.Decode(cookie.Value)
	if err != nil {
		return Session{}, err
	}
	return m.repo.Get(sessionID)
}

// Save stores the session and issues its cookie. A session without an ID is
// new: it gets a fresh ID and an expiry of now plus the maximum session age.
func (m *Manager) Save(w http.ResponseWriter, r *http.Request, s Session) (Session, error) {
	now := m.now()
	if s.ID == "" {
		s.ID = uuid.NewString()
		s.CreatedAt = now
		s.ExpiresAt = now.Add(m.maxAge)
	}

	if err := m.repo.Upsert(s.ID, s); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}

	value, err := m.codec.Encode(s.ID, s.ExpiresAt)
	if err != nil {
		return Session{}, err
	}
	setCookie(w, r, value, int(s.ExpiresAt.Sub(now).Seconds()))
	return s, nil
}

// Update stores changes to an existing session without touching the cookie.
// It fails with ErrSessionNotFound once the session has been cleared.
func (m *Manager) Update(s Session) error {
	if s.ID == "" {
		return fmt.Errorf("sessionID is required")
	}
	return m.repo.Update(s.ID, s)
}

// Clear forgets the session bound to the request, if any, and expires the
// cookie.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	var err error
	if cookie, cookieErr := r.Cookie(CookieName); cookieErr == nil && cookie.Value != "" {
		if sessionID, decodeErr := m.codec.Decode(cookie.Value); decodeErr == nil {
			err = m.repo.Delete(sessionID)
		}
	}
	setCookie(w, r, "", -1)
	return err
}

func setCookie(w http.ResponseWriter, r *http.Request, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func isSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return r.Header.Get("X-Forwarded-Proto") == "https"
}
