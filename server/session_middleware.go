package server

import (
	"context"
	"net/http"

	apperrors "github.com/jrsteele09/gitfiti/internal/errors"
	"github.com/jrsteele09/gitfiti/sessions"
	"github.com/rs/zerolog"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the authenticated sessions.Session
const ContextKeySession ContextKey = "session"

// RequireSession is middleware for HTML routes. Requests without a session
// holding an access token are sent to the login redirect.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			session, ok := s.loadSession(w, r)
			if !ok {
				http.Redirect(w, r, RouteLogin, http.StatusFound)
				return
			}
			next(w, r.WithContext(context.WithValue(r.Context(), ContextKeySession, session)))
		}
	}
}

// RequireAPISession is the JSON flavour of RequireSession.
func (s *Server) RequireAPISession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			session, ok := s.loadSession(w, r)
			if !ok {
				writeJSONMessage(w, http.StatusUnauthorized, "Not logged in to Github.")
				return
			}
			next(w, r.WithContext(context.WithValue(r.Context(), ContextKeySession, session)))
		}
	}
}

// loadSession returns the request's authenticated session. Stale or forged
// cookies are expired on the way out.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (sessions.Session, bool) {
	session, err := s.sessions.Load(r)
	if err == nil && session.Authenticated() {
		return session, true
	}
	if _, cookieErr := r.Cookie(sessions.CookieName); cookieErr == nil {
		if err != nil && !apperrors.Is(err, apperrors.ErrSessionNotFound) {
			zerolog.Ctx(r.Context()).Debug().Err(err).Msg("discarding session cookie")
		}
		_ = s.sessions.Clear(w, r)
	}
	return sessions.Session{}, false
}

func sessionFromContext(ctx context.Context) (sessions.Session, bool) {
	session, ok := ctx.Value(ContextKeySession).(sessions.Session)
	return session, ok
}
