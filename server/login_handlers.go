package server

import (
	"net/http"

	apperrors "github.com/jrsteele09/gitfiti/internal/errors"
	"github.com/jrsteele09/gitfiti/sessions"
	"github.com/rs/zerolog"
)

const (
	msgInvalidState      = "Invalid state."
	msgTokenExchangeFail = "Failed to retrieve access token from Github."
)

// LoginRedirectHandler sends the browser to the provider's authorize page
// with a fresh state token and the given scopes.
func (s *Server) LoginRedirectHandler(scopes []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := s.tokenizer.Generate()
		if err != nil {
			zerolog.Ctx(r.Context()).Err(err).Msg("generate state token")
			s.renderMessage(w, http.StatusInternalServerError, "Login failed", "Could not start the Github login.")
			return
		}
		http.Redirect(w, r, s.exchanger.AuthCodeURL(token, scopes), http.StatusFound)
	}
}

// OAuthCallbackHandler completes the login: the state is verified before the
// code is exchanged, and only a successful exchange creates a session.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())
		query := r.URL.Query()

		// Check for authorization errors
		if errorParam := query.Get("error"); errorParam != "" {
			logger.Warn().Err(apperrors.ErrProviderError).
				Str("error", errorParam).
				Str("error_description", query.Get("error_description")).
				Msg("callback rejected")
			s.renderMessage(w, http.StatusBadRequest, "Login failed", "Github authorization was not granted.")
			return
		}

		valid := s.tokenizer.Verify(query.Get("state"))
		s.metrics.ObserveStateVerification(valid)
		if !valid {
			logger.Warn().Err(apperrors.ErrInvalidState).Msg("callback rejected")
			s.renderMessage(w, http.StatusBadRequest, "Login failed", msgInvalidState)
			return
		}

		accessToken, ok := s.exchanger.ExchangeCodeForToken(r.Context(), query.Get("code"))
		if !ok {
			logger.Warn().Err(apperrors.ErrNoAccessToken).Msg("callback rejected")
			s.renderMessage(w, http.StatusBadGateway, "Login failed", msgTokenExchangeFail)
			return
		}

		// A fresh login always starts a fresh session.
		if _, err := r.Cookie(sessions.CookieName); err == nil {
			_ = s.sessions.Clear(w, r)
		}
		if _, err := s.sessions.Save(w, r, sessions.Session{AccessToken: accessToken}); err != nil {
			logger.Err(err).Msg("save session")
			s.renderMessage(w, http.StatusInternalServerError, "Login failed", "Could not store the Github session.")
			return
		}
		http.Redirect(w, r, RouteGitfiti, http.StatusFound)
	}
}

// LogoutHandler forgets the session and sends the browser to the provider's
// page for revoking the application's access.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.sessions.Clear(w, r); err != nil {
			zerolog.Ctx(r.Context()).Err(err).Msg("clear session")
		}
		http.Redirect(w, r, s.config.GetConnectionsURL(), http.StatusFound)
	}
}
