package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jrsteele09/gitfiti/gitfiti"
	apperrors "github.com/jrsteele09/gitfiti/internal/errors"
	"github.com/jrsteele09/gitfiti/provider"
	"github.com/jrsteele09/gitfiti/sessions"
	"github.com/rs/zerolog"
)

// maxPlanBytes bounds the body of a commit plan upload.
const maxPlanBytes = 1 << 20

// GitfitiPageData is the template model for gitfiti.html
type GitfitiPageData struct {
	AppName        string
	User           provider.User
	RepositoryName string
	MaxCount       int
}

// GitfitiPageHandler renders the drawing canvas for the logged in user.
func (s *Server) GitfitiPageHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("gitfiti.html")
	if err != nil {
		panic("Failed to parse gitfiti template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessionFromContext(r.Context())
		user, err := s.userProfile(r.Context(), &session)
		if err != nil {
			if s.dropRevokedSession(w, r, err) {
				http.Redirect(w, r, RouteLogin, http.StatusFound)
				return
			}
			zerolog.Ctx(r.Context()).Err(err).Msg("fetch user profile")
			s.renderMessage(w, http.StatusBadGateway, "Github unavailable", "Failed to retrieve your profile from Github.")
			return
		}

		data := GitfitiPageData{
			AppName:        s.config.GetAppName(),
			User:           user,
			RepositoryName: s.config.GetRepositoryName(),
			MaxCount:       gitfiti.MaxCountPerDay,
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			zerolog.Ctx(r.Context()).Err(err).Msg("render gitfiti page")
		}
	}
}

// ProfileHandler returns the cached user profile as JSON.
func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessionFromContext(r.Context())
		if _, err := s.userProfile(r.Context(), &session); err != nil {
			s.writeAPIFailure(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(session.UserProfile)
	}
}

// PostCommitsHandler accepts a commit plan from the canvas and pushes it to
// the user's gitfiti repository.
func (s *Server) PostCommitsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessionFromContext(r.Context())

		var plan gitfiti.Plan
		decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPlanBytes))
		if err := decoder.Decode(&plan); err != nil {
			writeJSONMessage(w, http.StatusBadRequest, "Invalid commit data.")
			return
		}

		user, err := s.userProfile(r.Context(), &session)
		if err != nil {
			s.writeAPIFailure(w, r, err)
			return
		}

		result, err := s.painter.Paint(r.Context(), session.AccessToken, user, plan)
		if err != nil {
			s.writeAPIFailure(w, r, err)
			return
		}
		s.metrics.AddCommitsPushed(result.Commits)

		writeJSON(w, http.StatusOK, struct {
			Message string `json:"message"`
			gitfiti.Result
		}{
			Message: fmt.Sprintf("%d commits pushed to %s.", result.Commits, result.Repository),
			Result:  result,
		})
	}
}

// AbortHandler answers every request with 501 Not Implemented.
func (s *Server) AbortHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderMessage(w, http.StatusNotImplemented, "Not implemented", http.StatusText(http.StatusNotImplemented))
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	}
}

// userProfile returns the session's user, fetching it from the provider and
// caching the raw profile on first use.
func (s *Server) userProfile(ctx context.Context, session *sessions.Session) (provider.User, error) {
	if len(session.UserProfile) > 0 {
		return provider.DecodeUser(session.UserProfile)
	}

	user, raw, err := s.exchanger.FetchUser(ctx, session.AccessToken)
	if err != nil {
		return provider.User{}, err
	}
	session.UserProfile = raw
	if err := s.sessions.Update(*session); err != nil {
		zerolog.Ctx(ctx).Err(err).Msg("cache user profile")
	}
	return user, nil
}

// dropRevokedSession clears the session when err shows the provider no longer
// accepts its token.
func (s *Server) dropRevokedSession(w http.ResponseWriter, r *http.Request, err error) bool {
	var apiErr *provider.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		return false
	}
	zerolog.Ctx(r.Context()).Info().Msg("access token rejected, clearing session")
	_ = s.sessions.Clear(w, r)
	return true
}

func (s *Server) writeAPIFailure(w http.ResponseWriter, r *http.Request, err error) {
	if s.dropRevokedSession(w, r, err) {
		writeJSONMessage(w, http.StatusUnauthorized, "Github access was revoked. Please log in again.")
		return
	}
	if apperrors.Is(err, apperrors.ErrInvalidPlan) {
		writeJSONMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	zerolog.Ctx(r.Context()).Err(err).Msg("provider call failed")
	var apiErr *provider.APIError
	if errors.As(err, &apiErr) {
		writeJSONMessage(w, http.StatusBadGateway, "Github rejected the request: "+apiErr.Message())
		return
	}
	writeJSONMessage(w, http.StatusBadGateway, "Failed to reach Github.")
}
