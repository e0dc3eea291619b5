package provider

import (
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/gitfiti/internal/errors"
)

// Config holds the client registration and endpoints of the OAuth provider.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthorizeURL string
	TokenURL     string
	APIBaseURL   string
	// Timeout bounds every outbound request. Zero means no timeout.
	Timeout time.Duration
}

// tokenRequest is the JSON body posted to the token endpoint.
type tokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Code         string `json:"code"`
	RedirectURI  string `json:"redirect_uri"`
}

// tokenResponse is the subset of the token endpoint reply the exchange reads.
// GitHub answers a bad code with status 200 and an "error" member instead of
// "access_token".
type tokenResponse struct {
	AccessToken      *string `json:"access_token"`
	TokenType        string  `json:"token_type,omitempty"`
	Scope            string  `json:"scope,omitempty"`
	Error            string  `json:"error,omitempty"`
	ErrorDescription string  `json:"error_description,omitempty"`
}

// User is the authenticated user's profile as returned by GET /user.
type User struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

// DisplayName prefers the full name and falls back to the login.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Login
}

// NoreplyEmail is the address the provider attributes to this user regardless
// of their email privacy settings.
func (u User) NoreplyEmail() string {
	return fmt.Sprintf("%d+%s@users.noreply.github.com", u.ID, u.Login)
}

// DecodeUser parses a cached or freshly fetched profile body.
func DecodeUser(raw json.RawMessage) (User, error) {
	var u User
	if len(raw) == 0 {
		return u, apperrors.Wrapf(apperrors.ErrInvalidResponse, "empty user profile")
	}
	if err := json.Unmarshal(raw, &u); err != nil {
		return u, apperrors.Wrapf(apperrors.ErrInvalidResponse, "decode user profile: %v", err)
	}
	if u.Login == "" {
		return u, apperrors.Wrapf(apperrors.ErrInvalidResponse, "user profile has no login")
	}
	return u, nil
}

// APIError is returned by CallAPI for any status outside [200, 400).
type APIError struct {
	Method Method
	Route  string
	Status int
	// Body is the response body. A body that is not JSON is carried as a JSON
	// string.
	Body json.RawMessage
}

func (e *APIError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("provider api %s %s: status %d: %s", e.Method, e.Route, e.Status, msg)
	}
	return fmt.Sprintf("provider api %s %s: status %d", e.Method, e.Route, e.Status)
}

// Message returns the "message" member of the body, or the body itself when
// it is a JSON string.
func (e *APIError) Message() string {
	if len(e.Body) == 0 {
		return ""
	}
	var withMessage struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Body, &withMessage); err == nil {
		return withMessage.Message
	}
	var text string
	if err := json.Unmarshal(e.Body, &text); err == nil {
		return text
	}
	return ""
}
