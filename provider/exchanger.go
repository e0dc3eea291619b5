package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/gitfiti/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	contentTypeJSON  = "application/json"
	maxResponseBytes = 10 << 20
	maxRedirects     = 10
)

// Token exchange outcomes reported to the Recorder.
const (
	OutcomeSuccess   = "success"
	OutcomeRejected  = "rejected"
	OutcomeMalformed = "malformed"
	OutcomeTransport = "transport_error"
)

// Recorder observes outbound provider traffic.
type Recorder interface {
	ObserveTokenExchange(outcome string)
	ObserveAPICall(method Method, status int, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveTokenExchange(string) {}
func (nopRecorder) ObserveAPICall(Method, int, time.Duration) {}

// Exchanger performs the authorization-code exchange with the provider and
// wraps bearer-authenticated calls to its API. It holds no per-user state and
// is safe for concurrent use.
type Exchanger struct {
	cfg        Config
	httpClient *http.Client
	recorder   Recorder
}

type Option func(*Exchanger)

// WithHTTPClient replaces the client used for every outbound request.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Exchanger) {
		e.httpClient = c
	}
}

func WithRecorder(r Recorder) Option {
	return func(e *Exchanger) {
		if r != nil {
			e.recorder = r
		}
	}
}

func NewExchanger(cfg Config, opts ...Option) *Exchanger {
	e := &Exchanger{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		recorder:   nopRecorder{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Exchanger) oauth2Config(scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     e.cfg.ClientID,
		ClientSecret: e.cfg.ClientSecret,
		RedirectURL:  e.cfg.RedirectURI,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  e.cfg.AuthorizeURL,
			TokenURL: e.cfg.TokenURL,
		},
	}
}

// AuthCodeURL returns the provider URL the browser is sent to in order to
// start a login carrying state.
func (e *Exchanger) AuthCodeURL(state string, scopes []string) string {
	return e.oauth2Config(scopes).AuthCodeURL(state)
}

// ExchangeCodeForToken trades an authorization code for an access token.
//
// Only a 200 response whose JSON body carries a non-empty access_token
// succeeds. Rejected codes, malformed bodies and transport failures all
// return ok == false; the cause is logged but not returned.
func (e *Exchanger) ExchangeCodeForToken(ctx context.Context, code string) (accessToken string, ok bool) {
	outcome := OutcomeTransport
	defer func() {
		e.recorder.ObserveTokenExchange(outcome)
	}()

	payload, err := json.Marshal(tokenRequest{
		ClientID:     e.cfg.ClientID,
		ClientSecret: e.cfg.ClientSecret,
		Code:         code,
		RedirectURI:  e.cfg.RedirectURI,
	})
	if err != nil {
		log.Err(err).Msg("token exchange: failed to encode request")
		return "", false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.TokenURL, bytes.NewReader(payload))
	if err != nil {
		log.Err(err).Msg("token exchange: failed to build request")
		return "", false
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("token exchange: request failed")
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		outcome = OutcomeRejected
		log.Warn().Int("status", resp.StatusCode).Msg("token exchange: unexpected status")
		return "", false
	}

	var body tokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		outcome = OutcomeMalformed
		log.Warn().Err(err).Msg("token exchange: malformed response body")
		return "", false
	}

	if body.AccessToken == nil || *body.AccessToken == "" {
		outcome = OutcomeRejected
		log.Warn().Str("error", body.Error).Str("error_description", body.ErrorDescription).Msg("token exchange: no access token in response")
		return "", false
	}

	outcome = OutcomeSuccess
	log.Debug().Str("scope", body.Scope).Msg("token exchange: access token issued")
	return *body.AccessToken, true
}

// CallAPI sends a bearer-authenticated request to <api base>/<route>. body,
// when not nil, is sent as JSON.
//
// Any status in [200, 400) returns the response body (nil when empty). Other
// statuses return an *APIError carrying the status and body. No retries are
// attempted.
func (e *Exchanger) CallAPI(ctx context.Context, method Method, route, accessToken string, body any) (json.RawMessage, error) {
	if !method.Valid() {
		return nil, apperrors.Wrapf(apperrors.ErrUnsupportedMethod, "%q", string(method))
	}
	if accessToken == "" {
		return nil, apperrors.Wrapf(apperrors.ErrNoAccessToken, "%s %s", method, route)
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, route, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, string(method), e.apiURL(route), reqBody)
	if err != nil {
		return nil, fmt.Errorf("build %s %s request: %w", method, route, err)
	}
	req.Header.Set("Accept", contentTypeJSON)
	if body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}

	start := time.Now()
	resp, err := e.apiClient(ctx, accessToken).Do(req)
	if err != nil {
		e.recorder.ObserveAPICall(method, 0, time.Since(start))
		return nil, fmt.Errorf("%s %s: %w", method, route, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	e.recorder.ObserveAPICall(method, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", method, route, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusBadRequest {
		return nil, &APIError{
			Method: method,
			Route:  route,
			Status: resp.StatusCode,
			Body:   asJSON(raw),
		}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidResponse, "%s %s returned status %d with a non-JSON body", method, route, resp.StatusCode)
	}
	return json.RawMessage(raw), nil
}

// FetchUser returns the authenticated user's profile together with the raw
// body so callers can cache it.
func (e *Exchanger) FetchUser(ctx context.Context, accessToken string) (User, json.RawMessage, error) {
	raw, err := e.CallAPI(ctx, MethodGet, "user", accessToken, nil)
	if err != nil {
		return User{}, nil, err
	}
	u, err := DecodeUser(raw)
	if err != nil {
		return User{}, nil, err
	}
	return u, raw, nil
}

func (e *Exchanger) apiURL(route string) string {
	return strings.TrimRight(e.cfg.APIBaseURL, "/") + "/" + strings.TrimLeft(route, "/")
}

// apiClient wraps the configured client in an oauth2 transport that sets the
// Authorization header.
func (e *Exchanger) apiClient(ctx context.Context, accessToken string) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	client.Timeout = e.httpClient.Timeout
	client.CheckRedirect = sameHostRedirect
	return client
}

// sameHostRedirect follows redirects only within the host of the original
// request. The oauth2 transport sets the bearer header on every hop, so a
// redirect elsewhere is returned to the caller unfollowed.
func sameHostRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if req.URL.Host != via[0].URL.Host {
		return http.ErrUseLastResponse
	}
	return nil
}

func asJSON(raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	quoted, err := json.Marshal(string(trimmed))
	if err != nil {
		return nil
	}
	return quoted
}
