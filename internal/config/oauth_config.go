package config

import (
	"strings"
	"time"
)

// DefaultCallbackPath is the callback route appended to the base URL when no
// redirect_uri is configured.
const DefaultCallbackPath = "/login-github-success"

type OAuthConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetRedirectURI() string
	GetAuthorizeURL() string
	GetTokenURL() string
	GetAPIBaseURL() string
	GetConnectionsURL() string
	GetScopes() []string
	GetDeleteScopes() []string
	GetHTTPTimeout() time.Duration
	GetRepositoryName() string
}

type OAuth struct {
	ClientID       string        `yaml:"client_id" env:"CLIENT_ID" validate:"required"`
	ClientSecret   string        `yaml:"client_secret" env:"CLIENT_SECRET" validate:"required"`
	RedirectURI    string        `yaml:"redirect_uri" env:"REDIRECT_URI" validate:"omitempty,url"`
	AuthorizeURL   string        `yaml:"authorize_url" env:"AUTHORIZE_URL" validate:"required,url"`
	TokenURL       string        `yaml:"token_url" env:"TOKEN_URL" validate:"required,url"`
	APIBaseURL     string        `yaml:"api_base_url" env:"API_BASE_URL" validate:"required,url"`
	ConnectionsURL string        `yaml:"connections_url" env:"CONNECTIONS_URL" validate:"required,url"`
	Scopes         []string      `yaml:"scopes" env:"SCOPES" envSeparator:","`
	DeleteScopes   []string      `yaml:"delete_scopes" env:"DELETE_SCOPES" envSeparator:","`
	HTTPTimeout    time.Duration `yaml:"http_timeout" env:"HTTP_TIMEOUT" validate:"gte=0"`
	RepositoryName string        `yaml:"repository_name" env:"REPOSITORY_NAME" validate:"required"`
}

var _ OAuthConfig = OAuth{}

func (o OAuth) GetClientID() string {
	return o.ClientID
}

func (o OAuth) GetClientSecret() string {
	return o.ClientSecret
}

func (o OAuth) GetRedirectURI() string {
	return o.RedirectURI
}

func (o OAuth) GetAuthorizeURL() string {
	return o.AuthorizeURL
}

func (o OAuth) GetTokenURL() string {
	return o.TokenURL
}

func (o OAuth) GetAPIBaseURL() string {
	return o.APIBaseURL
}

// GetConnectionsURL returns the provider page where the user can revoke this
// application's grant.
func (o OAuth) GetConnectionsURL() string {
	return strings.TrimRight(o.ConnectionsURL, "/") + "/" + o.ClientID
}

func (o OAuth) GetScopes() []string {
	return o.Scopes
}

func (o OAuth) GetDeleteScopes() []string {
	return o.DeleteScopes
}

func (o OAuth) GetHTTPTimeout() time.Duration {
	return o.HTTPTimeout
}

func (o OAuth) GetRepositoryName() string {
	return o.RepositoryName
}
