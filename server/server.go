package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/gitfiti/gitfiti"
	"github.com/jrsteele09/gitfiti/internal/config"
	"github.com/jrsteele09/gitfiti/internal/metrics"
	"github.com/jrsteele09/gitfiti/provider"
	"github.com/jrsteele09/gitfiti/sessions"
	"github.com/jrsteele09/gitfiti/state"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env    string // Environment (e.g., "DEV", "PROD")
	mux    *http.ServeMux
	routes []string
	config config.Config

	tokenizer *state.Tokenizer
	exchanger *provider.Exchanger
	sessions  *sessions.Manager
	painter   *gitfiti.Painter
	metrics   *metrics.Collector
}

type Option func(*Server)

// WithHTTPClient sets the client used for calls to the provider.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Server) {
		s.exchanger = provider.NewExchanger(providerConfig(s.config), provider.WithHTTPClient(c), provider.WithRecorder(s.metrics))
	}
}

func New(cfg config.Config, sessionRepo sessions.Repo, opts ...Option) (*Server, error) {
	tokenizer, err := state.NewTokenizer(cfg.GetStatePepper())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create state tokenizer: %w", err)
	}
	codec, err := sessions.NewCookieCodec(cfg.GetSessionSecret(), cfg.GetAppName())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create session codec: %w", err)
	}

	collector := metrics.New()
	s := &Server{
		env:       cfg.GetEnv(),
		mux:       http.NewServeMux(),
		config:    cfg,
		tokenizer: tokenizer,
		exchanger: provider.NewExchanger(providerConfig(cfg), provider.WithRecorder(collector)),
		sessions:  sessions.NewManager(sessionRepo, codec, cfg.GetMaxSessionAge()),
		metrics:   collector,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.painter = gitfiti.NewPainter(s.exchanger, cfg.GetRepositoryName())

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func providerConfig(cfg config.Config) provider.Config {
	return provider.Config{
		ClientID:     cfg.GetClientID(),
		ClientSecret: cfg.GetClientSecret(),
		RedirectURI:  cfg.GetRedirectURI(),
		AuthorizeURL: cfg.GetAuthorizeURL(),
		TokenURL:     cfg.GetTokenURL(),
		APIBaseURL:   cfg.GetAPIBaseURL(),
		Timeout:      cfg.GetHTTPTimeout(),
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colourMethod(method), path)
}

func colourMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
