package config

import "time"

// Config is the process-wide, read-only configuration. It is built once at
// start-up by Load and injected into every component that needs it.
type Config interface {
	EnvConfig
	OAuthConfig
	SecurityConfig
	MetricsConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
	GetLogLevel() string
	IsDev() bool
}

type MetricsConfig interface {
	GetMetricsEnabled() bool
}

type mainConfig struct {
	EnvVars  `yaml:",inline"`
	OAuth    `yaml:",inline"`
	Security `yaml:",inline"`
	Metrics  `yaml:",inline"`
}

type Metrics struct {
	MetricsEnabled bool `yaml:"metrics_enabled" env:"METRICS_ENABLED"`
}

var _ MetricsConfig = Metrics{}

func (m Metrics) GetMetricsEnabled() bool {
	return m.MetricsEnabled
}

// defaults returns a configuration holding every non-secret default. Secrets
// are left empty so that validation fails when nothing supplies them.
func defaults() mainConfig {
	return mainConfig{
		EnvVars: EnvVars{
			Port:     "8080",
			AppName:  "Gitfiti",
			Env:      "DEV",
			BaseURL:  "http://localhost:8080",
			LogLevel: "info",
		},
		OAuth: OAuth{
			AuthorizeURL:   "https://github.com/login/oauth/authorize",
			TokenURL:       "https://github.com/login/oauth/access_token",
			APIBaseURL:     "https://api.github.com",
			ConnectionsURL: "https://github.com/settings/connections/applications",
			Scopes:         []string{"public_repo"},
			DeleteScopes:   []string{"public_repo", "delete_repo"},
			HTTPTimeout:    10 * time.Second,
			RepositoryName: "gitfiti",
		},
		Security: Security{
			MaxSessionAge: 12 * time.Hour,
		},
		Metrics: Metrics{
			MetricsEnabled: true,
		},
	}
}
