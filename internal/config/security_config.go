package config

import "time"

type SecurityConfig interface {
	GetStatePepper() string
	GetSessionSecret() string
	GetMaxSessionAge() time.Duration
}

type Security struct {
	StatePepper   string        `yaml:"state_pepper" env:"STATE_PEPPER" validate:"required"`
	SessionSecret string        `yaml:"session_secret" env:"SESSION_SECRET" validate:"required,min=16"`
	MaxSessionAge time.Duration `yaml:"max_session_age" env:"MAX_SESSION_AGE" validate:"gt=0"`
}

var _ SecurityConfig = Security{}

// GetStatePepper returns the secret mixed into every OAuth state digest. It is
// never sent to the browser or the provider.
func (s Security) GetStatePepper() string {
	return s.StatePepper
}

func (s Security) GetSessionSecret() string {
	return s.SessionSecret
}

func (s Security) GetMaxSessionAge() time.Duration {
	return s.MaxSessionAge
}
