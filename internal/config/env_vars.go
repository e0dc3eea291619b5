package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	// EnvPrefix is prepended to every environment variable read by Load.
	EnvPrefix = "GITFITI_"

	configPathEnvVar = EnvPrefix + "CONFIG"
	defaultPath      = "config/config.yml"
)

type EnvVars struct {
	Port     string `yaml:"port" env:"PORT"`
	AppName  string `yaml:"app_name" env:"APP_NAME"`
	Env      string `yaml:"env" env:"ENV" validate:"required"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" validate:"required,url"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" validate:"omitempty,oneof=trace debug info warn error"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.Port
	if port == "" {
		port = "8080"
	}
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return e.Env
}

func (e EnvVars) IsDev() bool {
	return strings.EqualFold(e.GetEnv(), "DEV")
}

// GetBaseURL returns the public base URL of the relay (e.g., "https://gitfiti.example.com").
// The OAuth redirect URI defaults to this base plus the callback route.
func (e EnvVars) GetBaseURL() string {
	return strings.TrimRight(e.BaseURL, "/")
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

// DefaultPath returns the configuration file used when no --config flag is given.
func DefaultPath() string {
	return GetEnv(configPathEnvVar, defaultPath)
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
