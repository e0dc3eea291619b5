package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/gitfiti/internal/config"
	apperrors "github.com/jrsteele09/gitfiti/internal/errors"
	"github.com/stretchr/testify/require"
)

const validYAML = `
client_id: a9cf5872fc5369927967
client_secret: s3cr3t
state_pepper: pepper
session_secret: 0123456789abcdef0123
base_url: https://gitfiti.example.com/
http_timeout: 3s
scopes:
  - public_repo
  - read:user
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FromYAML(t *testing.T) {
	c, err := config.Load(writeFile(t, "config.yml", validYAML))
	require.NoError(t, err)

	require.Equal(t, "a9cf5872fc5369927967", c.GetClientID())
	require.Equal(t, "s3cr3t", c.GetClientSecret())
	require.Equal(t, "pepper", c.GetStatePepper())
	require.Equal(t, "https://gitfiti.example.com", c.GetBaseURL())
	require.Equal(t, "https://gitfiti.example.com"+config.DefaultCallbackPath, c.GetRedirectURI())
	require.Equal(t, 3*time.Second, c.GetHTTPTimeout())
	require.Equal(t, []string{"public_repo", "read:user"}, c.GetScopes())

	// Defaults survive when the file does not mention them.
	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "https://github.com/login/oauth/access_token", c.GetTokenURL())
	require.Equal(t, "https://api.github.com", c.GetAPIBaseURL())
	require.Equal(t, []string{"public_repo", "delete_repo"}, c.GetDeleteScopes())
	require.Equal(t, "https://github.com/settings/connections/applications/a9cf5872fc5369927967", c.GetConnectionsURL())
	require.Equal(t, 12*time.Hour, c.GetMaxSessionAge())
	require.True(t, c.IsDev())
	require.True(t, c.GetMetricsEnabled())
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv("GITFITI_CLIENT_SECRET", "from-env")
	t.Setenv("GITFITI_PORT", ":9999")
	t.Setenv("GITFITI_ENV", "PROD")
	t.Setenv("GITFITI_SCOPES", "repo,user")

	c, err := config.Load(writeFile(t, "config.yml", validYAML))
	require.NoError(t, err)

	require.Equal(t, "from-env", c.GetClientSecret())
	require.Equal(t, ":9999", c.GetPort())
	require.False(t, c.IsDev())
	require.Equal(t, []string{"repo", "user"}, c.GetScopes())
}

func TestLoad_DotEnvFile(t *testing.T) {
	envFile := writeFile(t, ".env", "GITFITI_CLIENT_ID=dotenv-client\n"+
		"GITFITI_CLIENT_SECRET=dotenv-secret\n"+
		"GITFITI_STATE_PEPPER=dotenv-pepper\n"+
		"GITFITI_SESSION_SECRET=dotenv-session-secret\n")
	t.Cleanup(func() {
		for _, k := range []string{"GITFITI_CLIENT_ID", "GITFITI_CLIENT_SECRET", "GITFITI_STATE_PEPPER", "GITFITI_SESSION_SECRET"} {
			os.Unsetenv(k)
		}
	})

	c, err := config.Load("", envFile)
	require.NoError(t, err)
	require.Equal(t, "dotenv-client", c.GetClientID())
	require.Equal(t, "dotenv-pepper", c.GetStatePepper())
	require.Equal(t, "http://localhost:8080"+config.DefaultCallbackPath, c.GetRedirectURI())
}

func TestLoad_MissingSecrets(t *testing.T) {
	_, err := config.Load(writeFile(t, "config.yml", "client_id: abc\n"))
	require.Error(t, err)
	require.ErrorIs(t, err, apperrors.ErrConfigurationMissing)
	require.Contains(t, err.Error(), "client_secret")
	require.Contains(t, err.Error(), "state_pepper")
}

func TestLoad_InvalidValues(t *testing.T) {
	_, err := config.Load(writeFile(t, "config.yml", strings.Replace(validYAML, "session_secret: 0123456789abcdef0123", "session_secret: short", 1)))
	require.Error(t, err)
	require.NotErrorIs(t, err, apperrors.ErrConfigurationMissing)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}
