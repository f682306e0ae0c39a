package bootstrap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitglue/bike-miles/pkg/integrations/strava"
)

// isolate runs the test in an empty directory with no config-related env.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv(ConfigPathEnvVar, "")
	for env := range envMappings {
		t.Setenv(strings.ToUpper(env), "")
		os.Unsetenv(strings.ToUpper(env))
	}
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, strava.DefaultBaseURL, cfg.Strava.BaseURL)
	assert.Equal(t, 200, cfg.Strava.PageSize)
	assert.Equal(t, 10*time.Second, cfg.Strava.Timeout)
	assert.Equal(t, ":3000", cfg.Server.Address)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 60, cfg.Server.RateLimit)
	assert.Equal(t, "development", cfg.Sentry.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.OAuth.ClientID)
}

func TestLoadConfig_Environment(t *testing.T) {
	isolate(t)
	t.Setenv("STRAVA_API_BASE", "http://localhost:9999/api/v3")
	t.Setenv("STRAVA_PAGE_SIZE", "50")
	t.Setenv("STRAVA_TIMEOUT", "3s")
	t.Setenv("STRAVA_CLIENT_ID", "12345")
	t.Setenv("STRAVA_REDIRECT_URI", "http://localhost:3000/api/callback")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("RATE_LIMIT_REQUESTS", "0")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999/api/v3", cfg.Strava.BaseURL)
	assert.Equal(t, 50, cfg.Strava.PageSize)
	assert.Equal(t, 3*time.Second, cfg.Strava.Timeout)
	assert.Equal(t, "12345", cfg.OAuth.ClientID)
	assert.Equal(t, "http://localhost:3000/api/callback", cfg.OAuth.RedirectURI)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 0, cfg.Server.RateLimit)
	assert.Equal(t, "debug", cfg.LogLevel)

	client := cfg.Strava.Client()
	assert.Equal(t, strava.Config{BaseURL: "http://localhost:9999/api/v3", PageSize: 50, Timeout: 3 * time.Second}, client)
}

func TestLoadConfig_FileThenEnvironment(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
strava:
  page_size: 100
server:
  address: ":8080"
oauth:
  client_id: from-file
`), 0o600))
	t.Setenv("STRAVA_CLIENT_ID", "from-env")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Strava.PageSize)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "from-env", cfg.OAuth.ClientID)
}

func TestLoadConfig_DefaultFileInWorkingDirectory(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigPath), []byte("log_level: warn\n"), 0o600))

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STRAVA_CLIENT_SECRET=shh\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("STRAVA_CLIENT_SECRET") })

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "shh", cfg.OAuth.ClientSecret)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := LoadConfig(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "page size too large", env: map[string]string{"STRAVA_PAGE_SIZE": "500"}},
		{name: "page size zero", env: map[string]string{"STRAVA_PAGE_SIZE": "0"}},
		{name: "bad base url", env: map[string]string{"STRAVA_API_BASE": "not a url"}},
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "loud"}},
		{name: "negative rate limit", env: map[string]string{"RATE_LIMIT_REQUESTS": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "configuration validation failed")
		})
	}
}
