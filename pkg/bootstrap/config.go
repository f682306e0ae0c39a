package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/fitglue/bike-miles/pkg/integrations/strava"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPath is read when present and CONFIG_PATH is unset.
const DefaultConfigPath = "bike-miles.yaml"

// Config holds the configuration shared by the CLI and the HTTP server.
type Config struct {
	Strava   StravaConfig `koanf:"strava"`
	OAuth    OAuthConfig  `koanf:"oauth"`
	Server   ServerConfig `koanf:"server"`
	Sentry   SentryConfig `koanf:"sentry"`
	LogLevel string       `koanf:"log_level" validate:"oneof=debug info warn error"`
}

type StravaConfig struct {
	BaseURL  string        `koanf:"base_url" validate:"required,url"`
	PageSize int           `koanf:"page_size" validate:"min=1,max=200"`
	Timeout  time.Duration `koanf:"timeout" validate:"gt=0"`
}

// Client converts to the Strava client's configuration.
func (c StravaConfig) Client() strava.Config {
	return strava.Config{BaseURL: c.BaseURL, PageSize: c.PageSize, Timeout: c.Timeout}
}

type OAuthConfig struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	RedirectURI  string `koanf:"redirect_uri" validate:"omitempty,url"`
}

type ServerConfig struct {
	Address         string        `koanf:"address" validate:"required"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimit       int           `koanf:"rate_limit" validate:"min=0"` // requests per minute per IP, 0 disables
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

type SentryConfig struct {
	DSN         string `koanf:"dsn" validate:"omitempty,url"`
	Environment string `koanf:"environment"`
	Release     string `koanf:"release"`
}

// DefaultConfig returns the built-in defaults, the lowest configuration layer.
func DefaultConfig() *Config {
	sc := strava.DefaultConfig()
	return &Config{
		Strava: StravaConfig{
			BaseURL:  sc.BaseURL,
			PageSize: sc.PageSize,
			Timeout:  sc.Timeout,
		},
		Server: ServerConfig{
			Address:         ":3000",
			CORSOrigins:     []string{"*"},
			RateLimit:       60,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    60 * time.Second, // a large history is many sequential pages
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Sentry: SentryConfig{
			Environment: "development",
		},
		LogLevel: "info",
	}
}

// envMappings maps environment variable names (lowercased) to config paths.
var envMappings = map[string]string{
	"strava_api_base":       "strava.base_url",
	"strava_page_size":      "strava.page_size",
	"strava_timeout":        "strava.timeout",
	"strava_client_id":      "oauth.client_id",
	"strava_client_secret":  "oauth.client_secret",
	"strava_redirect_uri":   "oauth.redirect_uri",
	"http_address":          "server.address",
	"cors_origins":          "server.cors_origins",
	"rate_limit_requests":   "server.rate_limit",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"sentry_dsn":            "sentry.dsn",
	"environment":           "sentry.environment",
	"sentry_release":        "sentry.release",
	"log_level":             "log_level",
}

func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	// Unmapped variables are skipped.
	return ""
}

var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields splits comma-separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// LoadConfig layers defaults, the optional YAML file at path and the
// environment, in that order of increasing priority. A .env file in the
// working directory is loaded into the environment first when present.
// An empty path falls back to CONFIG_PATH, then DefaultConfigPath.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = os.Getenv(ConfigPathEnvVar)
		explicit = path != ""
	}
	if !explicit {
		path = DefaultConfigPath
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c *Config) Validate() error {
	return validate.Struct(c)
}
