// Package config loads f1mcp settings from f1mcp.yaml and the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/petal-labs/f1mcp/f1api"
	"github.com/petal-labs/f1mcp/health"
)

const (
	projectConfigName = "f1mcp.yaml"
	homeConfigName    = "config.yaml"
	homeConfigDir     = ".f1mcp"
)

// Environment variables that override file settings.
const (
	EnvBaseURL        = "F1MCP_BASE_URL"
	EnvTimeout        = "F1MCP_TIMEOUT"
	EnvLogLevel       = "F1MCP_LOG_LEVEL"
	EnvHealthSchedule = "F1MCP_HEALTH_SCHEDULE"
	EnvOTLPEndpoint   = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

// Config is the full f1mcp.yaml shape.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Server    ServerConfig    `yaml:"server"`
	HTTP      HTTPConfig      `yaml:"http"`
	Health    HealthConfig    `yaml:"health"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Log       LogConfig       `yaml:"log"`
}

// APIConfig points at the remote F1 API.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent,omitempty"`
}

// ServerConfig is the MCP server identity.
type ServerConfig struct {
	Name         string `yaml:"name"`
	Version      string `yaml:"version"`
	Instructions string `yaml:"instructions,omitempty"`
}

// HTTPConfig configures the plain HTTP handler variant.
type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	CORSOrigin   string        `yaml:"cors_origin,omitempty"`
	MaxBody      int64         `yaml:"max_body"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// HealthConfig schedules upstream probes.
type HealthConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Schedule string        `yaml:"schedule"`
	Timeout  time.Duration `yaml:"timeout"`
}

// TelemetryConfig selects the OTLP trace endpoint.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty"`
	ServiceName  string `yaml:"service_name,omitempty"`
}

// LogConfig controls the stderr logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL: f1api.DefaultBaseURL,
			Timeout: f1api.DefaultTimeout,
		},
		Server: ServerConfig{
			Name:    "F1 API",
			Version: "1.0.0",
		},
		HTTP: HTTPConfig{
			Addr:         ":8080",
			MaxBody:      1 << 20,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Health: HealthConfig{
			Enabled:  false,
			Schedule: health.DefaultSchedule,
			Timeout:  10 * time.Second,
		},
		Telemetry: TelemetryConfig{ServiceName: "f1mcp"},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

// DiscoverPath resolves the config location with first-match semantics.
func DiscoverPath(explicitPath string) (string, bool, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", false, fmt.Errorf("resolve working directory: %w", err)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("resolve user home: %w", err)
	}
	return DiscoverPathFrom(explicitPath, cwd, homeDir)
}

// DiscoverPathFrom is a testable variant of DiscoverPath.
func DiscoverPathFrom(explicitPath, cwd, homeDir string) (string, bool, error) {
	explicit := strings.TrimSpace(explicitPath)
	var candidates []string
	if explicit != "" {
		candidates = []string{filepath.Clean(explicit)}
	} else {
		candidates = []string{
			filepath.Join(cwd, projectConfigName),
			filepath.Join(homeDir, homeConfigDir, homeConfigName),
		}
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			if explicit != "" {
				return "", false, fmt.Errorf("config file %q not found", candidate)
			}
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("checking config path %q: %w", candidate, err)
		}
	}
	return "", false, nil
}

// Load reads path over the defaults. An empty path yields Default().
func Load(path string) (Config, error) {
	cfg := Default()
	clean := strings.TrimSpace(path)
	if clean == "" {
		return cfg, nil
	}
	// #nosec G304 -- path resolved from explicit local config discovery.
	data, err := os.ReadFile(clean)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %q: %w", clean, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %q: %w", clean, err)
	}
	return cfg, nil
}

// ApplyEnv overlays environment overrides using lookup (os.LookupEnv in production).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvBaseURL); ok && strings.TrimSpace(v) != "" {
		c.API.BaseURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvTimeout); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.API.Timeout = d
	}
	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		c.Log.Level = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvHealthSchedule); ok && strings.TrimSpace(v) != "" {
		c.Health.Schedule = strings.TrimSpace(v)
		c.Health.Enabled = true
	}
	if v, ok := lookup(EnvOTLPEndpoint); ok && strings.TrimSpace(v) != "" {
		c.Telemetry.OTLPEndpoint = strings.TrimSpace(v)
	}
	return nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if u, err := url.Parse(c.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url %q must be an absolute http(s) URL", c.API.BaseURL))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout))
	}
	if c.HTTP.MaxBody <= 0 {
		errs = append(errs, fmt.Errorf("http.max_body must be positive, got %d", c.HTTP.MaxBody))
	}
	if c.Health.Enabled {
		if _, err := health.ParseSchedule(c.Health.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("health.schedule: %w", err))
		}
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q must be debug, info, warn or error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}
	return errors.Join(errs...)
}
