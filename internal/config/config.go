// Package config loads the process configuration shared by the tablegen
// CLI and server: defaults, then an optional TOML file, then TABLEGEN_*
// environment variables. The result is validated before use.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-tablegen/pkg/resolver"
)

// EnvPrefix prefixes every environment variable name.
const EnvPrefix = "TABLEGEN_"

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Logging LoggingConfig `toml:"logging"`
	Render  RenderConfig  `toml:"render"`
	Metrics MetricsConfig `toml:"metrics"`
	Themes  ThemesConfig  `toml:"themes"`
}

type ServerConfig struct {
	Host            string   `toml:"host" env:"SERVER_HOST" default:"127.0.0.1"`
	Port            int      `toml:"port" env:"SERVER_PORT" default:"8080"`
	ReadTimeout     Duration `toml:"read_timeout" env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    Duration `toml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	RequestTimeout  Duration `toml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout Duration `toml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	// MaxBodyBytes bounds POST /api/render payloads.
	MaxBodyBytes int64 `toml:"max_body_bytes" env:"SERVER_MAX_BODY_BYTES" default:"4194304"`
	// SampleDir holds <table_type>.yaml|json sample datasets.
	SampleDir string `toml:"sample_dir" env:"SERVER_SAMPLE_DIR"`
}

type LoggingConfig struct {
	Level  string `toml:"level" env:"LOG_LEVEL" default:"info"`
	Format string `toml:"format" env:"LOG_FORMAT" default:"text"`
}

type RenderConfig struct {
	DefaultRenderer string `toml:"default_renderer" env:"RENDER_DEFAULT_RENDERER" default:"html"`
	// PresetsDir adds presets to the embedded ones. Ids may not collide.
	PresetsDir      string `toml:"presets_dir" env:"RENDER_PRESETS_DIR"`
	TemplatesDir    string `toml:"templates_dir" env:"RENDER_TEMPLATES_DIR"`
	CacheSize       int    `toml:"cache_size" env:"RENDER_CACHE_SIZE" default:"256"`
	ShowDetails     bool   `toml:"show_details" env:"RENDER_SHOW_DETAILS" default:"false"`
	FallbackOnError bool   `toml:"fallback_on_error" env:"RENDER_FALLBACK_ON_ERROR" default:"false"`
	RuntimePrefix   string `toml:"runtime_prefix" env:"RENDER_RUNTIME_PREFIX" default:"/runtime/"`
	// Severity maps issue codes (or "default") to silent, warning or error.
	// The environment form is "code=severity,code=severity" and merges over
	// the file table.
	Severity map[string]string `toml:"severity" env:"RENDER_SEVERITY"`
}

// SeverityPolicy builds the resolver policy from the severity table.
func (c RenderConfig) SeverityPolicy() (resolver.SeverityPolicy, error) {
	return resolver.PolicyFromMap(c.Severity)
}

type MetricsConfig struct {
	Enabled   bool   `toml:"enabled" env:"METRICS_ENABLED" default:"true"`
	Namespace string `toml:"namespace" env:"METRICS_NAMESPACE" default:"tablegen"`
}

type ThemesConfig struct {
	Default string `toml:"default" env:"THEME_DEFAULT"`
	Variant string `toml:"variant" env:"THEME_VARIANT"`
	// Manifests are YAML theme manifest paths.
	Manifests []string `toml:"manifests" env:"THEME_MANIFESTS"`
}

// Addr returns the listen address in host:port form.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SetAddr parses a host:port listen address into Host and Port.
func (c *ServerConfig) SetAddr(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("config: listen address %q: %w", addr, err)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("config: listen address %q has an invalid port", addr)
	}
	c.Host = host
	c.Port = n
	return nil
}

// Duration decodes "15s"-style strings from TOML and the environment.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout.Duration < 0 || c.Server.WriteTimeout.Duration < 0 {
		errs = append(errs, "server timeouts must be non-negative")
	}
	if c.Server.ShutdownTimeout.Duration <= 0 {
		errs = append(errs, "server.shutdown_timeout must be positive")
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, "server.max_body_bytes must be positive")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("logging.level %q must be debug, info, warn or error", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("logging.format %q must be text or json", c.Logging.Format))
	}

	if c.Render.CacheSize < 0 {
		errs = append(errs, "render.cache_size must be non-negative")
	}
	if strings.TrimSpace(c.Render.DefaultRenderer) == "" {
		errs = append(errs, "render.default_renderer is required")
	}
	if _, err := c.Render.SeverityPolicy(); err != nil {
		errs = append(errs, fmt.Sprintf("render.severity: %v", err))
	}
	if c.Metrics.Enabled && strings.TrimSpace(c.Metrics.Namespace) == "" {
		errs = append(errs, "metrics.namespace is required when metrics are enabled")
	}
	if c.Themes.Default != "" && len(c.Themes.Manifests) == 0 {
		errs = append(errs, "themes.default requires at least one manifest")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
