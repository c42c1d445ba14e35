// Package config loads rostersearch settings from an optional config.yaml
// and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"rostersearch/internal/observability"
)

// Supported database drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// EnvPrefix prefixes every environment override, e.g. ROSTER_LOG_LEVEL.
const EnvPrefix = "ROSTER"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	// Driver is memory, sqlite or postgres. When empty it is inferred from
	// the DSN.
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	// SeedPath, when set, is a YAML fixture applied at startup.
	SeedPath string `mapstructure:"seed_path"`
}

type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	AddSource bool   `mapstructure:"add_source"`
}

type SentryConfig struct {
	DSN              string  `mapstructure:"dsn"`
	Environment      string  `mapstructure:"environment"`
	TracesSampleRate float64 `mapstructure:"traces_sample_rate"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	// TrustedProxies lists CIDRs whose X-Forwarded-For header is honoured
	// when keying clients.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

var defaults = map[string]any{
	"server.addr":                    ":3000",
	"server.read_timeout":            "10s",
	"server.write_timeout":           "30s",
	"server.idle_timeout":            "60s",
	"server.shutdown_timeout":        "15s",
	"database.driver":                "",
	"database.dsn":                   "file:rostersearch.db?cache=shared&_pragma=foreign_keys(1)",
	"database.seed_path":             "",
	"log.level":                      "info",
	"log.format":                     "json",
	"log.add_source":                 false,
	"sentry.dsn":                     "",
	"sentry.environment":             "development",
	"sentry.traces_sample_rate":      1.0,
	"metrics.enabled":                true,
	"metrics.namespace":              "rostersearch",
	"rate_limit.enabled":             true,
	"rate_limit.requests_per_second": 100.0,
	"rate_limit.burst":               200,
	"rate_limit.trusted_proxies":     []string{},
	"cors.allowed_origins":           []string{"*"},
}

func newViper() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Plain platform variables commonly injected by hosts.
	_ = v.BindEnv("database.dsn", EnvPrefix+"_DATABASE_DSN", "DATABASE_URL")
	_ = v.BindEnv("sentry.dsn", EnvPrefix+"_SENTRY_DSN", "SENTRY_DSN")
	return v
}

// Load reads config.yaml from path (a directory or a file; empty means the
// working directory) and applies environment overrides. A missing file is
// not an error.
func Load(path string) (Config, error) {
	v := newViper()
	switch {
	case path != "" && isFile(path):
		v.SetConfigFile(path)
	default:
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if path != "" {
			v.AddConfigPath(path)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return Config{}, err
	}

	// PORT only applies when the address was not configured explicitly.
	if port := os.Getenv("PORT"); port != "" && !v.InConfig("server.addr") {
		if _, ok := os.LookupEnv(EnvPrefix + "_SERVER_ADDR"); !ok {
			cfg.Server.Addr = ":" + port
		}
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = inferDriver(cfg.Database.DSN)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ConfigFile reports the file a Load with the same path would read, or ""
// when none exists.
func ConfigFile(path string) string {
	if path != "" && isFile(path) {
		return path
	}
	dirs := []string{"."}
	if path != "" {
		dirs = append([]string{path}, dirs...)
	}
	for _, dir := range dirs {
		for _, ext := range []string{"yaml", "yml"} {
			candidate := filepath.Join(dir, "config."+ext)
			if isFile(candidate) {
				return candidate
			}
		}
	}
	return ""
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func inferDriver(dsn string) string {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DriverPostgres
	case dsn == DriverMemory:
		return DriverMemory
	default:
		return DriverSQLite
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverMemory, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("config: unknown database driver %q", c.Database.Driver)
	}
	if c.Database.Driver != DriverMemory && c.Database.DSN == "" {
		return fmt.Errorf("config: database.dsn is required for driver %q", c.Database.Driver)
	}
	if c.Server.Addr == "" {
		return errors.New("config: server.addr is required")
	}
	if err := observability.ValidLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return errors.New("config: rate_limit.requests_per_second and rate_limit.burst must be positive")
	}
	if c.Sentry.TracesSampleRate < 0 || c.Sentry.TracesSampleRate > 1 {
		return errors.New("config: sentry.traces_sample_rate must be between 0 and 1")
	}
	return nil
}

// LoggerOptions maps the log settings onto the observability logger.
func (c Config) LoggerOptions() observability.Config {
	lc := observability.DefaultConfig()
	lc.Level = c.Log.Level
	lc.Format = c.Log.Format
	lc.AddSource = c.Log.AddSource
	lc.Breadcrumbs = c.Sentry.DSN != ""
	return lc
}

// MetricsOptions maps the metrics settings onto the observability metrics.
// Empty namespace or version keep the observability defaults.
func (c Config) MetricsOptions(version string) observability.MetricsConfig {
	mc := observability.DefaultMetricsConfig()
	mc.Enabled = c.Metrics.Enabled
	if c.Metrics.Namespace != "" {
		mc.Namespace = c.Metrics.Namespace
	}
	if version != "" {
		mc.Version = version
	}
	return mc
}

func isFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
