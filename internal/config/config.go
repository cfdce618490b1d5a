// Package config loads the service configuration from YAML and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Config holds the water-rights service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Search   SearchConfig   `yaml:"search"`
	Export   ExportConfig   `yaml:"export"`
	Logging  LoggingConfig  `yaml:"logging"`
	CORS     CORSConfig     `yaml:"cors"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
	// RequestsPerMinute caps each client IP across the whole API.
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

// DatabaseConfig holds record store settings.
type DatabaseConfig struct {
	Driver             string `yaml:"driver"` // postgres, memory (default: postgres)
	URL                string `yaml:"url"`
	MaxOpenConns       int    `yaml:"max_open_conns"`
	MaxIdleConns       int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMin int    `yaml:"conn_max_lifetime_min"`
	SlowQueryMS        int    `yaml:"slow_query_ms"`
	AutoMigrate        bool   `yaml:"auto_migrate"`
	// SeedCSV, when set, replaces the built-in sample data of the memory
	// driver with the records of an import CSV.
	SeedCSV string `yaml:"seed_csv"`
}

// SearchConfig holds interactive search settings.
type SearchConfig struct {
	PageSize int `yaml:"page_size"`
}

// ExportConfig holds bulk download settings.
type ExportConfig struct {
	MaxRecords        int64   `yaml:"max_records"`
	FetchConcurrency  int     `yaml:"fetch_concurrency"`
	RequestsPerMinute float64 `yaml:"requests_per_minute"`
	Burst             int     `yaml:"burst"`
	FileName          string  `yaml:"file_name"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Env   string `yaml:"env"`   // prod, dev, local
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Driver names.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DefaultPath is read when CONFIG_PATH is unset.
const DefaultPath = "config/local.yaml"

// Load reads .env.local if present, then the YAML file named by CONFIG_PATH.
// PORT and DATABASE_URL override the file.
func Load() (Config, error) {
	_ = godotenv.Load(".env.local")

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultPath
	}
	return LoadFile(path)
}

// LoadFile reads one YAML file, expands ${VAR} references, applies
// environment overrides and defaults, then validates.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg, err := Parse(expandEnvVars(data))
	if err != nil {
		return Config{}, err
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Parse decodes YAML without touching the environment.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT must be a number, got %q", v)
		}
		c.HTTP.Port = port
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	return nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 5050
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 15
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Large exports stream for a while.
		c.HTTP.WriteTimeoutSec = 300
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.RequestsPerMinute <= 0 {
		c.HTTP.RequestsPerMinute = 300
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = 20
	}
	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = c.Database.MaxOpenConns
	}
	if c.Database.ConnMaxLifetimeMin <= 0 {
		c.Database.ConnMaxLifetimeMin = 30
	}
	if c.Database.SlowQueryMS <= 0 {
		c.Database.SlowQueryMS = 100
	}
	if c.Search.PageSize <= 0 {
		c.Search.PageSize = 100
	}
	if c.Export.MaxRecords <= 0 {
		c.Export.MaxRecords = 100000
	}
	if c.Export.FetchConcurrency <= 0 {
		c.Export.FetchConcurrency = 4
	}
	if c.Export.RequestsPerMinute <= 0 {
		c.Export.RequestsPerMinute = 6
	}
	if c.Export.Burst <= 0 {
		c.Export.Burst = 2
	}
	if c.Export.FileName == "" {
		c.Export.FileName = "WaterRights.zip"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "local"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for the %s driver", DriverPostgres)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverMemory, c.Database.Driver)
	}
	if !strings.HasSuffix(strings.ToLower(c.Export.FileName), ".zip") {
		return fmt.Errorf("export.file_name must end in .zip, got %q", c.Export.FileName)
	}
	switch c.Logging.Env {
	case "prod", "dev", "local", "docker":
	default:
		return fmt.Errorf("logging.env must be one of prod, dev, local, docker, got %q", c.Logging.Env)
	}
	return nil
}

// ReadTimeout and friends convert the second-based settings.
func (h HTTPConfig) ReadTimeout() time.Duration { return time.Duration(h.ReadTimeoutSec) * time.Second }
func (h HTTPConfig) WriteTimeout() time.Duration {
	return time.Duration(h.WriteTimeoutSec) * time.Second
}
func (h HTTPConfig) ShutdownTimeout() time.Duration {
	return time.Duration(h.ShutdownSec) * time.Second
}

// ConnMaxLifetime converts conn_max_lifetime_min.
func (d DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(d.ConnMaxLifetimeMin) * time.Minute
}

// SlowThreshold converts slow_query_ms.
func (d DatabaseConfig) SlowThreshold() time.Duration {
	return time.Duration(d.SlowQueryMS) * time.Millisecond
}

var envVarRe = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default}. Unset variables without
// a default become empty strings.
func expandEnvVars(data []byte) []byte {
	return envVarRe.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		name, def, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(name)
		if val == "" && hasDefault {
			val = def
		}
		return []byte(val)
	})
}
