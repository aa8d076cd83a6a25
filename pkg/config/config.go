package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"l1registry/pkg/registry"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when none is given on the command line.
const DefaultPath = "registry.yaml"

// Environment variables that override the config file.
const (
	EnvAPIBase            = "GLACIER_API_BASE"
	EnvAPIKey             = "GLACIER_API_KEY" // #nosec G101 -- variable name, not a credential
	EnvClickHouseAddr     = "CLICKHOUSE_ADDR"
	EnvClickHousePassword = "CLICKHOUSE_PASSWORD" // #nosec G101 -- variable name, not a credential
)

// ErrMissingAPIKey is fatal for commands that talk to the Glacier API.
var ErrMissingAPIKey = errors.New(EnvAPIKey + " is not set")

type Config struct {
	// Directory holding one sub-directory per chain.
	RegistryPath string `yaml:"registryPath"`

	Glacier    GlacierConfig    `yaml:"glacier"`
	Report     ReportConfig     `yaml:"report"`
	Cache      CacheConfig      `yaml:"cache"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`

	// Placeholder logo URLs replaced by fix-logos. Empty means the built-in list.
	Placeholders []string `yaml:"placeholders"`

	// Extra subnet -> sybil resistance type entries on top of the built-in allow-list.
	SybilResistance map[string]string `yaml:"sybilResistance"`
}

type GlacierConfig struct {
	APIBase        string `yaml:"apiBase"`
	APIKey         string `yaml:"apiKey"`
	Network        string `yaml:"network"`
	RequestDelayMs int    `yaml:"requestDelayMs"`
	TimeoutSec     int    `yaml:"timeoutSec"`
}

type ReportConfig struct {
	Path         string `yaml:"path"`
	ErrorLogPath string `yaml:"errorLogPath"`
}

type CacheConfig struct {
	// Empty disables the persistent cache.
	Dir         string        `yaml:"dir"`
	SnapshotTTL time.Duration `yaml:"snapshotTTL"`
}

type ClickHouseConfig struct {
	Addr     string `yaml:"addr"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		RegistryPath: "./data",
		Glacier: GlacierConfig{
			APIBase:        "https://glacier-api.avax.network/v1",
			Network:        "mainnet",
			RequestDelayMs: 6000,
			TimeoutSec:     30,
		},
		Report: ReportConfig{
			Path:         "enrichment-report.json",
			ErrorLogPath: "enrichment-errors.log",
		},
		ClickHouse: ClickHouseConfig{
			Addr:     "127.0.0.1:9000",
			Database: "default",
			Username: "default",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path and the environment,
// in that order. A missing file is only an error when it was asked for explicitly.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIBase); v != "" {
		c.Glacier.APIBase = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Glacier.APIKey = v
	}
	if v := os.Getenv(EnvClickHouseAddr); v != "" {
		c.ClickHouse.Addr = v
	}
	if v := os.Getenv(EnvClickHousePassword); v != "" {
		c.ClickHouse.Password = v
	}
}

// Validate checks the shape of the configuration. The API key is checked separately by
// RequireAPIKey because only some commands need it.
func (c *Config) Validate() error {
	if c.RegistryPath == "" {
		return errors.New("registryPath is required")
	}
	if c.Glacier.APIBase == "" {
		return errors.New("glacier.apiBase is required")
	}
	if c.Glacier.RequestDelayMs < 0 {
		return fmt.Errorf("glacier.requestDelayMs cannot be negative (got %d)", c.Glacier.RequestDelayMs)
	}
	if c.Glacier.TimeoutSec < 0 {
		return fmt.Errorf("glacier.timeoutSec cannot be negative (got %d)", c.Glacier.TimeoutSec)
	}
	if c.Cache.SnapshotTTL < 0 {
		return fmt.Errorf("cache.snapshotTTL cannot be negative (got %s)", c.Cache.SnapshotTTL)
	}
	for subnet, kind := range c.SybilResistance {
		if subnet == "" {
			return errors.New("sybilResistance: empty subnet ID")
		}
		if kind != registry.ProofOfStake && kind != registry.ProofOfAuthority {
			return fmt.Errorf("sybilResistance[%s]: unknown type %q", subnet, kind)
		}
	}
	return nil
}

func (c *Config) RequireAPIKey() error {
	if c.Glacier.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func (c *Config) RequestDelay() time.Duration {
	return time.Duration(c.Glacier.RequestDelayMs) * time.Millisecond
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Glacier.TimeoutSec) * time.Second
}

// MaskedAPIKey shows only the first four characters of the key.
func (c *Config) MaskedAPIKey() string {
	key := c.Glacier.APIKey
	if len(key) <= 4 {
		return "****"
	}
	return key[:4] + "..."
}
