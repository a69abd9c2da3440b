package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the kbsearch API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Index    IndexConfig    `yaml:"index"`
	Auth     AuthConfig     `yaml:"auth"`
	Search   SearchConfig   `yaml:"search"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig holds term index settings.
type IndexConfig struct {
	// SnapshotPath points at the pre-built term index snapshot (JSON lines).
	SnapshotPath string `yaml:"snapshot_path"`
	// DocTypes enumerates the recognized "tag:" question prefixes.
	DocTypes []string `yaml:"doc_types"`
	// TrimCutset is the set of bracketing characters stripped from both
	// ends of a question during normalization.
	TrimCutset string `yaml:"trim_cutset"`
	// KBIndexName is the FT index over knowledge base documents.
	KBIndexName string `yaml:"kb_index_name"`
}

// AuthConfig holds settings for the external credential services.
type AuthConfig struct {
	// Scheme for upstream calls; https in every real deployment,
	// http only for tests against local stand-ins.
	Scheme        string   `yaml:"scheme"`
	TimeoutSec    int      `yaml:"timeout_sec"`
	APIPolicies   []string `yaml:"api_policies"`
	RequiredCreds []string `yaml:"required_creds"`
	// UserPolicy is the caller-tier default policy applied when the
	// request comes from the embedded app surface (location=app).
	UserPolicy PolicyConfig `yaml:"user_policy"`
}

// PolicyConfig describes an access policy in configuration form.
type PolicyConfig struct {
	Categories []string          `yaml:"categories"`
	Attributes map[string]string `yaml:"attributes"`
}

// SearchConfig holds query formation and execution settings.
type SearchConfig struct {
	// TransactionTTLSec bounds how long a saved transaction stays
	// fetchable; mirrors the caller session validity window.
	TransactionTTLSec int `yaml:"transaction_ttl_sec"`
	// TopK is the per-query hit limit against the knowledge backend.
	TopK int `yaml:"top_k"`
	// FailFast switches partial-degrade execution to whole-request failure.
	FailFast bool `yaml:"fail_fast"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if len(c.Index.DocTypes) == 0 {
		c.Index.DocTypes = []string{"policy", "label", "protocol", "faq"}
	}
	if c.Index.TrimCutset == "" {
		c.Index.TrimCutset = "[? ]"
	}
	if c.Index.KBIndexName == "" {
		c.Index.KBIndexName = "kb-docs"
	}
	if c.Auth.Scheme == "" {
		c.Auth.Scheme = "https"
	}
	if c.Auth.TimeoutSec <= 0 {
		c.Auth.TimeoutSec = 10
	}
	if c.Search.TransactionTTLSec <= 0 {
		c.Search.TransactionTTLSec = 30
	}
	if c.Search.TopK <= 0 {
		c.Search.TopK = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "kbsearch:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Index.SnapshotPath == "" {
		return fmt.Errorf("index.snapshot_path is required")
	}
	switch c.Auth.Scheme {
	case "http", "https":
		// ok
	default:
		return fmt.Errorf("auth.scheme must be \"http\" or \"https\", got %q", c.Auth.Scheme)
	}
	for _, dt := range c.Index.DocTypes {
		if dt != strings.ToLower(dt) {
			return fmt.Errorf("index.doc_types entries must be lower-case, got %q", dt)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
