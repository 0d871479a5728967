package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Storage     StorageConfig   `toml:"storage"`
	Discovery   DiscoveryConfig `toml:"discovery"`
	Auth        AuthConfig      `toml:"auth"`
	Analysis    AnalysisConfig  `toml:"analysis"`
	Extractor   ExtractorConfig `toml:"extractor"`
	Logging     LoggingConfig   `toml:"logging"`
}

// StorageConfig selects and configures the persistence backend
type StorageConfig struct {
	Driver   string         `toml:"driver" validate:"oneof=sqlite postgres"` // "sqlite" or "postgres"
	SQLite   SQLiteConfig   `toml:"sqlite"`
	Postgres PostgresConfig `toml:"postgres"`
}

// SQLiteConfig represents SQLite-specific configuration
type SQLiteConfig struct {
	Path string `toml:"path"` // Database file path
}

// PostgresConfig represents PostgreSQL-specific configuration
type PostgresConfig struct {
	DSN string `toml:"dsn"` // Connection string (host/port/dbname/user/password)
}

// DiscoveryConfig contains the company/article discovery API configuration
type DiscoveryConfig struct {
	BaseURL        string        `toml:"base_url" validate:"required"`
	Token          string        `toml:"token"` // Static bearer-style header token
	RequestTimeout time.Duration `toml:"request_timeout"`
}

// AuthConfig contains the client-credentials token issuer configuration
type AuthConfig struct {
	TokenURL       string        `toml:"token_url" validate:"required"`
	ClientID       string        `toml:"client_id" validate:"required"`
	ClientSecret   string        `toml:"client_secret" validate:"required"`
	RequestTimeout time.Duration `toml:"request_timeout"`
}

// AnalysisConfig contains the completion-endpoint configuration
type AnalysisConfig struct {
	Endpoint       string        `toml:"endpoint" validate:"required"`
	Model          string        `toml:"model"`
	MaxTokens      int           `toml:"max_tokens"`      // Token-budget cap per completion
	RequestTimeout time.Duration `toml:"request_timeout"` // A hung call fails the item, not the run
}

// ExtractorConfig contains content extraction configuration
type ExtractorConfig struct {
	Mode               string        `toml:"mode" validate:"oneof=static rendered"` // "static" or "rendered"
	UserAgent          string        `toml:"user_agent"`
	RequestTimeout     time.Duration `toml:"request_timeout"`      // Static fetch timeout
	PageTimeout        time.Duration `toml:"page_timeout"`         // Rendered page readiness bound
	JavaScriptWaitTime time.Duration `toml:"javascript_wait_time"` // Time to wait for JavaScript to render
	MaxBodySize        int           `toml:"max_body_size"`        // Maximum response body size in bytes
	Headless           bool          `toml:"headless"`
	NoSandbox          bool          `toml:"no_sandbox"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig creates a configuration with default values.
// Credentials and endpoints must come from the config file or environment.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{
				Path: "./data/nuntius.db",
			},
		},
		Discovery: DiscoveryConfig{
			RequestTimeout: 30 * time.Second,
		},
		Auth: AuthConfig{
			RequestTimeout: 30 * time.Second,
		},
		Analysis: AnalysisConfig{
			Model:          "gpt-4o",
			MaxTokens:      4096,
			RequestTimeout: 60 * time.Second,
		},
		Extractor: ExtractorConfig{
			Mode:               "rendered",
			UserAgent:          "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			RequestTimeout:     30 * time.Second,
			PageTimeout:        60 * time.Second,
			JavaScriptWaitTime: 3 * time.Second,
			MaxBodySize:        10 * 1024 * 1024, // 10MB
			Headless:           true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the resolved configuration for missing or inconsistent values
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.SQLite.Path == "" {
			return fmt.Errorf("invalid configuration: storage.sqlite.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Storage.Postgres.DSN == "" {
			return fmt.Errorf("invalid configuration: storage.postgres.dsn is required for the postgres driver")
		}
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("NUNTIUS_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Storage configuration
	if driver := os.Getenv("NUNTIUS_STORAGE_DRIVER"); driver != "" {
		config.Storage.Driver = driver
	}
	if path := os.Getenv("NUNTIUS_SQLITE_PATH"); path != "" {
		config.Storage.SQLite.Path = path
	}
	if dsn := os.Getenv("NUNTIUS_POSTGRES_DSN"); dsn != "" {
		config.Storage.Postgres.DSN = dsn
	}

	// Discovery configuration
	if baseURL := os.Getenv("NUNTIUS_DISCOVERY_BASE_URL"); baseURL != "" {
		config.Discovery.BaseURL = baseURL
	}
	if token := os.Getenv("NUNTIUS_DISCOVERY_TOKEN"); token != "" {
		config.Discovery.Token = token
	}

	// Token issuer configuration
	if tokenURL := os.Getenv("NUNTIUS_AUTH_TOKEN_URL"); tokenURL != "" {
		config.Auth.TokenURL = tokenURL
	}
	if clientID := os.Getenv("NUNTIUS_AUTH_CLIENT_ID"); clientID != "" {
		config.Auth.ClientID = clientID
	}
	if clientSecret := os.Getenv("NUNTIUS_AUTH_CLIENT_SECRET"); clientSecret != "" {
		config.Auth.ClientSecret = clientSecret
	}

	// Analysis configuration
	if endpoint := os.Getenv("NUNTIUS_ANALYSIS_ENDPOINT"); endpoint != "" {
		config.Analysis.Endpoint = endpoint
	}
	if model := os.Getenv("NUNTIUS_ANALYSIS_MODEL"); model != "" {
		config.Analysis.Model = model
	}
	if maxTokens := os.Getenv("NUNTIUS_ANALYSIS_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.Analysis.MaxTokens = mt
		}
	}
	if timeout := os.Getenv("NUNTIUS_ANALYSIS_REQUEST_TIMEOUT"); timeout != "" {
		if rt, err := time.ParseDuration(timeout); err == nil {
			config.Analysis.RequestTimeout = rt
		}
	}

	// Extractor configuration
	if mode := os.Getenv("NUNTIUS_EXTRACTOR_MODE"); mode != "" {
		config.Extractor.Mode = mode
	}
	if userAgent := os.Getenv("NUNTIUS_EXTRACTOR_USER_AGENT"); userAgent != "" {
		config.Extractor.UserAgent = userAgent
	}
	if pageTimeout := os.Getenv("NUNTIUS_EXTRACTOR_PAGE_TIMEOUT"); pageTimeout != "" {
		if pt, err := time.ParseDuration(pageTimeout); err == nil {
			config.Extractor.PageTimeout = pt
		}
	}
	if headless := os.Getenv("NUNTIUS_EXTRACTOR_HEADLESS"); headless != "" {
		if h, err := strconv.ParseBool(headless); err == nil {
			config.Extractor.Headless = h
		}
	}

	// Logging configuration
	if level := os.Getenv("NUNTIUS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}
