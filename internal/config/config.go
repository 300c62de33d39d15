package config

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server" envconfig:"SERVER"`
	Store     StoreConfig     `yaml:"store" toml:"store" envconfig:"STORE"`
	Issuer    IssuerConfig    `yaml:"issuer" toml:"issuer" envconfig:"ISSUER"`
	Admin     AdminConfig     `yaml:"admin" toml:"admin" envconfig:"ADMIN"`
	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit" envconfig:"RATE_LIMIT"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" toml:"telemetry" envconfig:"TELEMETRY"`
	Events    EventsConfig    `yaml:"events" toml:"events" envconfig:"EVENTS"`
}

// ServerConfig contains HTTP server configuration. WriteTimeout defaults to
// zero: license responses wait on an issuer call that has no deadline, and a
// write timeout would cut those responses off.
type ServerConfig struct {
	Port            int           `yaml:"port" toml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" toml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" toml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" toml:"idle_timeout" envconfig:"SERVER_IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout" envconfig:"SERVER_SHUTDOWN_TIMEOUT"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" toml:"max_body_bytes" envconfig:"MAX_BODY_BYTES"`
}

// StoreConfig selects and configures the lookaside store backend
type StoreConfig struct {
	Backend    string `yaml:"backend" toml:"backend" envconfig:"STORE_BACKEND"`
	Dir        string `yaml:"dir" toml:"dir" envconfig:"STORE_DIR"`
	S3Bucket   string `yaml:"s3_bucket" toml:"s3_bucket" envconfig:"STORE_S3_BUCKET"`
	S3Prefix   string `yaml:"s3_prefix" toml:"s3_prefix" envconfig:"STORE_S3_PREFIX"`
	S3Region   string `yaml:"s3_region" toml:"s3_region" envconfig:"STORE_S3_REGION"`
	S3Endpoint string `yaml:"s3_endpoint" toml:"s3_endpoint" envconfig:"STORE_S3_ENDPOINT"`
}

// IssuerConfig describes the upstream license server and the key payload
// sent with every fallback request.
//
// UserKeyHex and UserKeyHint form a single shared default used for all
// identifiers; there is no per-license key lookup.
type IssuerConfig struct {
	URL         string        `yaml:"url" toml:"url" envconfig:"LCP_URL"`
	Username    string        `yaml:"username" toml:"username" envconfig:"LCP_ADMIN_USER"`
	Password    string        `yaml:"password" toml:"password" envconfig:"LCP_ADMIN_PASS"`
	UserKeyHex  string        `yaml:"user_key_hex" toml:"user_key_hex" envconfig:"STATIC_USER_KEY_HEX"`
	UserKeyHint string        `yaml:"user_key_hint" toml:"user_key_hint" envconfig:"STATIC_USER_KEY_HINT"`
	Timeout     time.Duration `yaml:"timeout" toml:"timeout" envconfig:"ISSUER_TIMEOUT"`
}

// AdminConfig holds the bearer token for the ingest endpoint. An empty token
// disables the endpoint.
type AdminConfig struct {
	Token string `yaml:"token" toml:"token" envconfig:"PROVIDER_ADMIN_TOKEN"`
}

// RateLimitConfig contains rate limiting configuration for the admin routes
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" toml:"enabled" envconfig:"RATE_LIMIT_ENABLED"`
	RPS     float64 `yaml:"rps" toml:"rps" envconfig:"RATE_LIMIT_RPS"`
	Burst   int     `yaml:"burst" toml:"burst" envconfig:"RATE_LIMIT_BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" toml:"level" envconfig:"LOG_LEVEL"`
	Output   string `yaml:"output" toml:"output" envconfig:"LOG_OUTPUT"`
	FilePath string `yaml:"file_path" toml:"file_path" envconfig:"LOG_FILE_PATH"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	Environment   string  `yaml:"environment" toml:"environment" envconfig:"OTEL_ENVIRONMENT"`
	EnableTracing bool    `yaml:"enable_tracing" toml:"enable_tracing" envconfig:"OTEL_TRACING_ENABLED"`
	TraceExporter string  `yaml:"trace_exporter" toml:"trace_exporter" envconfig:"OTEL_TRACE_EXPORTER"`
	SampleRatio   float64 `yaml:"sample_ratio" toml:"sample_ratio" envconfig:"OTEL_SAMPLE_RATIO"`
	EnableMetrics bool    `yaml:"enable_metrics" toml:"enable_metrics" envconfig:"METRICS_ENABLED"`
}

// EventsConfig configures ingest notifications. An empty NATSURL disables them.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url" toml:"nats_url" envconfig:"NATS_URL"`
	Subject string `yaml:"subject" toml:"subject" envconfig:"NATS_SUBJECT"`
}

// Load builds the configuration from defaults, an optional config file and
// the environment, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit config file path. An empty path skips
// the file layer.
func LoadFile(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Unset variables leave the default/file values untouched because no
	// field carries a default tag.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML or TOML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".toml":
		return toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported config file extension: %s", filePath)
	}
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(EnvPrefix + "_CONFIG_FILE"); explicit != "" {
		return explicit
	}

	locations := []string{
		"config.yaml",
		"config.toml",
		"configs/config.yaml",
		"configs/config.toml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server max body bytes must be positive")
	}

	switch c.Store.Backend {
	case StoreBackendFile:
		if c.Store.Dir == "" {
			return fmt.Errorf("store dir is required for the %q backend", StoreBackendFile)
		}
	case StoreBackendS3:
		if c.Store.S3Bucket == "" {
			return fmt.Errorf("store s3 bucket is required for the %q backend", StoreBackendS3)
		}
	default:
		return fmt.Errorf("unsupported store backend: %q", c.Store.Backend)
	}

	u, err := url.Parse(c.Issuer.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid issuer url: %q", c.Issuer.URL)
	}

	if _, err := hex.DecodeString(c.Issuer.UserKeyHex); err != nil || c.Issuer.UserKeyHex == "" {
		return fmt.Errorf("issuer user key must be a non-empty hex string")
	}

	if c.Issuer.Timeout < 0 {
		return fmt.Errorf("issuer timeout must not be negative")
	}

	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive when enabled")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid log output: %q", c.Logging.Output)
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("log file path is required for output %q", c.Logging.Output)
	}

	switch c.Telemetry.TraceExporter {
	case "stdout", "none":
	default:
		return fmt.Errorf("unsupported trace exporter: %q", c.Telemetry.TraceExporter)
	}

	return nil
}

// AdminEnabled reports whether the ingest endpoint can ever authorize a caller
func (c *Config) AdminEnabled() bool {
	return c.Admin.Token != ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxBodyBytes:    DefaultMaxBodyBytes,
		},
		Store: StoreConfig{
			Backend:  StoreBackendFile,
			Dir:      DefaultStoreDir,
			S3Prefix: "licenses/",
		},
		Issuer: IssuerConfig{
			URL:         DefaultIssuerURL,
			Username:    DefaultIssuerUser,
			Password:    DefaultIssuerPassword,
			UserKeyHex:  DefaultUserKeyHex,
			UserKeyHint: DefaultUserKeyHint,
		},
		RateLimit: RateLimitConfig{
			Enabled: false,
			RPS:     10,
			Burst:   20,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/license-api.log",
		},
		Telemetry: TelemetryConfig{
			Environment:   "development",
			EnableTracing: false,
			TraceExporter: "none",
			SampleRatio:   1.0,
			EnableMetrics: true,
		},
		Events: EventsConfig{
			Subject: DefaultIngestSubject,
		},
	}
}
