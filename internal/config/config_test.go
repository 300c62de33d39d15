package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bareEnvVars = []string{
	"PORT", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT",
	"SERVER_SHUTDOWN_TIMEOUT", "MAX_BODY_BYTES",
	"STORE_BACKEND", "STORE_DIR", "STORE_S3_BUCKET", "STORE_S3_PREFIX", "STORE_S3_REGION", "STORE_S3_ENDPOINT",
	"LCP_URL", "LCP_ADMIN_USER", "LCP_ADMIN_PASS", "STATIC_USER_KEY_HEX", "STATIC_USER_KEY_HINT", "ISSUER_TIMEOUT",
	"PROVIDER_ADMIN_TOKEN",
	"RATE_LIMIT_ENABLED", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"LOG_LEVEL", "LOG_OUTPUT", "LOG_FILE_PATH",
	"OTEL_ENVIRONMENT", "OTEL_TRACING_ENABLED", "OTEL_TRACE_EXPORTER", "OTEL_SAMPLE_RATIO", "METRICS_ENABLED",
	"NATS_URL", "NATS_SUBJECT",
}

// clearEnv unsets every variable Load reads and restores them afterwards
func clearEnv(t *testing.T) {
	t.Helper()

	names := append([]string{}, bareEnvVars...)
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, EnvPrefix+"_") {
			names = append(names, strings.SplitN(kv, "=", 2)[0])
		}
	}

	for _, name := range names {
		if val, ok := os.LookupEnv(name); ok {
			t.Cleanup(func() { os.Setenv(name, val) })
			os.Unsetenv(name)
		}
	}
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        func(t *testing.T) string
		wantErr     string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no env vars",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, int64(2<<20), cfg.Server.MaxBodyBytes)
				assert.Zero(t, cfg.Server.WriteTimeout, "issuer responses must not be cut off")
				assert.Equal(t, StoreBackendFile, cfg.Store.Backend)
				assert.Equal(t, "./licenses", cfg.Store.Dir)
				assert.Equal(t, "https://lcpserver.onrender.com", cfg.Issuer.URL)
				assert.Equal(t, "admin", cfg.Issuer.Username)
				assert.Equal(t, DefaultUserKeyHex, cfg.Issuer.UserKeyHex)
				assert.Equal(t, "Your site password", cfg.Issuer.UserKeyHint)
				assert.Zero(t, cfg.Issuer.Timeout)
				assert.Empty(t, cfg.Admin.Token)
				assert.False(t, cfg.AdminEnabled())
				assert.False(t, cfg.RateLimit.Enabled)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "console", cfg.Logging.Output)
				assert.True(t, cfg.Telemetry.EnableMetrics)
				assert.Equal(t, "licenses.ingested", cfg.Events.Subject)
			},
		},
		{
			name: "bare environment names",
			env: map[string]string{
				"PORT":                 "9090",
				"STORE_DIR":            "/var/lib/licenses",
				"LCP_URL":              "http://lcp.internal:8989",
				"LCP_ADMIN_USER":       "minter",
				"LCP_ADMIN_PASS":       "s3cret",
				"STATIC_USER_KEY_HEX":  "ABCDEF",
				"PROVIDER_ADMIN_TOKEN": "tok-123",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "/var/lib/licenses", cfg.Store.Dir)
				assert.Equal(t, "http://lcp.internal:8989", cfg.Issuer.URL)
				assert.Equal(t, "minter", cfg.Issuer.Username)
				assert.Equal(t, "s3cret", cfg.Issuer.Password)
				assert.Equal(t, "ABCDEF", cfg.Issuer.UserKeyHex)
				assert.Equal(t, "tok-123", cfg.Admin.Token)
				assert.True(t, cfg.AdminEnabled())
			},
		},
		{
			name: "prefixed names win over bare names",
			env: map[string]string{
				"PORT":                    "9090",
				"LICENSE_API_SERVER_PORT": "9191",
				"ISSUER_TIMEOUT":          "5s",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9191, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Issuer.Timeout)
			},
		},
		{
			name: "yaml file with environment override",
			env: map[string]string{
				"LOG_LEVEL": "warn",
			},
			file: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "config.yaml")
				content := `
server:
  port: 6060
  read_timeout: 20s
store:
  dir: /srv/licenses
logging:
  level: error
`
				require.NoError(t, os.WriteFile(path, []byte(content), 0644))
				return path
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 6060, cfg.Server.Port)
				assert.Equal(t, 20*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "/srv/licenses", cfg.Store.Dir)
				assert.Equal(t, "warn", cfg.Logging.Level)
				// untouched keys keep defaults
				assert.Equal(t, DefaultIssuerURL, cfg.Issuer.URL)
			},
		},
		{
			name: "toml file",
			file: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "config.toml")
				content := `
[store]
backend = "s3"
s3_bucket = "licenses-prod"
s3_region = "eu-west-1"

[admin]
token = "from-file"
`
				require.NoError(t, os.WriteFile(path, []byte(content), 0644))
				return path
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, StoreBackendS3, cfg.Store.Backend)
				assert.Equal(t, "licenses-prod", cfg.Store.S3Bucket)
				assert.Equal(t, "eu-west-1", cfg.Store.S3Region)
				assert.Equal(t, "licenses/", cfg.Store.S3Prefix)
				assert.Equal(t, "from-file", cfg.Admin.Token)
			},
		},
		{
			name: "unsupported file extension",
			file: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "config.ini")
				require.NoError(t, os.WriteFile(path, []byte("port=1"), 0644))
				return path
			},
			wantErr: "unsupported config file extension",
		},
		{
			name:    "invalid port number",
			env:     map[string]string{"PORT": "99999"},
			wantErr: "invalid server port",
		},
		{
			name:    "unparseable port",
			env:     map[string]string{"PORT": "eighty"},
			wantErr: "failed to load config from env",
		},
		{
			name:    "unknown store backend",
			env:     map[string]string{"STORE_BACKEND": "redis"},
			wantErr: "unsupported store backend",
		},
		{
			name:    "s3 backend without bucket",
			env:     map[string]string{"STORE_BACKEND": "s3"},
			wantErr: "s3 bucket is required",
		},
		{
			name:    "issuer url without scheme",
			env:     map[string]string{"LCP_URL": "lcp.example.com"},
			wantErr: "invalid issuer url",
		},
		{
			name:    "non-hex user key",
			env:     map[string]string{"STATIC_USER_KEY_HEX": "not-hex"},
			wantErr: "hex string",
		},
		{
			name:    "negative issuer timeout",
			env:     map[string]string{"ISSUER_TIMEOUT": "-1s"},
			wantErr: "must not be negative",
		},
		{
			name:    "rate limit enabled without rps",
			env:     map[string]string{"RATE_LIMIT_ENABLED": "true", "RATE_LIMIT_RPS": "0"},
			wantErr: "rate limit",
		},
		{
			name:    "invalid log level",
			env:     map[string]string{"LOG_LEVEL": "verbose"},
			wantErr: "invalid log level",
		},
		{
			name:    "unsupported trace exporter",
			env:     map[string]string{"OTEL_TRACE_EXPORTER": "jaeger"},
			wantErr: "unsupported trace exporter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			var file string
			if tt.file != nil {
				file = tt.file(t)
			}

			cfg, err := LoadFile(file)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 7171\n"), 0644))
	t.Setenv(EnvPrefix+"_CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7171, cfg.Server.Port)
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.validate())
}

func TestGetPaths(t *testing.T) {
	t.Run("relative store dir resolves against working dir", func(t *testing.T) {
		cfg := Default()
		paths, err := GetPaths(cfg)
		require.NoError(t, err)

		wd, _ := os.Getwd()
		assert.Equal(t, filepath.Join(wd, "licenses"), paths.StoreDir)
		assert.Empty(t, paths.LogFile, "console logging needs no log file")
	})

	t.Run("absolute paths are kept", func(t *testing.T) {
		dir := t.TempDir()
		cfg := Default()
		cfg.Store.Dir = filepath.Join(dir, "store")
		cfg.Logging.Output = "both"
		cfg.Logging.FilePath = filepath.Join(dir, "logs", "api.log")

		paths, err := GetPaths(cfg)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "store"), paths.StoreDir)
		assert.Equal(t, filepath.Join(dir, "logs"), paths.LogsDir)

		require.NoError(t, paths.EnsureDirectories())
		assert.DirExists(t, paths.StoreDir)
		assert.DirExists(t, paths.LogsDir)
	})

	t.Run("s3 backend has no store dir", func(t *testing.T) {
		cfg := Default()
		cfg.Store.Backend = StoreBackendS3
		cfg.Store.S3Bucket = "bucket"

		paths, err := GetPaths(cfg)
		require.NoError(t, err)
		assert.Empty(t, paths.StoreDir)
		require.NoError(t, paths.EnsureDirectories())
	})
}
