package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no file or env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, DefaultDatasetPath, cfg.Dataset.Path)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "console", cfg.Logging.Output)
				assert.True(t, cfg.Security.RateLimit.Enabled)
				assert.Equal(t, 100.0, cfg.Security.RateLimit.RPS)
				assert.True(t, cfg.Telemetry.MetricsEnabled)
				assert.False(t, cfg.Telemetry.TracingEnabled)
			},
		},
		{
			name: "file overrides defaults",
			file: `
server:
  port: 9090
dataset:
  path: /srv/bikes/day.csv
logging:
  level: debug
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "/srv/bikes/day.csv", cfg.Dataset.Path)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout, "unset keys keep defaults")
			},
		},
		{
			name: "env overrides file",
			file: "server:\n  port: 9090\n",
			env: map[string]string{
				"BIKEPULSE_SERVER_PORT":              "7070",
				"BIKEPULSE_SECURITY_RATE_LIMIT_RPS":  "5",
				"BIKEPULSE_TELEMETRY_TRACE_EXPORTER": "none",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, 5.0, cfg.Security.RateLimit.RPS)
				assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
				assert.Equal(t, DefaultDatasetPath, cfg.Dataset.Path)
			},
		},
		{
			name: "env durations and lists",
			env: map[string]string{
				"BIKEPULSE_SERVER_READ_TIMEOUT":      "3s",
				"BIKEPULSE_SECURITY_ALLOWED_ORIGINS": "http://a.example,http://b.example",
				"BIKEPULSE_DATASET_PATH":             "fixtures/day.xlsx",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, "fixtures/day.xlsx", cfg.Dataset.Path)
			},
		},
		{
			name:    "invalid port from env",
			env:     map[string]string{"BIKEPULSE_SERVER_PORT": "70000"},
			wantErr: "invalid server port",
		},
		{
			name:    "invalid log output from file",
			file:    "logging:\n  output: syslog\n",
			wantErr: "invalid log output",
		},
		{
			name:    "malformed yaml",
			file:    "server: [port",
			wantErr: "failed to load config from file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"default is valid", func(*Config) {}, ""},
		{"zero read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }, "read timeout"},
		{"cors without origins", func(c *Config) { c.Security.AllowedOrigins = nil }, "allowed origin"},
		{"cors disabled without origins", func(c *Config) {
			c.Security.EnableCORS = false
			c.Security.AllowedOrigins = nil
		}, ""},
		{"zero burst", func(c *Config) { c.Security.RateLimit.Burst = 0 }, "rate limit"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "invalid log level"},
		{"file output without path", func(c *Config) {
			c.Logging.Output = "file"
			c.Logging.FilePath = ""
		}, "file path"},
		{"empty dataset", func(c *Config) { c.Dataset.Path = "" }, "dataset path"},
		{"bad exporter", func(c *Config) { c.Telemetry.TraceExporter = "jaeger" }, "trace exporter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestResolvePaths(t *testing.T) {
	cfg := Default()
	base := t.TempDir()

	paths, err := cfg.ResolvePaths(base)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "data", "day.csv"), paths.DatasetFile)
	assert.Equal(t, filepath.Join(base, "logs"), paths.LogsDir)

	cfg.Dataset.Path = "/abs/day.csv"
	paths, err = cfg.ResolvePaths(base)
	require.NoError(t, err)
	assert.Equal(t, "/abs/day.csv", paths.DatasetFile)

	require.NoError(t, paths.EnsureDirectories(true))
	info, err := os.Stat(paths.LogsDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestAddress(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8080", cfg.Address())
	cfg.Server.Host = "127.0.0.1"
	assert.Equal(t, "127.0.0.1:8080", cfg.Address())
}
