package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Dataset   DatasetConfig   `yaml:"dataset" envconfig:"DATASET"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST" default:""`
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"30s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains per-client rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/bikepulse.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// DatasetConfig locates the daily records file
type DatasetConfig struct {
	Path string `yaml:"path" envconfig:"PATH" default:"data/day.csv"`
}

// TelemetryConfig controls OpenTelemetry tracing and metrics
type TelemetryConfig struct {
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED" default:"true"`
	TracingEnabled bool   `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED" default:"false"`
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"stdout"`
	ServiceVersion string `yaml:"service_version" envconfig:"SERVICE_VERSION" default:"dev"`
	Environment    string `yaml:"environment" envconfig:"ENVIRONMENT" default:"development"`
}

// Load builds the configuration from defaults, an optional config.yaml and
// BIKEPULSE_* environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFrom(findConfigFile())
}

// LoadFrom is Load with an explicit config file. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile decodes YAML over cfg so absent keys keep their defaults
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnv overlays only the environment variables that are actually set.
// envconfig.Process would also apply default tags and clobber file values,
// so the env pass runs into a scratch struct and is merged field by field.
func applyEnv(cfg *Config) error {
	if !hasEnv() {
		return nil
	}

	var env Config
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return err
	}
	mergeConfigs(cfg, &env)
	return nil
}

func hasEnv() bool {
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, EnvPrefix+"_") {
			return true
		}
	}
	return false
}

func isSet(name string) bool {
	_, ok := os.LookupEnv(EnvPrefix + "_" + name)
	return ok
}

// mergeConfigs copies env values into dst for every variable that is set
func mergeConfigs(dst, env *Config) {
	// Server
	if isSet("SERVER_HOST") {
		dst.Server.Host = env.Server.Host
	}
	if isSet("SERVER_PORT") {
		dst.Server.Port = env.Server.Port
	}
	if isSet("SERVER_READ_TIMEOUT") {
		dst.Server.ReadTimeout = env.Server.ReadTimeout
	}
	if isSet("SERVER_WRITE_TIMEOUT") {
		dst.Server.WriteTimeout = env.Server.WriteTimeout
	}
	if isSet("SERVER_IDLE_TIMEOUT") {
		dst.Server.IdleTimeout = env.Server.IdleTimeout
	}
	if isSet("SERVER_MAX_HEADER_BYTES") {
		dst.Server.MaxHeaderBytes = env.Server.MaxHeaderBytes
	}
	if isSet("SERVER_SHUTDOWN_TIMEOUT") {
		dst.Server.ShutdownTimeout = env.Server.ShutdownTimeout
	}
	if isSet("SERVER_REQUEST_TIMEOUT") {
		dst.Server.RequestTimeout = env.Server.RequestTimeout
	}

	// Security
	if isSet("SECURITY_ALLOWED_ORIGINS") {
		dst.Security.AllowedOrigins = env.Security.AllowedOrigins
	}
	if isSet("SECURITY_ENABLE_CORS") {
		dst.Security.EnableCORS = env.Security.EnableCORS
	}
	if isSet("SECURITY_RATE_LIMIT_ENABLED") {
		dst.Security.RateLimit.Enabled = env.Security.RateLimit.Enabled
	}
	if isSet("SECURITY_RATE_LIMIT_RPS") {
		dst.Security.RateLimit.RPS = env.Security.RateLimit.RPS
	}
	if isSet("SECURITY_RATE_LIMIT_BURST") {
		dst.Security.RateLimit.Burst = env.Security.RateLimit.Burst
	}

	// Logging
	if isSet("LOGGING_LEVEL") {
		dst.Logging.Level = env.Logging.Level
	}
	if isSet("LOGGING_OUTPUT") {
		dst.Logging.Output = env.Logging.Output
	}
	if isSet("LOGGING_FILE_PATH") {
		dst.Logging.FilePath = env.Logging.FilePath
	}
	if isSet("LOGGING_DEVELOPMENT") {
		dst.Logging.Development = env.Logging.Development
	}

	// Dataset
	if isSet("DATASET_PATH") {
		dst.Dataset.Path = env.Dataset.Path
	}

	// Telemetry
	if isSet("TELEMETRY_METRICS_ENABLED") {
		dst.Telemetry.MetricsEnabled = env.Telemetry.MetricsEnabled
	}
	if isSet("TELEMETRY_TRACING_ENABLED") {
		dst.Telemetry.TracingEnabled = env.Telemetry.TracingEnabled
	}
	if isSet("TELEMETRY_TRACE_EXPORTER") {
		dst.Telemetry.TraceExporter = env.Telemetry.TraceExporter
	}
	if isSet("TELEMETRY_SERVICE_VERSION") {
		dst.Telemetry.ServiceVersion = env.Telemetry.ServiceVersion
	}
	if isSet("TELEMETRY_ENVIRONMENT") {
		dst.Telemetry.Environment = env.Telemetry.Environment
	}
}

// Validate checks ranges and enumerations
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified when CORS is enabled")
	}
	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid log output: %q", c.Logging.Output)
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging file path is required for output %q", c.Logging.Output)
	}

	if c.Dataset.Path == "" {
		return fmt.Errorf("dataset path must be specified")
	}

	switch c.Telemetry.TraceExporter {
	case "stdout", "none":
	default:
		return fmt.Errorf("invalid trace exporter: %q", c.Telemetry.TraceExporter)
	}

	return nil
}

// Address returns the host:port the HTTP server listens on
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// findConfigFile returns the first config.yaml found in common locations
func findConfigFile() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG_FILE"); p != "" {
		return p
	}

	locations := []string{
		ConfigFileName,
		"configs/" + ConfigFileName,
	}
	for _, location := range locations {
		if FileExists(location) {
			return location
		}
	}
	return ""
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Dataset: DatasetConfig{
			Path: DefaultDatasetPath,
		},
		Telemetry: TelemetryConfig{
			MetricsEnabled: true,
			TracingEnabled: false,
			TraceExporter:  "stdout",
			ServiceVersion: "dev",
			Environment:    "development",
		},
	}
}
