// Package config loads the BikePulse configuration.
//
// # Configuration Sources
//
// Values are resolved in the following order, later sources winning:
//
//	1. Default() values
//	2. config.yaml (or the file named by BIKEPULSE_CONFIG_FILE)
//	3. Environment variables
//
// # Environment Variables
//
// Every field has a BIKEPULSE_<SECTION>_<FIELD> variable:
//
//	BIKEPULSE_SERVER_PORT=8080
//	BIKEPULSE_DATASET_PATH=data/day.csv
//	BIKEPULSE_LOGGING_LEVEL=debug
//	BIKEPULSE_SECURITY_RATE_LIMIT_RPS=20
//	BIKEPULSE_TELEMETRY_TRACING_ENABLED=true
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	paths, err := cfg.ResolvePaths("")
//
// Tests should start from Default() and adjust fields directly.
package config
