package config

import "time"

// Application constants
const (
	AppName = "BikePulse"

	EnvPrefix      = "BIKEPULSE"
	ConfigFileName = "config.yaml"

	DefaultDatasetPath = "data/day.csv"
	DefaultLogFile     = "logs/bikepulse.log"

	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	DefaultRequestTimeout = 30 * time.Second
	WebSocketPingPeriod   = 30 * time.Second
	WebSocketPongWait     = 60 * time.Second
	WebSocketReadLimit    = 4096

	// Endpoints
	APIBasePath       = "/api"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/ws"
)
