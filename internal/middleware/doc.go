// Package middleware holds the HTTP middleware chain: request IDs, slog
// request logging, panic recovery, rate limiting, timeouts, CORS, security
// headers and OpenTelemetry instrumentation.
package middleware
