// Package app wires configuration, logging, telemetry, the dataset and the
// HTTP surface into one Application and manages its lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, config.yaml, BIKEPULSE_* variables)
//	2. Resolve paths and initialize the JSON logger
//	3. Initialize OpenTelemetry and the dashboard instruments
//	4. Load the dataset; failure here aborts startup
//	5. Build the services, router and HTTP server
//
// # Usage
//
//	application, err := app.New(ctx, app.Options{DatasetPath: path})
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// # Graceful Shutdown
//
// Run returns after SIGINT, SIGTERM or cancellation of its context. Stop
// closes WebSocket clients with a going-away frame, drains in-flight
// requests within Server.ShutdownTimeout and flushes telemetry.
//
// The package never calls os.Exit; main decides the exit code.
package app
