// Package http implements the HTTP handlers of the dashboard.
//
// Handlers stay thin: they read query and path parameters, call the
// dashboard service and write the result. Every failure goes through the
// shared errors.ErrorHandler so clients always receive RFC 7807 problem
// details.
//
// Endpoints, mounted by the app package:
//
//	GET /                               HTML dashboard
//	GET /api/dataset                    dataset source, size and date bounds
//	GET /api/dashboard?start=&end=      summary and aggregate tables as JSON
//	GET /api/charts/{chart}.svg         monthly, seasons, user-types, day-types
//	GET /api/export/{table}.csv         monthly, seasons, user-types, day-types, records
//	GET /api/export/dashboard.xlsx      every table on its own sheet
//	GET /api/health, /api/health/ready, /api/health/live, /api/version
//
// Missing start or end parameters default to the dataset bounds. A start
// after end is not an error; it selects no days.
package http
