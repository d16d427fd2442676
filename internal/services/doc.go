// Package services is the layer between the HTTP and WebSocket handlers and
// the dataset.
//
// DashboardService owns the loaded dataset and answers every dashboard
// request by re-running the filter and the aggregators. It also renders
// charts and exports on top of the computed dashboard, recording the domain
// metrics as it goes. HealthService reports liveness, readiness (the
// dataset is loaded) and build information.
//
// Errors returned to handlers are *errors.APIError for bad input and
// *errors.AppError otherwise, so the shared ErrorHandler can map them to
// problem responses.
package services
