package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikepulse/internal/dataset"
	"bikepulse/internal/services"
	"bikepulse/internal/shared/testutil"
)

func newHealthRouter(t *testing.T, ds *dataset.Dataset) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	hs := services.NewHealthService(services.NewDashboardService(ds, nil, logger), logger)
	r := chi.NewRouter()
	NewHealthHandler(hs, logger).Routes(r)
	return r
}

func TestHealthHandler(t *testing.T) {
	router := newHealthRouter(t, dataset.New("day.csv", testutil.SampleRecords()))

	tests := []struct {
		path   string
		status string
	}{
		{"/health", "ok"},
		{"/health/ready", "ready"},
		{"/health/live", "alive"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := serve(router, tt.path)
			require.Equal(t, http.StatusOK, rec.Code)

			var body services.HealthStatus
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.status, body.Status)
		})
	}

	t.Run("/version", func(t *testing.T) {
		rec := serve(router, "/version")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"api_version"`)
	})
}

func TestHealthHandler_NotReady(t *testing.T) {
	rec := serve(newHealthRouter(t, nil), "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
