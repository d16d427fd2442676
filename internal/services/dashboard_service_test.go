package services

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bikepulse/internal/charts"
	"bikepulse/internal/dataset"
	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/infrastructure"
	"bikepulse/internal/shared/testutil"
	"bikepulse/pkg/contracts/domain"
)

func newTestService(t *testing.T) *DashboardService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	ds := dataset.New("day.csv", testutil.SampleRecords())
	return NewDashboardService(ds, nil, logger)
}

func TestDashboardService_ParseRange(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name      string
		start     string
		end       string
		want      domain.DateRange
		wantField string
	}{
		{
			name: "defaults to dataset bounds",
			want: domain.DateRange{Start: testutil.Day(2011, 1, 1), End: testutil.Day(2012, 1, 2)},
		},
		{
			name:  "explicit bounds",
			start: "2011-04-01",
			end:   "2011-07-31",
			want:  domain.DateRange{Start: testutil.Day(2011, 4, 1), End: testutil.Day(2011, 7, 31)},
		},
		{
			name:  "only start",
			start: " 2011-10-01 ",
			want:  domain.DateRange{Start: testutil.Day(2011, 10, 1), End: testutil.Day(2012, 1, 2)},
		},
		{
			name:  "inverted range is accepted",
			start: "2011-12-31",
			end:   "2011-01-01",
			want:  domain.DateRange{Start: testutil.Day(2011, 12, 31), End: testutil.Day(2011, 1, 1)},
		},
		{name: "bad start", start: "01/02/2011", wantField: "start"},
		{name: "bad end", end: "2011-13-01", wantField: "end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ParseRange(tt.start, tt.end)
			if tt.wantField != "" {
				require.Error(t, err)
				var apiErr *apierrors.APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
				assert.Contains(t, apiErr.Message, tt.wantField)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDashboardService_Compute(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("full range", func(t *testing.T) {
		rng, err := svc.ParseRange("", "")
		require.NoError(t, err)

		dash, err := svc.Compute(ctx, rng, SourceHTTP)
		require.NoError(t, err)

		assert.Equal(t, 8, dash.Summary.Days)
		assert.Equal(t, int64(20561), dash.Summary.TotalRentals)
		assert.Equal(t, 2570.13, dash.Summary.MeanDailyRentals)
		assert.Len(t, dash.Monthly, 6)
		assert.Len(t, dash.Seasons, 4)
		assert.Equal(t, rng, dash.Bounds)
	})

	t.Run("january 2011", func(t *testing.T) {
		rng, err := svc.ParseRange("2011-01-01", "2011-01-31")
		require.NoError(t, err)

		dash, err := svc.Compute(ctx, rng, SourceWebSocket)
		require.NoError(t, err)

		require.Len(t, dash.Monthly, 1)
		assert.Equal(t, domain.MonthlyTotal{Month: "2011-01", Start: testutil.Day(2011, 1, 1), Total: 3135}, dash.Monthly[0])
		assert.Equal(t, int64(985+801), dash.DayTypes[0].Count)
		assert.Equal(t, int64(1349), dash.DayTypes[1].Count)
	})

	t.Run("inverted range is empty", func(t *testing.T) {
		rng, err := svc.ParseRange("2011-12-31", "2011-01-01")
		require.NoError(t, err)

		dash, err := svc.Compute(ctx, rng, SourceHTTP)
		require.NoError(t, err)
		assert.Zero(t, dash.Summary.Days)
		assert.Zero(t, dash.Summary.MeanDailyRentals)
		assert.Empty(t, dash.Monthly)
		assert.Len(t, dash.UserTypes, 2)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := svc.Compute(cancelled, domain.DateRange{}, SourceHTTP)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestDashboardService_NoDataset(t *testing.T) {
	svc := NewDashboardService(nil, nil, nil)
	assert.False(t, svc.Ready())

	_, err := svc.Compute(context.Background(), domain.DateRange{}, SourceHTTP)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoDataset)

	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apierrors.ErrTypeStorage, appErr.Type)

	_, err = svc.Info(context.Background())
	assert.ErrorIs(t, err, ErrNoDataset)
}

func TestDashboardService_RenderChart(t *testing.T) {
	svc := newTestService(t)
	rng, err := svc.ParseRange("", "")
	require.NoError(t, err)

	for _, name := range charts.Names {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, svc.RenderChart(context.Background(), name, rng, charts.Options{}, &buf))
			assert.True(t, strings.HasPrefix(strings.TrimSpace(buf.String()), "<svg"))
		})
	}

	t.Run("unknown chart", func(t *testing.T) {
		err := svc.RenderChart(context.Background(), "weather", rng, charts.Options{}, &bytes.Buffer{})
		require.Error(t, err)

		var appErr *apierrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apierrors.ErrTypeNotFound, appErr.Type)
		assert.Equal(t, "weather", appErr.Context["chart"])
	})
}

func TestDashboardService_ExportCSV(t *testing.T) {
	svc := newTestService(t)
	rng, err := svc.ParseRange("2011-01-01", "2011-01-02")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), "records", rng, &buf))
	body := strings.TrimPrefix(buf.String(), "\ufeff")
	assert.Equal(t,
		"dteday,season,workingday,casual,registered,cnt\n"+
			"2011-01-01,1,0,331,654,985\n"+
			"2011-01-02,1,0,131,670,801\n",
		body)

	buf.Reset()
	require.NoError(t, svc.ExportCSV(context.Background(), "user-types", rng, &buf))
	assert.Contains(t, buf.String(), "Casual,462")

	err = svc.ExportCSV(context.Background(), "weather", rng, &buf)
	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apierrors.ErrTypeNotFound, appErr.Type)
}

func TestDashboardService_ExportWorkbook(t *testing.T) {
	svc := newTestService(t)
	rng, err := svc.ParseRange("", "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportWorkbook(context.Background(), rng, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, f.GetSheetList(), 6)
}

func TestDashboardService_RecordsMetrics(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	providers, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{
		ServiceName:   infrastructure.ServiceName,
		TraceExporter: "none",
		EnableMetrics: true,
		SampleRatio:   1,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { providers.Shutdown(context.Background()) })

	metrics, err := infrastructure.NewDashboardMetrics(providers.Meter)
	require.NoError(t, err)

	svc := NewDashboardService(dataset.New("day.csv", testutil.SampleRecords()), metrics, logger)
	rng, err := svc.ParseRange("", "")
	require.NoError(t, err)
	require.NoError(t, svc.RenderChart(context.Background(), charts.ChartMonthly, rng, charts.Options{}, &bytes.Buffer{}))
	require.NoError(t, svc.ExportCSV(context.Background(), "monthly", rng, &bytes.Buffer{}))

	rec := httptest.NewRecorder()
	providers.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	assert.Contains(t, body, "dashboard_computations_total")
	assert.Contains(t, body, `chart="monthly"`)
	assert.Contains(t, body, `table="monthly"`)
	assert.Contains(t, body, "dataset_records")
}
