package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bikepulse/internal/charts"
	"bikepulse/internal/dataset"
	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/services"
	"bikepulse/internal/shared/testutil"
	"bikepulse/pkg/contracts/domain"
)

// MockDashboardService is a mock implementation of DashboardServiceInterface
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Info(ctx context.Context) (domain.DatasetInfo, error) {
	args := m.Called()
	return args.Get(0).(domain.DatasetInfo), args.Error(1)
}

func (m *MockDashboardService) ParseRange(start, end string) (domain.DateRange, error) {
	args := m.Called(start, end)
	return args.Get(0).(domain.DateRange), args.Error(1)
}

func (m *MockDashboardService) Compute(ctx context.Context, rng domain.DateRange, source string) (domain.Dashboard, error) {
	args := m.Called(rng, source)
	return args.Get(0).(domain.Dashboard), args.Error(1)
}

func (m *MockDashboardService) RenderChart(ctx context.Context, name string, rng domain.DateRange, opts charts.Options, w io.Writer) error {
	args := m.Called(name, rng, opts)
	if err := args.Error(0); err != nil {
		return err
	}
	io.WriteString(w, "<svg></svg>")
	return nil
}

func (m *MockDashboardService) ExportCSV(ctx context.Context, table string, rng domain.DateRange, w io.Writer) error {
	args := m.Called(table, rng)
	if err := args.Error(0); err != nil {
		return err
	}
	io.WriteString(w, "month,total\n")
	return nil
}

func (m *MockDashboardService) ExportWorkbook(ctx context.Context, rng domain.DateRange, w io.Writer) error {
	args := m.Called(rng)
	return args.Error(0)
}

var (
	fullRange = domain.DateRange{Start: testutil.Day(2011, 1, 1), End: testutil.Day(2012, 12, 31)}
	janRange  = domain.DateRange{Start: testutil.Day(2011, 1, 1), End: testutil.Day(2011, 1, 31)}
)

func newMockRouter(t *testing.T, svc DashboardServiceInterface) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	h := NewDashboardHandler(svc, logger, apierrors.NewErrorHandler(logger, false))
	r := chi.NewRouter()
	r.Mount("/api", h.Routes())
	return r
}

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func problemType(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	typ, _ := body["type"].(string)
	return typ
}

func TestDashboardHandler_GetDashboard(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		setup      func(m *MockDashboardService)
		wantStatus int
		wantType   string
	}{
		{
			name:   "defaults",
			target: "/api/dashboard",
			setup: func(m *MockDashboardService) {
				m.On("ParseRange", "", "").Return(fullRange, nil)
				m.On("Compute", fullRange, services.SourceHTTP).
					Return(domain.Dashboard{Range: fullRange, Summary: domain.Summary{Days: 731}}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "explicit range",
			target: "/api/dashboard?start=2011-01-01&end=2011-01-31",
			setup: func(m *MockDashboardService) {
				m.On("ParseRange", "2011-01-01", "2011-01-31").Return(janRange, nil)
				m.On("Compute", janRange, services.SourceHTTP).
					Return(domain.Dashboard{Range: janRange, Summary: domain.Summary{Days: 31}}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "invalid date",
			target: "/api/dashboard?start=yesterday",
			setup: func(m *MockDashboardService) {
				m.On("ParseRange", "yesterday", "").
					Return(domain.DateRange{}, apierrors.InvalidDate("start", "yesterday"))
			},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeInvalidRange,
		},
		{
			name:   "dataset unavailable",
			target: "/api/dashboard",
			setup: func(m *MockDashboardService) {
				m.On("ParseRange", "", "").Return(fullRange, nil)
				m.On("Compute", fullRange, services.SourceHTTP).
					Return(domain.Dashboard{}, apierrors.NewStorageError("dataset unavailable", services.ErrNoDataset))
			},
			wantStatus: http.StatusServiceUnavailable,
			wantType:   apierrors.TypeDataNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			tt.setup(svc)

			rec := serve(newMockRouter(t, svc), tt.target)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, problemType(t, rec))
			} else {
				var dash domain.Dashboard
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
				assert.NotZero(t, dash.Summary.Days)
				assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestDashboardHandler_GetDataset(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Info").Return(domain.DatasetInfo{Source: "day.csv", Records: 731}, nil)

	rec := serve(newMockRouter(t, svc), "/api/dataset")
	require.Equal(t, http.StatusOK, rec.Code)

	var info domain.DatasetInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, 731, info.Records)
}

func TestDashboardHandler_GetChart(t *testing.T) {
	t.Run("svg response", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("ParseRange", "", "").Return(fullRange, nil)
		svc.On("RenderChart", "user-types", fullRange, charts.Options{Width: 800}).Return(nil)

		rec := serve(newMockRouter(t, svc), "/api/charts/user-types.svg?width=800")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, charts.ContentType, rec.Header().Get("Content-Type"))
		assert.Equal(t, "<svg></svg>", rec.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("bad width", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("ParseRange", "", "").Return(fullRange, nil)

		rec := serve(newMockRouter(t, svc), "/api/charts/monthly.svg?width=huge")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apierrors.TypeValidation, problemType(t, rec))
		svc.AssertNotCalled(t, "RenderChart", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown chart", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("ParseRange", "", "").Return(fullRange, nil)
		svc.On("RenderChart", "weather", fullRange, charts.Options{}).
			Return(apierrors.NewNotFoundError("chart weather"))

		rec := serve(newMockRouter(t, svc), "/api/charts/weather.svg")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, apierrors.TypeNotFound, problemType(t, rec))
	})

	t.Run("render failure", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("ParseRange", "", "").Return(fullRange, nil)
		svc.On("RenderChart", "monthly", fullRange, charts.Options{}).
			Return(apierrors.NewRenderError("failed", errors.New("font missing")))

		rec := serve(newMockRouter(t, svc), "/api/charts/monthly.svg")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, apierrors.TypeRenderFailed, problemType(t, rec))
	})
}

func TestDashboardHandler_ExportCSV(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("ParseRange", "2011-01-01", "2011-01-31").Return(janRange, nil)
	svc.On("ExportCSV", "monthly", janRange).Return(nil)

	rec := serve(newMockRouter(t, svc), "/api/export/monthly.csv?start=2011-01-01&end=2011-01-31")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="bike_sharing_monthly_2011-01-01_2011-01-31.csv"`,
		rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "month,total\n", rec.Body.String())
}

// The remaining tests run the handlers against the real service and dataset.

func newRealRouter(t *testing.T) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	svc := services.NewDashboardService(dataset.New("day.csv", testutil.SampleRecords()), nil, logger)
	return newMockRouter(t, svc)
}

func TestDashboardHandler_Integration(t *testing.T) {
	router := newRealRouter(t)

	t.Run("full range totals", func(t *testing.T) {
		rec := serve(router, "/api/dashboard")
		require.Equal(t, http.StatusOK, rec.Code)

		var dash domain.Dashboard
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
		assert.Equal(t, int64(20561), dash.Summary.TotalRentals)
		assert.Equal(t, "2011-01-01", dash.Range.StartString())
		assert.Equal(t, "2012-01-02", dash.Range.EndString())
	})

	t.Run("inverted range is empty, not an error", func(t *testing.T) {
		rec := serve(router, "/api/dashboard?start=2011-12-31&end=2011-01-01")
		require.Equal(t, http.StatusOK, rec.Code)

		var dash domain.Dashboard
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
		assert.Zero(t, dash.Summary.Days)
		assert.Empty(t, dash.Monthly)
	})

	t.Run("every chart renders", func(t *testing.T) {
		for _, name := range charts.Names {
			rec := serve(router, "/api/charts/"+name+".svg?start=2011-01-01&end=2011-01-31")
			require.Equal(t, http.StatusOK, rec.Code, name)
			assert.True(t, strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "<svg"), name)
		}
	})

	t.Run("unknown table", func(t *testing.T) {
		rec := serve(router, "/api/export/weather.csv")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("workbook", func(t *testing.T) {
		rec := serve(router, "/api/export/dashboard.xlsx")
		require.Equal(t, http.StatusOK, rec.Code)

		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()
		assert.Contains(t, f.GetSheetList(), "Monthly")
	})
}
