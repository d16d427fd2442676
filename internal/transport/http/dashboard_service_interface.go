package http

import (
	"context"
	"io"

	"bikepulse/internal/charts"
	"bikepulse/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dashboard operations the handlers need
type DashboardServiceInterface interface {
	Info(ctx context.Context) (domain.DatasetInfo, error)
	ParseRange(start, end string) (domain.DateRange, error)
	Compute(ctx context.Context, rng domain.DateRange, source string) (domain.Dashboard, error)
	RenderChart(ctx context.Context, name string, rng domain.DateRange, opts charts.Options, w io.Writer) error
	ExportCSV(ctx context.Context, table string, rng domain.DateRange, w io.Writer) error
	ExportWorkbook(ctx context.Context, rng domain.DateRange, w io.Writer) error
}
