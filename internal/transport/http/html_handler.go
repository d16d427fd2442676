package http

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"bikepulse/internal/charts"
	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/services"
	"bikepulse/pkg/contracts"
	"bikepulse/pkg/contracts/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var dashboardTemplate = template.Must(template.New("dashboard.html").
	Funcs(template.FuncMap{"thousands": thousands}).
	ParseFS(templateFS, "templates/dashboard.html"))

// chartSection is one titled inline chart on the page
type chartSection struct {
	Name  string
	Title string
	SVG   template.HTML
}

type dashboardPage struct {
	Title     string
	Dashboard domain.Dashboard
	Charts    []chartSection
	Version   string
	WSPath    string
}

var chartTitles = map[string]string{
	charts.ChartMonthly:   "Bike Sharing per Month",
	charts.ChartSeasons:   "Bike Sharing per Season",
	charts.ChartUserTypes: "Bike Sharing per User Type",
	charts.ChartDayTypes:  "Working Day vs Holiday",
}

// PageHandler renders the HTML dashboard
type PageHandler struct {
	service      DashboardServiceInterface
	wsPath       string
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPageHandler creates the dashboard page handler. wsPath is the
// WebSocket endpoint the page connects to for live updates.
func NewPageHandler(service DashboardServiceInterface, wsPath string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PageHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}
	return &PageHandler{
		service:      service,
		wsPath:       wsPath,
		logger:       logger.With(slog.String("component", "page_handler")),
		errorHandler: errorHandler,
	}
}

// ServeDashboard handles GET / with optional start and end query parameters
func (h *PageHandler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rng, err := h.service.ParseRange(q.Get("start"), q.Get("end"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	dash, err := h.service.Compute(r.Context(), rng, services.SourceHTTP)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	page := dashboardPage{
		Title:     "Bike Sharing Dashboard",
		Dashboard: dash,
		Version:   contracts.Version,
		WSPath:    h.wsPath,
	}
	for _, name := range charts.Names {
		var svg bytes.Buffer
		if err := charts.Render(name, dash, charts.DefaultOptions, &svg); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.NewRenderError("failed to render "+name+" chart", err))
			return
		}
		page.Charts = append(page.Charts, chartSection{
			Name:  name,
			Title: chartTitles[name],
			// go-chart output contains only generated markup and escaped labels
			SVG: template.HTML(svg.String()),
		})
	}

	var body bytes.Buffer
	if err := dashboardTemplate.Execute(&body, page); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewRenderError("failed to render dashboard page", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body.Bytes())
}

// thousands formats n with comma group separators
func thousands(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	digits := []byte{}
	for i := 0; ; i++ {
		if i > 0 && i%3 == 0 {
			digits = append(digits, ',')
		}
		digits = append(digits, byte('0'+n%10))
		n /= 10
		if n == 0 {
			break
		}
	}
	if neg {
		digits = append(digits, '-')
	}
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}
