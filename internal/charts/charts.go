package charts

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"bikepulse/pkg/contracts/domain"
)

// Chart names used in URLs and metrics.
const (
	ChartMonthly   = "monthly"
	ChartSeasons   = "seasons"
	ChartUserTypes = "user-types"
	ChartDayTypes  = "day-types"
)

// Names lists every chart in dashboard order.
var Names = []string{ChartMonthly, ChartSeasons, ChartUserTypes, ChartDayTypes}

// ErrUnknownChart is returned by Render for a name not in Names.
var ErrUnknownChart = errors.New("unknown chart")

// ContentType is the MIME type of every rendered chart.
const ContentType = "image/svg+xml"

// Options control chart dimensions.
type Options struct {
	Width  int
	Height int
}

// DefaultOptions is sized for a two-column dashboard grid.
var DefaultOptions = Options{Width: 640, Height: 360}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultOptions.Width
	}
	if o.Height <= 0 {
		o.Height = DefaultOptions.Height
	}
	return o
}

// Render writes the named chart of dash as SVG.
func Render(name string, dash domain.Dashboard, opts Options, w io.Writer) error {
	switch name {
	case ChartMonthly:
		return Monthly(dash.Monthly, opts, w)
	case ChartSeasons:
		return Seasons(dash.Seasons, opts, w)
	case ChartUserTypes:
		return UserTypes(dash.UserTypes, opts, w)
	case ChartDayTypes:
		return DayTypes(dash.DayTypes, opts, w)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
}

// Monthly draws total rentals per month as a line with point markers.
func Monthly(rows []domain.MonthlyTotal, opts Options, w io.Writer) error {
	opts = opts.withDefaults()
	const title = "Bike Sharing per Month"
	if len(rows) == 0 {
		return Placeholder(title, opts, w)
	}

	x := make([]time.Time, len(rows))
	y := make([]float64, len(rows))
	var peak float64
	for i, row := range rows {
		x[i] = row.Start
		y[i] = float64(row.Total)
		peak = math.Max(peak, y[i])
	}

	xAxis := chart.XAxis{
		Name:           "Year-Month",
		ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01"),
	}
	if len(rows) == 1 {
		// go-chart rejects a zero-width x range.
		pad := 15 * 24 * time.Hour
		xAxis.Range = &chart.ContinuousRange{
			Min: chart.TimeToFloat64(x[0].Add(-pad)),
			Max: chart.TimeToFloat64(x[0].Add(pad)),
		}
	}

	graph := chart.Chart{
		Title:  title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 48, Left: 16, Right: 24, Bottom: 16},
		},
		XAxis: xAxis,
		YAxis: chart.YAxis{
			Name:           "Count",
			ValueFormatter: countFormatter,
			Range:          &chart.ContinuousRange{Min: 0, Max: ceiling(peak)},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name: "Total",
				Style: chart.Style{
					StrokeColor: Primary,
					StrokeWidth: 2,
					DotColor:    Accent,
					DotWidth:    3,
				},
				XValues: x,
				YValues: y,
			},
		},
	}
	return graph.Render(chart.SVG, w)
}

// Seasons draws season totals as bars ranked by descending total; the
// leading season is highlighted.
func Seasons(rows []domain.SeasonTotal, opts Options, w io.Writer) error {
	ranked := make([]domain.SeasonTotal, len(rows))
	copy(ranked, rows)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total > ranked[j].Total
	})

	values := make([]chart.Value, len(ranked))
	for i, row := range ranked {
		values[i] = chart.Value{Label: row.Label, Value: float64(row.Total)}
	}
	return bars("Bike Sharing per Season", values, true, opts, w)
}

// UserTypes draws the casual and registered sums.
func UserTypes(rows []domain.UserTypeTotal, opts Options, w io.Writer) error {
	values := make([]chart.Value, len(rows))
	for i, row := range rows {
		values[i] = chart.Value{Label: row.UserType, Value: float64(row.Sum)}
	}
	return bars("Bike Sharing per User Type", values, false, opts, w)
}

// DayTypes draws rentals on working days against weekends and holidays.
func DayTypes(rows []domain.DayTypeTotal, opts Options, w io.Writer) error {
	values := make([]chart.Value, len(rows))
	for i, row := range rows {
		values[i] = chart.Value{Label: row.DayType, Value: float64(row.Count)}
	}
	return bars("Working Day vs Holiday", values, false, opts, w)
}

func bars(title string, values []chart.Value, highlightFirst bool, opts Options, w io.Writer) error {
	opts = opts.withDefaults()

	var peak float64
	for _, v := range values {
		peak = math.Max(peak, v.Value)
	}
	if len(values) == 0 || peak == 0 {
		return Placeholder(title, opts, w)
	}

	for i := range values {
		color := Primary
		if highlightFirst && i > 0 {
			color = Muted
		}
		values[i].Style = chart.Style{FillColor: color, StrokeColor: color, StrokeWidth: 1}
	}

	barWidth := opts.Width / (2*len(values) + 1)
	graph := chart.BarChart{
		Title:  title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16},
		},
		BarWidth: barWidth,
		YAxis: chart.YAxis{
			ValueFormatter: countFormatter,
			Range:          &chart.ContinuousRange{Min: 0, Max: ceiling(peak)},
		},
		Bars: values,
	}
	return graph.Render(chart.SVG, w)
}

// ceiling returns a round axis maximum a little above peak.
func ceiling(peak float64) float64 {
	if peak <= 0 {
		return 1
	}
	padded := peak * 1.1
	step := math.Pow(10, math.Floor(math.Log10(padded)))
	return math.Ceil(padded/step) * step
}

func countFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return fmt.Sprint(v)
}
