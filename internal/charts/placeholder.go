package charts

import (
	"io"

	"github.com/wcharczuk/go-chart/v2"
)

// PlaceholderText is shown in place of a chart with nothing to plot.
const PlaceholderText = "No data for the selected range"

// Placeholder writes a framed SVG carrying title and PlaceholderText.
func Placeholder(title string, opts Options, w io.Writer) error {
	opts = opts.withDefaults()

	r, err := chart.SVG(opts.Width, opts.Height)
	if err != nil {
		return err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return err
	}
	r.SetFont(font)

	r.SetStrokeColor(placeholderBorder)
	r.SetStrokeWidth(1)
	r.MoveTo(1, 1)
	r.LineTo(opts.Width-1, 1)
	r.LineTo(opts.Width-1, opts.Height-1)
	r.LineTo(1, opts.Height-1)
	r.Close()
	r.Stroke()

	r.SetFontColor(chart.ColorBlack)
	r.SetFontSize(14)
	tb := r.MeasureText(title)
	r.Text(title, (opts.Width-tb.Width())/2, 32)

	r.SetFontColor(placeholderText)
	r.SetFontSize(12)
	tb = r.MeasureText(PlaceholderText)
	r.Text(PlaceholderText, (opts.Width-tb.Width())/2, opts.Height/2)

	return r.Save(w)
}
