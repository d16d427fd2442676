package charts

import "github.com/wcharczuk/go-chart/v2/drawing"

var (
	// Primary is the color of the leading bar and the monthly line.
	Primary = drawing.ColorFromHex("72BCD4")
	// Muted is used for the remaining bars of a ranked chart.
	Muted = drawing.ColorFromHex("D3D3D3")
	// Accent fills the point markers of the monthly line.
	Accent = drawing.ColorFromHex("1F77B4")

	placeholderBorder = drawing.ColorFromHex("E0E0E0")
	placeholderText   = drawing.ColorFromHex("9E9E9E")
)
