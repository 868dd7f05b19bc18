// Package chart renders pipeline series as standalone HTML charts.
package chart

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"chloriseye/pipeline"
)

const (
	chartWidth  = "100%"
	chartHeight = "500px"
	lineWidth   = 2

	// AnomalyThreshold flags months whose |z| crosses it.
	AnomalyThreshold = 2.0
)

func lineData(points []pipeline.Point) []opts.LineData {
	data := make([]opts.LineData, len(points))

	for i, p := range points {
		if p.Value == nil {
			// Placeholder keeps the x axis dense across gap months.
			data[i] = opts.LineData{Value: "-"}

			continue
		}

		data[i] = opts.LineData{Value: *p.Value}
	}

	return data
}

func labels(points []pipeline.Point) []string {
	out := make([]string, len(points))

	for i, p := range points {
		out[i] = p.Date
	}

	return out
}

// AnomalyLine plots a z-score series with threshold-crossing months
// overlaid as red points.
func AnomalyLine(title string, points []pipeline.Point) *charts.Line {
	flagged := make([]opts.LineData, len(points))

	for i, p := range points {
		if p.Value != nil && (*p.Value > AnomalyThreshold || *p.Value < -AnomalyThreshold) {
			flagged[i] = opts.LineData{Value: *p.Value, Symbol: "circle"}

			continue
		}

		flagged[i] = opts.LineData{Value: "-"}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "Monthly standardized anomaly"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Month"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Z-score"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)
	line.SetXAxis(labels(points))
	line.AddSeries("Anomaly", lineData(points),
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		charts.WithLineStyleOpts(opts.LineStyle{Width: lineWidth}),
	)
	line.AddSeries("Flagged", flagged,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#c23531"}),
		charts.WithLineStyleOpts(opts.LineStyle{Width: 0, Opacity: opts.Float(0)}),
	)

	return line
}

// FitLine plots the dependent, fitted and difference series of a harmonic
// fit on one chart.
func FitLine(title string, dependent, fitted, difference []pipeline.Point) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "Harmonic model against observations"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Month"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Index value"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)
	line.SetXAxis(labels(dependent))
	line.AddSeries("Observed", lineData(dependent),
		charts.WithLineStyleOpts(opts.LineStyle{Width: lineWidth}),
	)
	line.AddSeries("Fitted", lineData(fitted),
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		charts.WithLineStyleOpts(opts.LineStyle{Width: lineWidth}),
	)
	line.AddSeries("Difference", lineData(difference),
		charts.WithLineStyleOpts(opts.LineStyle{Width: 1}),
	)

	return line
}

// RenderPage writes the charts as one standalone HTML page.
func RenderPage(w io.Writer, lines ...components.Charter) error {
	page := components.NewPage()
	page.AddCharts(lines...)

	return page.Render(w)
}
