package chart

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chloriseye/pipeline"
)

func pt(date string, v *float64) pipeline.Point {
	ts, _ := time.Parse("2006-01", date)

	return pipeline.Point{Time: ts, Date: date, Value: v}
}

func f(v float64) *float64 { return &v }

func TestAnomalyLine_RendersSeriesAndGaps(t *testing.T) {
	t.Parallel()

	points := []pipeline.Point{
		pt("2005-06", f(0.4)),
		pt("2005-07", nil),
		pt("2005-08", f(-2.7)),
	}

	line := AnomalyLine("NDVI anomaly", points)

	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, line))

	html := buf.String()
	assert.Contains(t, html, "NDVI anomaly")
	assert.Contains(t, html, "2005-07")
	assert.Contains(t, html, `"-"`, "gap months render as placeholders")
	assert.Contains(t, html, "Flagged")
	assert.Contains(t, html, "-2.7", "the crossing month appears in the flagged series")
}

func TestFitLine_RendersAllThreeSeries(t *testing.T) {
	t.Parallel()

	dep := []pipeline.Point{pt("2005-06", f(0.5)), pt("2005-07", f(0.6))}
	fit := []pipeline.Point{pt("2005-06", f(0.52)), pt("2005-07", f(0.58))}
	diff := []pipeline.Point{pt("2005-06", f(0.02)), pt("2005-07", f(-0.02))}

	line := FitLine("NDVI harmonic fit", dep, fit, diff)

	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, line))

	html := buf.String()
	assert.Contains(t, html, "Observed")
	assert.Contains(t, html, "Fitted")
	assert.Contains(t, html, "Difference")
}
