package raster

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTime() time.Time {
	return time.Date(2018, time.July, 4, 0, 0, 0, 0, time.UTC)
}

func TestImage_AddBandRejectsShapeMismatch(t *testing.T) {
	t.Parallel()

	im := NewImage(testTime(), 2, 2)

	err := im.AddBand(BandR, NewGrid(3, 2))
	assert.Error(t, err)
}

func TestImage_Select_RenamesBands(t *testing.T) {
	t.Parallel()

	im := NewImage(testTime(), 1, 1)
	require.NoError(t, im.AddBand("sur_refl_b01", NewGridFrom(1, 1, []float64{1000})))
	require.NoError(t, im.AddBand("sur_refl_b02", NewGridFrom(1, 1, []float64{3000})))
	require.NoError(t, im.AddBand("StateQA", NewGridFrom(1, 1, []float64{0})))

	out, err := im.Select(map[string]string{
		"sur_refl_b01": BandR,
		"sur_refl_b02": BandNIR1,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{BandNIR1, BandR}, out.BandNames())
	assert.InDelta(t, 1000.0, out.Band(BandR).At(0, 0), 1e-12)
	assert.Nil(t, out.Band("StateQA"), "unselected bands are dropped")
}

func TestImage_Select_MissingSourceBand(t *testing.T) {
	t.Parallel()

	im := NewImage(testTime(), 1, 1)

	_, err := im.Select(map[string]string{"sur_refl_b01": BandR})
	assert.Error(t, err)
}

func TestImage_Select_CopiesPixels(t *testing.T) {
	t.Parallel()

	im := NewImage(testTime(), 1, 1)
	require.NoError(t, im.AddBand("sur_refl_b01", NewGridFrom(1, 1, []float64{1000})))

	out, err := im.Select(map[string]string{"sur_refl_b01": BandR})
	require.NoError(t, err)

	out.Band(BandR).Set(0, 0, -1)
	assert.InDelta(t, 1000.0, im.Band("sur_refl_b01").At(0, 0), 1e-12, "selection must not alias the source")
}

func TestImage_KeepWhere(t *testing.T) {
	t.Parallel()

	im := NewImage(testTime(), 3, 1)
	require.NoError(t, im.AddBand(BandNDVI, NewGridFrom(3, 1, []float64{0.5, 0.1, math.NaN()})))
	require.NoError(t, im.AddBand(BandR, NewGridFrom(3, 1, []float64{1, 2, 3})))

	err := im.KeepWhere(BandNDVI, func(v float64) bool { return v > 0.2 })
	require.NoError(t, err)

	// 0.5 > 0.2 survives, 0.1 fails, missing reference fails too.
	assert.InDelta(t, 1.0, im.Band(BandR).At(0, 0), 1e-12)
	assert.True(t, math.IsNaN(im.Band(BandR).At(1, 0)))
	assert.True(t, math.IsNaN(im.Band(BandR).At(2, 0)))
	assert.True(t, math.IsNaN(im.Band(BandNDVI).At(1, 0)), "reference band is masked as well")
}

func TestImage_KeepWhere_MissingBand(t *testing.T) {
	t.Parallel()

	im := NewImage(testTime(), 1, 1)

	err := im.KeepWhere(BandNDVI, func(v float64) bool { return true })
	assert.Error(t, err)
}
