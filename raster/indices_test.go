package raster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeIndex_NDVI(t *testing.T) {
	t.Parallel()

	im := NewImage(testTime(), 1, 1)
	require.NoError(t, im.AddBand(BandNIR1, NewGridFrom(1, 1, []float64{3000})))
	require.NoError(t, im.AddBand(BandR, NewGridFrom(1, 1, []float64{1000})))

	g, err := im.ComputeIndex(BandNDVI)

	require.NoError(t, err)
	// (3000 - 1000) / (3000 + 1000) = 0.5.
	assert.InDelta(t, 0.5, g.At(0, 0), 1e-12)
	assert.Same(t, g, im.Band(BandNDVI), "index is attached to the image")
}

func TestComputeIndex_UnknownName(t *testing.T) {
	t.Parallel()

	im := NewImage(testTime(), 1, 1)

	_, err := im.ComputeIndex("EVI")
	assert.Error(t, err)
}

func TestComputeIndex_MissingInputBand(t *testing.T) {
	t.Parallel()

	im := NewImage(testTime(), 1, 1)
	require.NoError(t, im.AddBand(BandNIR1, NewGridFrom(1, 1, []float64{3000})))

	_, err := im.ComputeIndex(BandNBR)
	assert.Error(t, err, "NBR needs SWIR2")
}

func TestComputeIndices_AllThree(t *testing.T) {
	t.Parallel()

	im := NewImage(testTime(), 1, 1)
	require.NoError(t, im.AddBand(BandNIR1, NewGridFrom(1, 1, []float64{3000})))
	require.NoError(t, im.AddBand(BandR, NewGridFrom(1, 1, []float64{1000})))
	require.NoError(t, im.AddBand(BandSWIR1, NewGridFrom(1, 1, []float64{1500})))
	require.NoError(t, im.AddBand(BandSWIR2, NewGridFrom(1, 1, []float64{600})))

	require.NoError(t, im.ComputeIndices())

	// NDVI = 2000/4000, NBR = 2400/3600, NDMI = 1500/4500.
	assert.InDelta(t, 0.5, im.Band(BandNDVI).At(0, 0), 1e-12)
	assert.InDelta(t, 2400.0/3600.0, im.Band(BandNBR).At(0, 0), 1e-12)
	assert.InDelta(t, 1500.0/4500.0, im.Band(BandNDMI).At(0, 0), 1e-12)
}

func TestComputeIndex_MissingPixelStaysMissing(t *testing.T) {
	t.Parallel()

	im := NewImage(testTime(), 2, 1)
	require.NoError(t, im.AddBand(BandNIR1, NewGridFrom(2, 1, []float64{3000, math.NaN()})))
	require.NoError(t, im.AddBand(BandR, NewGridFrom(2, 1, []float64{1000, 1000})))

	g, err := im.ComputeIndex(BandNDVI)

	require.NoError(t, err)
	assert.InDelta(t, 0.5, g.At(0, 0), 1e-12)
	assert.True(t, math.IsNaN(g.At(1, 0)))
}
