package raster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitMask(t *testing.T) {
	t.Parallel()

	// Bits 0 and 2: 1 + 4 = 5.
	assert.Equal(t, uint32(5), BitMask([]uint{0, 2}))
	assert.Equal(t, uint32(0), BitMask(nil))

	// The MOD09A1 state bits used in production.
	mask := BitMask([]uint{2, 8, 9, 10, 12, 13, 15})
	assert.Equal(t, uint32(1<<2|1<<8|1<<9|1<<10|1<<12|1<<13|1<<15), mask)
}

func TestQAValidity(t *testing.T) {
	t.Parallel()

	mask := BitMask([]uint{2, 8})
	qa := NewGridFrom(4, 1, []float64{
		0,          // clean
		1 << 2,     // cloud shadow bit set
		1 << 3,     // unmasked bit set, still clean
		math.NaN(), // missing QA
	})

	valid := QAValidity(qa, mask)

	require.Len(t, valid, 4)
	assert.True(t, valid[0])
	assert.False(t, valid[1], "masked bit must reject the pixel")
	assert.True(t, valid[2], "bits outside the mask are ignored")
	assert.False(t, valid[3], "missing QA rejects the pixel")
}

func TestApplyValidity_MasksAllBands(t *testing.T) {
	t.Parallel()

	im := NewImage(testTime(), 2, 1)
	require.NoError(t, im.AddBand(BandR, NewGridFrom(2, 1, []float64{10, 20})))
	require.NoError(t, im.AddBand(BandNIR1, NewGridFrom(2, 1, []float64{30, 40})))

	im.ApplyValidity([]bool{true, false})

	assert.InDelta(t, 10.0, im.Band(BandR).At(0, 0), 1e-12)
	assert.True(t, math.IsNaN(im.Band(BandR).At(1, 0)))
	assert.True(t, math.IsNaN(im.Band(BandNIR1).At(1, 0)), "every band drops the rejected pixel")
}

func TestApplyValidity_ShapeMismatchPanics(t *testing.T) {
	t.Parallel()

	im := NewImage(testTime(), 2, 1)

	assert.Panics(t, func() {
		im.ApplyValidity([]bool{true})
	})
}
