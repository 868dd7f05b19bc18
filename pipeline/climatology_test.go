package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chloriseye/raster"
)

// yearPattern fills five years of monthly grids so that every calendar
// month sees the values {-2, -1, 0, 1, 2} across years.
func yearPattern(comps []Composite) []*raster.Grid {
	out := make([]*raster.Grid, len(comps))

	for i := range comps {
		g := raster.NewGrid(comps[i].W, comps[i].H)
		g.Fill(float64(comps[i].Year-2005) - 2)
		out[i] = g
	}

	return out
}

func TestClimatology_MedianAndSpread(t *testing.T) {
	t.Parallel()

	comps := testComposites(2005, 5, 1, 1)
	vals := yearPattern(comps)

	clim := Climatology(comps, vals)

	require.Len(t, clim, 12)

	for mon := 0; mon < 12; mon++ {
		assert.Equal(t, mon+1, clim[mon].Month)
		assert.Equal(t, 5, clim[mon].Years)
		// Median of {-2,-1,0,1,2} = 0; population stddev = sqrt(10/5).
		assert.InDelta(t, 0.0, clim[mon].Median.At(0, 0), 1e-12)
		assert.InDelta(t, math.Sqrt(2), clim[mon].StdDev.At(0, 0), 1e-12)
	}
}

func TestZScores_MeanZeroVarianceOne(t *testing.T) {
	t.Parallel()

	comps := testComposites(2005, 5, 1, 1)
	vals := yearPattern(comps)

	clim := Climatology(comps, vals)
	z := ZScores(comps, vals, clim)

	require.Len(t, z, len(comps))

	for mon := 1; mon <= 12; mon++ {
		var scores []float64

		for i := range comps {
			if comps[i].Month != mon {
				continue
			}

			require.NotNil(t, z[i])
			scores = append(scores, z[i].At(0, 0))
		}

		require.Len(t, scores, 5)

		var sum, sumSq float64

		for _, s := range scores {
			sum += s
			sumSq += s * s
		}

		mean := sum / float64(len(scores))
		variance := sumSq/float64(len(scores)) - mean*mean

		assert.InDelta(t, 0.0, mean, 1e-9, "month %d z-scores center on zero", mon)
		assert.InDelta(t, 1.0, variance, 1e-9, "month %d z-scores have unit variance", mon)
	}
}

func TestZScores_ZeroSpreadIsMissing(t *testing.T) {
	t.Parallel()

	comps := testComposites(2005, 3, 1, 1)
	vals := seriesValues(comps, func(tt float64) float64 { return 3.0 })

	clim := Climatology(comps, vals)
	z := ZScores(comps, vals, clim)

	assert.InDelta(t, 0.0, clim[0].StdDev.At(0, 0), 1e-12)
	require.NotNil(t, z[0])
	assert.True(t, math.IsNaN(z[0].At(0, 0)), "zero spread never divides")
}

func TestClimatology_SkipsEmptyCells(t *testing.T) {
	t.Parallel()

	comps := testComposites(2005, 5, 1, 1)
	vals := yearPattern(comps)

	// 2005 is missing entirely: every month drops to four contributing years.
	for i := range comps {
		if comps[i].Year == 2005 {
			comps[i].Images = 0
			vals[i] = nil
		}
	}

	clim := Climatology(comps, vals)
	z := ZScores(comps, vals, clim)

	assert.Equal(t, 4, clim[0].Years)
	// Median of {-1,0,1,2} = 0.5.
	assert.InDelta(t, 0.5, clim[0].Median.At(0, 0), 1e-12)
	assert.Nil(t, z[0], "missing months produce no score")
}

func TestClimatology_AllMissingPixel(t *testing.T) {
	t.Parallel()

	comps := testComposites(2005, 2, 1, 1)
	vals := make([]*raster.Grid, len(comps))

	for i := range vals {
		vals[i] = raster.NewGrid(1, 1)
	}

	clim := Climatology(comps, vals)

	assert.True(t, math.IsNaN(clim[0].Median.At(0, 0)))
	assert.True(t, math.IsNaN(clim[0].StdDev.At(0, 0)))
}
