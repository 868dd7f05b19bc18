package raster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid_StartsMissing(t *testing.T) {
	t.Parallel()

	g := NewGrid(3, 2)

	require.Len(t, g.Px, 6)

	for i, v := range g.Px {
		assert.True(t, math.IsNaN(v), "fresh pixel %d should be missing", i)
	}
}

func TestNewGridFrom_ShapeMismatchPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		NewGridFrom(2, 2, []float64{1, 2, 3})
	})
}

func TestGrid_AtSet(t *testing.T) {
	t.Parallel()

	g := NewGrid(3, 2)
	g.Set(2, 1, 7.5)

	assert.InDelta(t, 7.5, g.At(2, 1), 1e-12)
	assert.True(t, math.IsNaN(g.At(0, 0)), "untouched pixel stays missing")
}

func TestGrid_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	g := NewGridFrom(2, 1, []float64{1, 2})
	c := g.Clone()
	c.Set(0, 0, 99)

	assert.InDelta(t, 1.0, g.At(0, 0), 1e-12, "clone writes must not touch the source")
	assert.InDelta(t, 99.0, c.At(0, 0), 1e-12)
}

func TestGrid_CountValid(t *testing.T) {
	t.Parallel()

	g := NewGridFrom(2, 2, []float64{1, math.NaN(), 3, math.NaN()})

	assert.Equal(t, 2, g.CountValid())
}

func TestGrid_MeanValid(t *testing.T) {
	t.Parallel()

	g := NewGridFrom(2, 2, []float64{1, math.NaN(), 3, math.NaN()})

	mean, ok := g.MeanValid()

	require.True(t, ok)
	// (1 + 3) / 2 = 2.
	assert.InDelta(t, 2.0, mean, 1e-12)
}

func TestGrid_MeanValid_AllMissing(t *testing.T) {
	t.Parallel()

	g := NewGrid(2, 2)

	_, ok := g.MeanValid()
	assert.False(t, ok, "all-missing grid has no mean")
}

func TestNormalizedDifference_KnownValues(t *testing.T) {
	t.Parallel()

	// (3000 - 1000) / (3000 + 1000) = 0.5.
	nir := NewGridFrom(1, 1, []float64{3000})
	red := NewGridFrom(1, 1, []float64{1000})

	nd := NormalizedDifference(nir, red)

	assert.InDelta(t, 0.5, nd.At(0, 0), 1e-12)
}

func TestNormalizedDifference_ZeroDenominator(t *testing.T) {
	t.Parallel()

	a := NewGridFrom(1, 1, []float64{5})
	b := NewGridFrom(1, 1, []float64{-5})

	nd := NormalizedDifference(a, b)

	assert.True(t, math.IsNaN(nd.At(0, 0)), "0/0 pixel must come out missing, not Inf")
}

func TestNormalizedDifference_MissingPropagates(t *testing.T) {
	t.Parallel()

	a := NewGridFrom(2, 1, []float64{math.NaN(), 3000})
	b := NewGridFrom(2, 1, []float64{1000, 1000})

	nd := NormalizedDifference(a, b)

	assert.True(t, math.IsNaN(nd.At(0, 0)))
	assert.InDelta(t, 0.5, nd.At(1, 0), 1e-12)
}

func TestNormalizedDifference_ShapeMismatchPanics(t *testing.T) {
	t.Parallel()

	a := NewGrid(2, 2)
	b := NewGrid(3, 2)

	assert.Panics(t, func() {
		NormalizedDifference(a, b)
	})
}
