// Package raster holds the in-memory raster primitives the analysis
// pipeline works on: single-band grids of float64 samples and multi-band
// images keyed by band name. A missing observation is IEEE NaN, never a
// sentinel constant, so masked pixels can never leak into arithmetic.
package raster

import (
	"fmt"
	"math"
)

// Semantic band names. Source scenes are renamed to these before any
// index math happens; the index bands are appended by the preprocessor.
const (
	BandB     = "B"
	BandG     = "G"
	BandR     = "R"
	BandNIR1  = "NIR1"
	BandNIR2  = "NIR2"
	BandSWIR1 = "SWIR1"
	BandSWIR2 = "SWIR2"

	BandNDVI = "NDVI"
	BandNBR  = "NBR"
	BandNDMI = "NDMI"
)

// SpectralBands lists the semantic reflectance bands in canonical order.
var SpectralBands = []string{BandB, BandG, BandR, BandNIR1, BandNIR2, BandSWIR1, BandSWIR2}

// IndexBands lists the derived vegetation-index bands.
var IndexBands = []string{BandNDVI, BandNBR, BandNDMI}

// Grid is a single-band raster: W×H row-major float64 samples.
// NaN marks a missing observation.
type Grid struct {
	W, H int
	Px   []float64
}

// NewGrid returns a w×h grid with every sample missing.
func NewGrid(w, h int) *Grid {
	px := make([]float64, w*h)
	for i := range px {
		px[i] = math.NaN()
	}

	return &Grid{W: w, H: h, Px: px}
}

// NewGridFrom wraps px as a w×h grid without copying.
// Panics if len(px) != w*h.
func NewGridFrom(w, h int, px []float64) *Grid {
	if len(px) != w*h {
		panic(fmt.Sprintf("raster: %d samples for %dx%d grid", len(px), w, h))
	}

	return &Grid{W: w, H: h, Px: px}
}

// At returns the sample at (x, y).
func (g *Grid) At(x, y int) float64 { return g.Px[y*g.W+x] }

// Set writes the sample at (x, y).
func (g *Grid) Set(x, y int, v float64) { g.Px[y*g.W+x] = v }

// Len returns the number of samples.
func (g *Grid) Len() int { return len(g.Px) }

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	px := make([]float64, len(g.Px))
	copy(px, g.Px)

	return &Grid{W: g.W, H: g.H, Px: px}
}

// Fill sets every sample to v.
func (g *Grid) Fill(v float64) {
	for i := range g.Px {
		g.Px[i] = v
	}
}

// CountValid returns the number of non-missing samples.
func (g *Grid) CountValid() int {
	n := 0

	for _, v := range g.Px {
		if !math.IsNaN(v) {
			n++
		}
	}

	return n
}

// MeanValid returns the arithmetic mean over non-missing samples.
// ok is false when the grid holds no valid sample.
func (g *Grid) MeanValid() (mean float64, ok bool) {
	var sum float64

	n := 0

	for _, v := range g.Px {
		if math.IsNaN(v) {
			continue
		}

		sum += v
		n++
	}

	if n == 0 {
		return 0, false
	}

	return sum / float64(n), true
}

// NormalizedDifference computes (a−b)/(a+b) per pixel. A zero denominator
// or a missing operand yields a missing sample, not an error.
// Panics if the grids differ in shape, mirroring gonum's mat conventions.
func NormalizedDifference(a, b *Grid) *Grid {
	if a.W != b.W || a.H != b.H {
		panic(fmt.Sprintf("raster: shape mismatch %dx%d vs %dx%d", a.W, a.H, b.W, b.H))
	}

	out := &Grid{W: a.W, H: a.H, Px: make([]float64, len(a.Px))}

	for i := range a.Px {
		num := a.Px[i] - b.Px[i]
		den := a.Px[i] + b.Px[i]

		if den == 0 || math.IsNaN(den) {
			out.Px[i] = math.NaN()

			continue
		}

		out.Px[i] = num / den
	}

	return out
}
