package pipeline

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"chloriseye/raster"
)

// epoch anchors the regression time axis.
var epoch = time.Unix(0, 0).UTC()

// FractionalYears maps a timestamp onto the regression time axis, measured
// in fractional years since the epoch.
func FractionalYears(ts time.Time) float64 {
	return ts.Sub(epoch).Hours() / (24 * 365.25)
}

// Regressors builds one design-matrix row for time t at harmonic order h:
// constant, linear trend, h cosine terms, then h sine terms. Pair i cycles
// i times per year.
func Regressors(t float64, h int) []float64 {
	row := make([]float64, 2+2*h)
	row[0] = 1
	row[1] = t

	for i := 1; i <= h; i++ {
		w := 2 * math.Pi * float64(i) * t
		row[1+i] = math.Cos(w)
		row[1+h+i] = math.Sin(w)
	}

	return row
}

// HarmonicModel holds per-pixel OLS coefficients in Regressors order. A nil
// coefficient vector marks a pixel whose fit was underdetermined; such
// pixels evaluate to missing everywhere downstream.
type HarmonicModel struct {
	Order int
	W, H  int
	Coef  [][]float64
}

type sample struct {
	row []float64
	y   *raster.Grid
}

// FitHarmonic fits the dependent band of the non-empty composites.
func FitHarmonic(comps []Composite, band string, order int) (*HarmonicModel, error) {
	return FitSeries(comps, BandSeries(comps, band), order)
}

// BandSeries extracts one band from every composite, aligned by index.
// Empty composites yield nil entries.
func BandSeries(comps []Composite, band string) []*raster.Grid {
	out := make([]*raster.Grid, len(comps))

	for i := range comps {
		out[i] = comps[i].Band(band)
	}

	return out
}

// FitSeries solves the per-pixel normal equations for the given dependent
// series. The normal matrix of the complete series is factorized once and
// reused for every pixel observed at all time steps; pixels with gaps get
// their own reduced system. Panics if values is not aligned with comps,
// mirroring gonum's mat conventions.
func FitSeries(comps []Composite, values []*raster.Grid, order int) (*HarmonicModel, error) {
	if len(values) != len(comps) {
		panic("pipeline: series is not aligned with composites")
	}

	if order < 0 {
		return nil, fmt.Errorf("order %d: %w", order, ErrNegativeOrder)
	}

	if len(comps) == 0 {
		return nil, fmt.Errorf("no composites to fit: %w", ErrEmptyDateRange)
	}

	w, h := comps[0].W, comps[0].H
	p := 2 + 2*order

	var samples []sample

	for i := range comps {
		if comps[i].Empty() || values[i] == nil {
			continue
		}

		samples = append(samples, sample{
			row: Regressors(FractionalYears(comps[i].Time), order),
			y:   values[i],
		})
	}

	m := &HarmonicModel{Order: order, W: w, H: h, Coef: make([][]float64, w*h)}
	n := len(samples)

	fullData := make([]float64, p*p)

	for _, s := range samples {
		for j, xj := range s.row {
			for k, xk := range s.row {
				fullData[j*p+k] += xj * xk
			}
		}
	}

	var cholFull mat.Cholesky

	fullOK := n >= p && cholFull.Factorize(mat.NewSymDense(p, fullData))

	adata := make([]float64, p*p)
	bdata := make([]float64, p)

	for px := range m.Coef {
		valid := 0

		for _, s := range samples {
			if !math.IsNaN(s.y.Px[px]) {
				valid++
			}
		}

		if valid < p {
			continue
		}

		for j := range bdata {
			bdata[j] = 0
		}

		var chol *mat.Cholesky

		if valid == n && fullOK {
			for _, s := range samples {
				y := s.y.Px[px]

				for j, xj := range s.row {
					bdata[j] += xj * y
				}
			}

			chol = &cholFull
		} else {
			for j := range adata {
				adata[j] = 0
			}

			for _, s := range samples {
				y := s.y.Px[px]
				if math.IsNaN(y) {
					continue
				}

				for j, xj := range s.row {
					bdata[j] += xj * y

					for k, xk := range s.row {
						adata[j*p+k] += xj * xk
					}
				}
			}

			var c mat.Cholesky
			if !c.Factorize(mat.NewSymDense(p, adata)) {
				continue
			}

			chol = &c
		}

		var x mat.VecDense
		if err := chol.SolveVecTo(&x, mat.NewVecDense(p, bdata)); err != nil {
			continue
		}

		coef := make([]float64, p)

		for j := range coef {
			coef[j] = x.AtVec(j)
		}

		m.Coef[px] = coef
	}

	return m, nil
}

// FittedAt evaluates the model for one pixel at time t.
func (m *HarmonicModel) FittedAt(px int, t float64) float64 {
	coef := m.Coef[px]
	if coef == nil {
		return math.NaN()
	}

	var sum float64

	for j, x := range Regressors(t, m.Order) {
		sum += coef[j] * x
	}

	return sum
}

// Fitted evaluates the model at every composite time, aligned with comps.
// Empty composites yield nil entries.
func (m *HarmonicModel) Fitted(comps []Composite) []*raster.Grid {
	out := make([]*raster.Grid, len(comps))

	for i := range comps {
		if comps[i].Empty() {
			continue
		}

		row := Regressors(FractionalYears(comps[i].Time), m.Order)
		g := raster.NewGrid(m.W, m.H)

		for px, coef := range m.Coef {
			if coef == nil {
				continue
			}

			var sum float64

			for j, x := range row {
				sum += coef[j] * x
			}

			g.Px[px] = sum
		}

		out[i] = g
	}

	return out
}

// Detrended subtracts the fitted model from the observed series, aligned
// with comps. Missing observations and failed pixels come out missing.
func (m *HarmonicModel) Detrended(comps []Composite, observed []*raster.Grid) []*raster.Grid {
	return subSeries(observed, m.Fitted(comps), m.W, m.H)
}

func subSeries(a, b []*raster.Grid, w, h int) []*raster.Grid {
	out := make([]*raster.Grid, len(a))

	for i := range a {
		if a[i] == nil || b[i] == nil {
			continue
		}

		g := raster.NewGrid(w, h)

		for px := range g.Px {
			g.Px[px] = a[i].Px[px] - b[i].Px[px]
		}

		out[i] = g
	}

	return out
}
