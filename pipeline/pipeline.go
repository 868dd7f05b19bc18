// Package pipeline computes standardized vegetation-stress anomalies from a
// multi-year satellite scene series: quality masking, monthly median
// compositing, harmonic OLS detrending and per-calendar-month z-score
// normalization, applied uniformly and independently across every pixel.
package pipeline

import (
	"fmt"

	"chloriseye/raster"
)

// Pipeline sequences the four stages for one configuration. Runs share no
// mutable state, so a Pipeline is safe for concurrent use.
type Pipeline struct {
	cfg *Config
	pre *Preprocessor
}

func New(cfg *Config) (*Pipeline, error) {
	pre, err := NewPreprocessor(cfg)
	if err != nil {
		return nil, err
	}

	return &Pipeline{cfg: cfg, pre: pre}, nil
}

// AnomalyResult is the z-score product of a full run.
type AnomalyResult struct {
	Composites  []Composite
	Detrended   []*raster.Grid
	Climatology []MonthStats
	ZScores     []*raster.Grid
	// Series is the spatial mean of ZScores per composite.
	Series []Point
}

// Anomalies runs masking, compositing, detrending and climatology
// normalization over the given scenes.
func (p *Pipeline) Anomalies(scenes []*raster.Image) (*AnomalyResult, error) {
	masked, err := p.pre.MaskAll(scenes)
	if err != nil {
		return nil, err
	}

	comps, err := MonthlyComposites(masked, p.cfg.EndYear())
	if err != nil {
		return nil, err
	}

	model, err := FitHarmonic(comps, p.cfg.Dependent, p.cfg.Order)
	if err != nil {
		return nil, err
	}

	observed := BandSeries(comps, p.cfg.Dependent)
	detrended := model.Detrended(comps, observed)
	clim := Climatology(comps, detrended)
	z := ZScores(comps, detrended, clim)

	return &AnomalyResult{
		Composites:  comps,
		Detrended:   detrended,
		Climatology: clim,
		ZScores:     z,
		Series:      ReduceMean(comps, z),
	}, nil
}

// FitResult is the harmonic-fit product: the model, its fitted values, and
// the fitted-minus-dependent difference, over either the raw or the
// linearly detrended dependent series.
type FitResult struct {
	Composites []Composite
	Dependent  []*raster.Grid
	Fitted     []*raster.Grid
	Difference []*raster.Grid
	Model      *HarmonicModel

	DependentSeries  []Point
	FittedSeries     []Point
	DifferenceSeries []Point
}

// HarmonicFit runs masking and compositing, then fits the configured
// harmonic model, skipping the climatology stage. Requires Order >= 1.
func (p *Pipeline) HarmonicFit(scenes []*raster.Image) (*FitResult, error) {
	if p.cfg.Order < 1 {
		return nil, fmt.Errorf("harmonic fit with order %d: %w", p.cfg.Order, ErrOrderRequired)
	}

	masked, err := p.pre.MaskAll(scenes)
	if err != nil {
		return nil, err
	}

	comps, err := MonthlyComposites(masked, p.cfg.EndYear())
	if err != nil {
		return nil, err
	}

	target := BandSeries(comps, p.cfg.Dependent)

	if p.cfg.FitDetrended {
		linear, err := FitSeries(comps, target, 0)
		if err != nil {
			return nil, err
		}

		target = linear.Detrended(comps, target)
	}

	model, err := FitSeries(comps, target, p.cfg.Order)
	if err != nil {
		return nil, err
	}

	fitted := model.Fitted(comps)
	diff := subSeries(fitted, target, model.W, model.H)

	return &FitResult{
		Composites: comps,
		Dependent:  target,
		Fitted:     fitted,
		Difference: diff,
		Model:      model,

		DependentSeries:  ReduceMean(comps, target),
		FittedSeries:     ReduceMean(comps, fitted),
		DifferenceSeries: ReduceMean(comps, diff),
	}, nil
}
