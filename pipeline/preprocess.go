package pipeline

import (
	"fmt"

	"chloriseye/raster"
)

// Preprocessor turns raw archive scenes into masked, index-augmented ones.
type Preprocessor struct {
	cfg  *Config
	mask uint32
}

func NewPreprocessor(cfg *Config) (*Preprocessor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Preprocessor{cfg: cfg, mask: raster.BitMask(cfg.QABits)}, nil
}

// Mask applies the full per-scene treatment: quality masking, band
// renaming, index derivation, and the low-vegetation cut. The returned
// image carries canonical band names plus NDVI, NBR and NDMI.
func (p *Preprocessor) Mask(sc *raster.Image) (*raster.Image, error) {
	qa := sc.Band(p.cfg.QABand)
	if qa == nil {
		return nil, fmt.Errorf("scene at %s has no band %q: %w", sc.Time.Format("2006-01-02"), p.cfg.QABand, ErrUnknownBand)
	}

	out, err := sc.Select(p.cfg.BandMap)
	if err != nil {
		return nil, fmt.Errorf("select bands: %w", err)
	}

	out.ApplyValidity(raster.QAValidity(qa, p.mask))

	if err := out.ComputeIndices(); err != nil {
		return nil, err
	}

	// The vegetation cut runs after index derivation so NDVI itself decides.
	threshold := p.cfg.NDVIThreshold
	if err := out.KeepWhere(raster.BandNDVI, func(v float64) bool { return v > threshold }); err != nil {
		return nil, err
	}

	return out, nil
}

// MaskAll preprocesses a batch of scenes in order.
func (p *Preprocessor) MaskAll(scenes []*raster.Image) ([]*raster.Image, error) {
	out := make([]*raster.Image, 0, len(scenes))

	for _, sc := range scenes {
		m, err := p.Mask(sc)
		if err != nil {
			return nil, err
		}

		out = append(out, m)
	}

	return out, nil
}
