package pipeline

import (
	"errors"
	"fmt"
	"time"

	"chloriseye/raster"
)

var (
	ErrUnknownBand    = errors.New("unknown band name")
	ErrEmptyDateRange = errors.New("empty date range")
	ErrNegativeOrder  = errors.New("negative harmonic order")
	ErrOrderRequired  = errors.New("harmonic order must be at least 1")
)

// Config carries every parameter of a run. All fields are required; there
// are no implied defaults.
type Config struct {
	// BandMap renames source band names to canonical ones (R, NIR1, ...).
	BandMap map[string]string
	// QABand is the source name of the quality bitmask band.
	QABand string
	// QABits are the bit positions that must all be clear for a valid pixel.
	QABits []uint
	// NDVIThreshold drops pixels whose NDVI does not exceed it.
	NDVIThreshold float64
	// StartDate and EndDate bound the scene archive query. EndDate's year
	// also closes the monthly composite grid.
	StartDate, EndDate time.Time
	// Order is the number of harmonic cosine/sine pairs. Zero means pure
	// linear detrending.
	Order int
	// Dependent is the canonical band the regression fits against.
	Dependent string
	// FitDetrended selects whether the standalone harmonic fit runs on the
	// linearly detrended series instead of the raw one.
	FitDetrended bool
}

func canonicalBands() map[string]bool {
	known := make(map[string]bool, len(raster.SpectralBands)+len(raster.IndexBands))

	for _, b := range raster.SpectralBands {
		known[b] = true
	}

	for _, b := range raster.IndexBands {
		known[b] = true
	}

	return known
}

// Validate rejects a broken configuration before any per-pixel work starts.
func (c *Config) Validate() error {
	if len(c.BandMap) == 0 {
		return fmt.Errorf("band rename table is required: %w", ErrUnknownBand)
	}

	known := canonicalBands()

	for src, dst := range c.BandMap {
		if !known[dst] {
			return fmt.Errorf("band map %s=%s: %w", src, dst, ErrUnknownBand)
		}
	}

	if c.QABand == "" {
		return fmt.Errorf("quality band is required: %w", ErrUnknownBand)
	}

	if !known[c.Dependent] {
		return fmt.Errorf("dependent band %q: %w", c.Dependent, ErrUnknownBand)
	}

	if c.StartDate.IsZero() || c.EndDate.IsZero() || !c.EndDate.After(c.StartDate) {
		return fmt.Errorf("%s..%s: %w", c.StartDate.Format("2006-01-02"), c.EndDate.Format("2006-01-02"), ErrEmptyDateRange)
	}

	if c.Order < 0 {
		return fmt.Errorf("order %d: %w", c.Order, ErrNegativeOrder)
	}

	return nil
}

// EndYear is the last calendar year of the composite grid.
func (c *Config) EndYear() int {
	return c.EndDate.Year()
}
