package pipeline

import (
	"math"

	"github.com/montanaflynn/stats"

	"chloriseye/raster"
)

// MonthStats is the climatology of one calendar month: per-pixel median and
// population standard deviation of the detrended series across every year
// carrying data for that month.
type MonthStats struct {
	Month  int
	Years  int
	Median *raster.Grid
	StdDev *raster.Grid
}

// Climatology reduces a detrended series into twelve MonthStats, indexed
// month−1. Months without data keep all-missing grids. Panics if values is
// not aligned with comps.
func Climatology(comps []Composite, values []*raster.Grid) []MonthStats {
	if len(values) != len(comps) {
		panic("pipeline: series is not aligned with composites")
	}

	if len(comps) == 0 {
		return nil
	}

	w, h := comps[0].W, comps[0].H

	var byMonth [12][]*raster.Grid

	for i := range comps {
		if values[i] == nil {
			continue
		}

		byMonth[comps[i].Month-1] = append(byMonth[comps[i].Month-1], values[i])
	}

	out := make([]MonthStats, 12)

	for mon := range out {
		s := MonthStats{
			Month:  mon + 1,
			Years:  len(byMonth[mon]),
			Median: raster.NewGrid(w, h),
			StdDev: raster.NewGrid(w, h),
		}

		grids := byMonth[mon]
		buf := make([]float64, 0, len(grids))

		for px := 0; px < w*h; px++ {
			vals := buf[:0]

			for _, g := range grids {
				if v := g.Px[px]; !math.IsNaN(v) {
					vals = append(vals, v)
				}
			}

			if len(vals) == 0 {
				continue
			}

			med, errM := stats.Median(vals)
			sd, errS := stats.StandardDeviationPopulation(vals)

			if errM != nil || errS != nil {
				continue
			}

			s.Median.Px[px] = med
			s.StdDev.Px[px] = sd
		}

		out[mon] = s
	}

	return out
}

// ZScores converts each composite's detrended value into a z-score against
// its calendar month's climatology. A zero monthly spread yields a missing
// score rather than a division blowup.
func ZScores(comps []Composite, values []*raster.Grid, clim []MonthStats) []*raster.Grid {
	out := make([]*raster.Grid, len(comps))

	for i := range comps {
		g := values[i]
		if g == nil {
			continue
		}

		s := &clim[comps[i].Month-1]
		z := raster.NewGrid(comps[i].W, comps[i].H)

		for px, v := range g.Px {
			med := s.Median.Px[px]
			sd := s.StdDev.Px[px]

			if math.IsNaN(v) || math.IsNaN(med) || math.IsNaN(sd) || sd == 0 {
				continue
			}

			z.Px[px] = (v - med) / sd
		}

		out[i] = z
	}

	return out
}
