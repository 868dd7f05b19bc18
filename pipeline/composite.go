package pipeline

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"chloriseye/raster"
)

// Composite is one cell of the dense monthly grid. Empty cells keep their
// place in the series with Images == 0 and no band data; callers filter on
// Empty() before any statistical use.
type Composite struct {
	Year   int
	Month  int
	Date   string // YYYY-MM label
	Images int
	// Time anchors the composite on the regression time axis. Real cells
	// inherit the earliest scene's acquisition time, empty cells the first
	// of the month.
	Time  time.Time
	W, H  int
	Bands map[string]*raster.Grid
}

// Empty reports whether no scene contributed to this cell.
func (c *Composite) Empty() bool {
	return c.Images == 0
}

// Band returns the named band grid, nil for empty composites.
func (c *Composite) Band(name string) *raster.Grid {
	if c.Bands == nil {
		return nil
	}

	return c.Bands[name]
}

// MonthlyComposites buckets masked scenes by (year, month) and reduces each
// bucket to a per-pixel, per-band median. The result covers every month from
// January of the earliest scene's year through December of endYear, in
// chronological order, with explicit empty cells for months without scenes.
func MonthlyComposites(scenes []*raster.Image, endYear int) ([]Composite, error) {
	if len(scenes) == 0 {
		return nil, fmt.Errorf("no scenes to composite: %w", ErrEmptyDateRange)
	}

	w, h := scenes[0].W, scenes[0].H

	buckets := make(map[[2]int][]*raster.Image)
	startYear := endYear + 1

	for _, sc := range scenes {
		if sc.W != w || sc.H != h {
			return nil, fmt.Errorf("scene at %s is %dx%d, want %dx%d", sc.Time.Format("2006-01-02"), sc.W, sc.H, w, h)
		}

		ts := sc.Time.UTC()
		key := [2]int{ts.Year(), int(ts.Month())}
		buckets[key] = append(buckets[key], sc)

		if ts.Year() < startYear {
			startYear = ts.Year()
		}
	}

	if startYear > endYear {
		return nil, fmt.Errorf("earliest scene year %d is past end year %d: %w", startYear, endYear, ErrEmptyDateRange)
	}

	out := make([]Composite, 0, 12*(endYear-startYear+1))

	for year := startYear; year <= endYear; year++ {
		for month := 1; month <= 12; month++ {
			c := Composite{
				Year:  year,
				Month: month,
				Date:  fmt.Sprintf("%04d-%02d", year, month),
				W:     w,
				H:     h,
			}

			bucket := buckets[[2]int{year, month}]
			if len(bucket) == 0 {
				c.Time = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
				out = append(out, c)

				continue
			}

			sort.Slice(bucket, func(i, j int) bool { return bucket[i].Time.Before(bucket[j].Time) })

			c.Images = len(bucket)
			c.Time = bucket[0].Time.UTC()
			c.Bands = medianBands(bucket, w, h)
			out = append(out, c)
		}
	}

	return out, nil
}

func medianBands(bucket []*raster.Image, w, h int) map[string]*raster.Grid {
	names := bucket[0].BandNames()
	bands := make(map[string]*raster.Grid, len(names))
	buf := make([]float64, 0, len(bucket))

	for _, name := range names {
		g := raster.NewGrid(w, h)

		for i := range g.Px {
			vals := buf[:0]

			for _, sc := range bucket {
				if src := sc.Band(name); src != nil {
					if v := src.Px[i]; !math.IsNaN(v) {
						vals = append(vals, v)
					}
				}
			}

			if len(vals) == 0 {
				continue
			}

			med, err := stats.Median(vals)
			if err != nil {
				continue
			}

			g.Px[i] = med
		}

		bands[name] = g
	}

	return bands
}
