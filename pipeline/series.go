package pipeline

import (
	"time"

	"chloriseye/raster"
)

// Point is one step of a region-reduced time series, shaped for charting
// and API responses. A nil Value marks a month without usable data.
type Point struct {
	Time  time.Time `json:"time"`
	Date  string    `json:"date"`
	Value *float64  `json:"value"`
}

// ReduceMean collapses each grid to its spatial mean over valid pixels,
// producing one point per composite.
func ReduceMean(comps []Composite, values []*raster.Grid) []Point {
	out := make([]Point, len(comps))

	for i := range comps {
		pt := Point{Time: comps[i].Time, Date: comps[i].Date}

		if g := values[i]; g != nil {
			if mean, ok := g.MeanValid(); ok {
				pt.Value = &mean
			}
		}

		out[i] = pt
	}

	return out
}
