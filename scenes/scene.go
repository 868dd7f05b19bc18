// Package scenes is the client side of the imagery archive service.
package scenes

import (
	"fmt"
	"math"
	"time"

	"chloriseye/raster"
)

// Scene is one archive granule clipped to the AOI: per-band sample vectors
// in row-major order plus acquisition metadata. Null samples are pixels the
// archive has no value for.
type Scene struct {
	ID     string                `json:"id"`
	Time   time.Time             `json:"time"`
	Width  int                   `json:"width"`
	Height int                   `json:"height"`
	Bands  map[string][]*float64 `json:"bands"`
}

// Image decodes the wire samples into a raster image, turning null samples
// into missing pixels.
func (s *Scene) Image() (*raster.Image, error) {
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("scene %s: bad shape %dx%d", s.ID, s.Width, s.Height)
	}

	im := raster.NewImage(s.Time.UTC(), s.Width, s.Height)

	for name, samples := range s.Bands {
		if len(samples) != s.Width*s.Height {
			return nil, fmt.Errorf("scene %s band %s: %d samples for %dx%d grid", s.ID, name, len(samples), s.Width, s.Height)
		}

		g := raster.NewGrid(s.Width, s.Height)

		for i, v := range samples {
			if v != nil {
				g.Px[i] = *v
			}
		}

		im.Bands[name] = g
	}

	return im, nil
}

// Samples flattens a grid back into the wire shape, with missing pixels
// encoded as nulls.
func Samples(g *raster.Grid) []*float64 {
	out := make([]*float64, len(g.Px))

	for i, v := range g.Px {
		if math.IsNaN(v) {
			continue
		}

		val := v
		out[i] = &val
	}

	return out
}
