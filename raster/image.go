package raster

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Image is a multi-band raster acquired at a single point in time.
// All bands share the same shape.
type Image struct {
	Time  time.Time
	W, H  int
	Bands map[string]*Grid
}

// NewImage returns an empty w×h image acquired at t.
func NewImage(t time.Time, w, h int) *Image {
	return &Image{Time: t, W: w, H: h, Bands: make(map[string]*Grid)}
}

// AddBand attaches g under name. The grid must match the image shape.
func (im *Image) AddBand(name string, g *Grid) error {
	if g.W != im.W || g.H != im.H {
		return fmt.Errorf("band %s: shape %dx%d, image is %dx%d", name, g.W, g.H, im.W, im.H)
	}

	im.Bands[name] = g

	return nil
}

// Band returns the named band grid, nil when the image has no such band.
func (im *Image) Band(name string) *Grid {
	return im.Bands[name]
}

// BandNames returns the band names in sorted order.
func (im *Image) BandNames() []string {
	names := make([]string, 0, len(im.Bands))
	for name := range im.Bands {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Select builds a new image containing only the bands named in table,
// stored under their renamed keys. Grids are cloned, so the source image
// stays untouched. A source band missing from the image is an error:
// the rename table is configuration and must match the collection.
func (im *Image) Select(table map[string]string) (*Image, error) {
	out := NewImage(im.Time, im.W, im.H)

	for src, dst := range table {
		g, ok := im.Bands[src]
		if !ok {
			return nil, fmt.Errorf("source band %q not present in scene (have %v)", src, im.BandNames())
		}

		out.Bands[dst] = g.Clone()
	}

	return out, nil
}

// KeepWhere retains, across every band, only the pixels where pred holds
// for the named band's value; all other pixels become missing. A missing
// value in the reference band never satisfies pred (NaN comparisons are
// false), so already-masked pixels stay masked.
func (im *Image) KeepWhere(band string, pred func(float64) bool) error {
	ref, ok := im.Bands[band]
	if !ok {
		return fmt.Errorf("band %q not present in image", band)
	}

	for i, v := range ref.Px {
		if pred(v) {
			continue
		}

		for _, g := range im.Bands {
			g.Px[i] = math.NaN()
		}
	}

	return nil
}
