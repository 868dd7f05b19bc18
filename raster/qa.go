package raster

import "math"

// BitMask folds bit positions into a single mask value.
func BitMask(bits []uint) uint32 {
	var m uint32

	for _, b := range bits {
		m |= 1 << b
	}

	return m
}

// QAValidity decodes a quality-assessment band into a per-pixel validity
// slice. A pixel is valid when its QA value is present and none of the
// masked bits are set.
func QAValidity(qa *Grid, mask uint32) []bool {
	valid := make([]bool, len(qa.Px))

	for i, v := range qa.Px {
		if math.IsNaN(v) {
			continue
		}

		valid[i] = uint32(v)&mask == 0
	}

	return valid
}

// ApplyValidity turns every pixel with valid[i] == false into a missing
// sample, across all bands. Panics if valid does not match the image size,
// mirroring gonum's mat conventions.
func (im *Image) ApplyValidity(valid []bool) {
	if len(valid) != im.W*im.H {
		panic("raster: validity slice does not match image shape")
	}

	for _, g := range im.Bands {
		for i, ok := range valid {
			if !ok {
				g.Px[i] = math.NaN()
			}
		}
	}
}
