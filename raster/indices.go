package raster

import "fmt"

// indexInputs names the band pair behind each normalized-difference index.
var indexInputs = map[string][2]string{
	BandNDVI: {BandNIR1, BandR},
	BandNBR:  {BandNIR1, BandSWIR2},
	BandNDMI: {BandNIR1, BandSWIR1},
}

// ComputeIndex derives one of the supported normalized-difference indices
// from the image's spectral bands and attaches it as a new band. The inputs
// must already carry canonical names (see Select).
func (im *Image) ComputeIndex(name string) (*Grid, error) {
	pair, ok := indexInputs[name]
	if !ok {
		return nil, fmt.Errorf("unsupported index %q", name)
	}

	a := im.Band(pair[0])
	b := im.Band(pair[1])

	if a == nil || b == nil {
		return nil, fmt.Errorf("index %s needs bands %s and %s", name, pair[0], pair[1])
	}

	g := NormalizedDifference(a, b)
	im.Bands[name] = g

	return g, nil
}

// ComputeIndices attaches every supported index in IndexBands order.
func (im *Image) ComputeIndices() error {
	for _, name := range IndexBands {
		if _, err := im.ComputeIndex(name); err != nil {
			return err
		}
	}

	return nil
}
