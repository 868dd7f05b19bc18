package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chloriseye/raster"
)

func validConfig() *Config {
	return &Config{
		BandMap: map[string]string{
			"sur_refl_b01": raster.BandR,
			"sur_refl_b02": raster.BandNIR1,
			"sur_refl_b06": raster.BandSWIR1,
			"sur_refl_b07": raster.BandSWIR2,
		},
		QABand:        "StateQA",
		QABits:        []uint{2, 8, 9, 10, 12, 13, 15},
		NDVIThreshold: 0.2,
		StartDate:     time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2009, 12, 31, 0, 0, 0, 0, time.UTC),
		Order:         1,
		Dependent:     raster.BandNDVI,
	}
}

func TestConfig_Validate_OK(t *testing.T) {
	t.Parallel()

	require.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_ZeroOrderOK(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Order = 0

	assert.NoError(t, cfg.Validate(), "order 0 means pure linear detrending")
}

func TestConfig_Validate_EmptyBandMap(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.BandMap = nil

	assert.ErrorIs(t, cfg.Validate(), ErrUnknownBand)
}

func TestConfig_Validate_UnknownRenameTarget(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.BandMap["sur_refl_b03"] = "ULTRAVIOLET"

	assert.ErrorIs(t, cfg.Validate(), ErrUnknownBand)
}

func TestConfig_Validate_UnknownDependent(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Dependent = "EVI"

	assert.ErrorIs(t, cfg.Validate(), ErrUnknownBand)
}

func TestConfig_Validate_MissingQABand(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.QABand = ""

	assert.ErrorIs(t, cfg.Validate(), ErrUnknownBand)
}

func TestConfig_Validate_EmptyDateRange(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.EndDate = cfg.StartDate.AddDate(0, 0, -1)

	assert.ErrorIs(t, cfg.Validate(), ErrEmptyDateRange)
}

func TestConfig_Validate_NegativeOrder(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Order = -1

	assert.ErrorIs(t, cfg.Validate(), ErrNegativeOrder)
}

func TestConfig_EndYear(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2009, validConfig().EndYear())
}
