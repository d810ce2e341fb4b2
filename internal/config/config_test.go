package config

import (
	"testing"

	"rarscale/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "relaxed", cfg.Analysis.ProfileName)
	assert.Equal(t, 2, cfg.Analysis.RadialBins)
	assert.Equal(t, 3, cfg.Analysis.MinBinPoints)
	assert.Equal(t, int64(42), cfg.Analysis.Seed)
	assert.Equal(t, 1.12, cfg.Analysis.AlternativeRatio)
	assert.Equal(t, 1e-12, cfg.Analysis.A0LowerBound)
	assert.Equal(t, 1e-8, cfg.Analysis.A0UpperBound)
	assert.False(t, cfg.Archive.Enabled())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("QUALITY_PROFILE", "strict")
	t.Setenv("RADIAL_BINS", "3")
	t.Setenv("BOOTSTRAP_RESAMPLES", "200")
	t.Setenv("DATABASE_URL", "postgres://localhost/rarscale")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "strict", cfg.Analysis.ProfileName)
	assert.Equal(t, 3, cfg.Analysis.RadialBins)
	assert.Equal(t, 200, cfg.Analysis.BootstrapResamples)
	assert.True(t, cfg.Archive.Enabled())
}

func TestLoadRejectsUnknownProfile(t *testing.T) {
	t.Setenv("QUALITY_PROFILE", "lenient")
	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfiguration, errors.GetCode(err))
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"RADIAL_BINS":       "1",
		"MIN_BIN_POINTS":    "2",
		"ANALYSIS_WORKERS":  "0",
		"ALTERNATIVE_RATIO": "0.9",
		"A0_LOWER_BOUND":    "-1e-12",
		"A0_UPPER_BOUND":    "1e-13",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
