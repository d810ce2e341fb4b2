package postgres

import (
	"database/sql"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rarscale/domain/rar"
)

func TestArchivedBinsRoundTripInfiniteA0Err(t *testing.T) {
	bins := []rar.RadialBin{
		{
			Index:   0,
			RLower:  0,
			RUpper:  4.2,
			NPoints: 9,
			Fit: rar.FitResult{
				A0:           1.2e-10,
				A0Err:        math.Inf(1), // degenerate curvature
				ChiSquare:    3.4,
				ChiSquareRed: 0.425,
				NPoints:      9,
				Success:      true,
			},
		},
		{
			Index:   1,
			RLower:  4.2,
			RUpper:  9.8,
			NPoints: 11,
			Fit: rar.FitResult{
				A0:           1.3e-10,
				A0Err:        2.1e-11,
				ChiSquare:    8.0,
				ChiSquareRed: 0.8,
				NPoints:      11,
				Success:      true,
			},
		},
	}

	raw, err := json.Marshal(encodeBins(bins))
	require.NoError(t, err, "infinite a0_err must encode as null, not fail the marshal")

	var archived []archivedBin
	require.NoError(t, json.Unmarshal(raw, &archived))

	decoded := decodeBins(archived)
	require.Len(t, decoded, 2)
	assert.True(t, math.IsInf(decoded[0].Fit.A0Err, 1))
	assert.InDelta(t, 2.1e-11, decoded[1].Fit.A0Err, 1e-15)
	assert.Equal(t, bins[0].Fit.A0, decoded[0].Fit.A0)
	assert.Equal(t, bins[1].NPoints, decoded[1].NPoints)
}

func TestNullableFloat(t *testing.T) {
	assert.Nil(t, nullableFloat(math.Inf(1)))
	assert.Nil(t, nullableFloat(math.Inf(-1)))
	assert.Nil(t, nullableFloat(math.NaN()))

	v := nullableFloat(0.042)
	require.NotNil(t, v)
	assert.Equal(t, 0.042, *v)
}

func TestRestoreFloat(t *testing.T) {
	assert.True(t, math.IsInf(restoreFloat(sql.NullFloat64{}), 1))
	assert.Equal(t, 1.5, restoreFloat(sql.NullFloat64{Float64: 1.5, Valid: true}))
}
