package fitting

import (
	"math/rand"
	"testing"

	"rarscale/domain/rar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noisyPoints perturbs observed accelerations with seeded Gaussian noise.
func noisyPoints(a0 float64, n int, noiseFrac float64, seed int64) (gBar, gObs, gObsErr []float64) {
	gBar, gObs, gObsErr = syntheticPoints(a0, n)
	rng := rand.New(rand.NewSource(seed))
	for i := range gObs {
		gObs[i] *= 1 + rng.NormFloat64()*noiseFrac
		gObsErr[i] = noiseFrac * gObs[i]
	}
	return gBar, gObs, gObsErr
}

func TestBootstrapDeterministicUnderFixedSeed(t *testing.T) {
	gBar, gObs, gObsErr := noisyPoints(rar.A0Reference, 15, 0.05, 7)
	f := testFitter()

	first := f.FitWithBootstrap(gBar, gObs, gObsErr, 50, 42)
	second := f.FitWithBootstrap(gBar, gObs, gObsErr, 50, 42)

	require.True(t, first.Success)
	assert.Equal(t, first, second)
}

func TestBootstrapSummaryShape(t *testing.T) {
	gBar, gObs, gObsErr := noisyPoints(rar.A0Reference, 20, 0.05, 3)
	result := testFitter().FitWithBootstrap(gBar, gObs, gObsErr, 60, 42)

	require.True(t, result.Success, result.FailureReason)
	assert.Equal(t, 60, result.NConverged)
	assert.LessOrEqual(t, result.A0Lower, result.A0Median)
	assert.LessOrEqual(t, result.A0Median, result.A0Upper)
	assert.InEpsilon(t, rar.A0Reference, result.A0Mean, 0.25)
}

func TestBootstrapStdShrinksWithPointCount(t *testing.T) {
	// More points per object means each resample constrains a0 better;
	// the spread of resampled fits must come down. Approximate ordering,
	// not an exact rate.
	f := testFitter()

	gBarS, gObsS, gErrS := noisyPoints(rar.A0Reference, 8, 0.1, 11)
	small := f.FitWithBootstrap(gBarS, gObsS, gErrS, 80, 42)

	gBarL, gObsL, gErrL := noisyPoints(rar.A0Reference, 64, 0.1, 11)
	large := f.FitWithBootstrap(gBarL, gObsL, gErrL, 80, 42)

	require.True(t, small.Success && large.Success)
	assert.Less(t, large.A0Std, small.A0Std)
}

func TestBootstrapInsufficientData(t *testing.T) {
	result := testFitter().FitWithBootstrap([]float64{1e-10}, []float64{2e-10}, []float64{1e-11}, 10, 42)
	assert.False(t, result.Success)
	assert.Contains(t, result.FailureReason, "DATA_ERROR")
}
