package fitting

import (
	"math"
	"testing"

	"rarscale/domain/rar"
	"rarscale/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFitter() *Fitter {
	return NewFitter(FitterConfig{}, logging.New(logging.LevelError))
}

// syntheticPoints generates (g_bar, g_obs, g_obs_err) triples lying
// exactly on the model curve for the given a0.
func syntheticPoints(a0 float64, n int) (gBar, gObs, gObsErr []float64) {
	gBar = make([]float64, n)
	gObs = make([]float64, n)
	gObsErr = make([]float64, n)
	logLo, logHi := -12.0, -9.0
	for i := 0; i < n; i++ {
		g := math.Pow(10, logLo+(logHi-logLo)*float64(i)/float64(n-1))
		gBar[i] = g
		gObs[i] = Model(g, a0)
		gObsErr[i] = 0.05 * gObs[i]
	}
	return gBar, gObs, gObsErr
}

func TestFitRecoversKnownA0(t *testing.T) {
	for _, trueA0 := range []float64{5e-11, 1.2e-10, 4e-10} {
		gBar, gObs, gObsErr := syntheticPoints(trueA0, 25)
		result := testFitter().Fit(gBar, gObs, gObsErr)

		require.True(t, result.Success, "fit failed: %s", result.FailureReason)
		assert.InEpsilon(t, trueA0, result.A0, 0.01, "a0 recovery beyond 1%% for true=%g", trueA0)
		assert.Equal(t, 25, result.NPoints)
		assert.Less(t, result.ChiSquareRed, 0.1, "noiseless data should fit nearly perfectly")
		assert.True(t, result.A0Err > 0)
	}
}

func TestFitRefinesBeyondGridResolution(t *testing.T) {
	// A true a0 placed between grid nodes: the 20-point coarse grid
	// alone misses it by ~0.1 dex (over 20% in linear a0), so sub-1%
	// recovery requires the local refinement to actually run.
	trueA0 := 1.7e-10
	gBar, gObs, gObsErr := syntheticPoints(trueA0, 30)
	result := testFitter().Fit(gBar, gObs, gObsErr)
	require.True(t, result.Success, result.FailureReason)
	assert.InEpsilon(t, trueA0, result.A0, 0.01)
}

func TestFitInsufficientData(t *testing.T) {
	result := testFitter().Fit([]float64{1e-10, 2e-10}, []float64{2e-10, 3e-10}, []float64{1e-11, 1e-11})
	assert.False(t, result.Success)
	assert.Contains(t, result.FailureReason, "DATA_ERROR")
}

func TestFitDropsInvalidPairs(t *testing.T) {
	gBar, gObs, gObsErr := syntheticPoints(rar.A0Reference, 10)
	gBar = append(gBar, math.NaN(), -1e-10, 1e-10)
	gObs = append(gObs, 1e-10, 1e-10, math.Inf(1))
	gObsErr = append(gObsErr, 1e-11, 1e-11, 1e-11)

	result := testFitter().Fit(gBar, gObs, gObsErr)
	require.True(t, result.Success, result.FailureReason)
	assert.Equal(t, 10, result.NPoints)
}

func TestFitSubstitutesMissingErrors(t *testing.T) {
	gBar, gObs, _ := syntheticPoints(rar.A0Reference, 12)
	result := testFitter().Fit(gBar, gObs, nil)
	require.True(t, result.Success, result.FailureReason)
	assert.InEpsilon(t, rar.A0Reference, result.A0, 0.01)
}

func TestFitRespectsBounds(t *testing.T) {
	// Data generated well outside the configured bounds must still land
	// inside them.
	gBar, gObs, gObsErr := syntheticPoints(1.2e-10, 20)
	f := NewFitter(FitterConfig{A0LowerBound: 1e-12, A0UpperBound: 1e-11}, logging.New(logging.LevelError))
	result := f.Fit(gBar, gObs, gObsErr)
	require.True(t, result.Success, result.FailureReason)
	assert.LessOrEqual(t, result.A0, 1e-11*(1+1e-9))
	assert.GreaterOrEqual(t, result.A0, 1e-12*(1-1e-9))
}

func TestFitErrorScalesWithNoiseWeight(t *testing.T) {
	// Same curve, inflated reported uncertainties: the parameter error
	// must grow, everything else staying equal.
	gBar, gObs, gObsErr := syntheticPoints(rar.A0Reference, 25)
	tight := testFitter().Fit(gBar, gObs, gObsErr)

	loose := make([]float64, len(gObsErr))
	for i, e := range gObsErr {
		loose[i] = 4 * e
	}
	wide := testFitter().Fit(gBar, gObs, loose)

	require.True(t, tight.Success && wide.Success)
	assert.Greater(t, wide.A0Err, tight.A0Err)
}
