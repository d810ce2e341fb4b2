package fitting

import (
	"math/rand"

	"rarscale/domain/rar"
	"rarscale/internal/errors"

	"github.com/montanaflynn/stats"
)

// FitWithBootstrap estimates the a0 distribution by resampling the input
// with replacement nResamples times and fitting each resample
// independently. The seed fixes the draw order, so results are
// reproducible across runs and across parallel workers.
func (f *Fitter) FitWithBootstrap(gBar, gObs, gObsErr []float64, nResamples int, seed int64) rar.BootstrapResult {
	n := len(gBar)
	if n < minFitPoints {
		return rar.BootstrapResult{
			FailureReason: errors.DataError("insufficient valid data points").Describe(),
		}
	}

	rng := rand.New(rand.NewSource(seed))
	a0Samples := make([]float64, 0, nResamples)

	rb := make([]float64, n)
	ro := make([]float64, n)
	re := make([]float64, n)
	for i := 0; i < nResamples; i++ {
		for j := 0; j < n; j++ {
			k := rng.Intn(n)
			rb[j], ro[j], re[j] = gBar[k], gObs[k], gObsErr[k]
		}
		if fit := f.Fit(rb, ro, re); fit.Success {
			a0Samples = append(a0Samples, fit.A0)
		}
	}

	if len(a0Samples) == 0 {
		return rar.BootstrapResult{
			FailureReason: errors.ConvergenceError("all bootstrap fits failed").Describe(),
		}
	}

	mean, _ := stats.Mean(a0Samples)
	median, _ := stats.Median(a0Samples)
	std, _ := stats.StandardDeviation(a0Samples)
	lower, _ := stats.Percentile(a0Samples, 16)
	upper, _ := stats.Percentile(a0Samples, 84)

	return rar.BootstrapResult{
		A0Mean:     mean,
		A0Median:   median,
		A0Std:      std,
		A0Lower:    lower,
		A0Upper:    upper,
		NConverged: len(a0Samples),
		Success:    true,
	}
}
