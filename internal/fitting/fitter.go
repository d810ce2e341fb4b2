package fitting

import (
	"math"

	"rarscale/domain/rar"
	"rarscale/internal/errors"
	"rarscale/internal/logging"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"
)

const (
	gridSamples   = 20
	curvatureStep = 1e-4
	maxIterations = 200
	minFitPoints  = 3
)

// FitterConfig tunes a Fitter. Zero values select the physical defaults.
type FitterConfig struct {
	A0LowerBound float64
	A0UpperBound float64
	Evaluator    Evaluator
}

// Fitter fits the scale parameter of the saturating relation to
// (predicted, observed) acceleration pairs. The relation is strongly
// nonlinear, so a coarse grid over log10(a0) seeds a bounded local
// refinement; a local optimizer started from an arbitrary point can land
// in a poor optimum.
type Fitter struct {
	logLower float64
	logUpper float64
	eval     Evaluator
	log      *logging.Logger
}

// NewFitter creates a fitter with the given config.
func NewFitter(cfg FitterConfig, log *logging.Logger) *Fitter {
	lo, hi := cfg.A0LowerBound, cfg.A0UpperBound
	if lo <= 0 {
		lo = rar.A0LowerBound
	}
	if hi <= 0 {
		hi = rar.A0UpperBound
	}
	eval := cfg.Evaluator
	if eval == nil {
		eval = CPUEvaluator{}
	}
	return &Fitter{
		logLower: math.Log10(lo),
		logUpper: math.Log10(hi),
		eval:     eval,
		log:      log.Named("fitter"),
	}
}

// Fit produces a FitResult for the given acceleration pairs. Failures are
// reported in the result, never panicked: a bad bin must not sink its
// siblings.
func (f *Fitter) Fit(gBar, gObs, gObsErr []float64) rar.FitResult {
	gBar, gObs, gObsErr = f.cleanPoints(gBar, gObs, gObsErr)
	n := len(gBar)
	if n < minFitPoints {
		return rar.FitResult{
			NPoints:       n,
			FailureReason: errors.DataError("insufficient valid data points").Describe(),
		}
	}

	chi2 := func(logA0 float64) float64 {
		a0 := math.Pow(10, f.clamp(logA0))
		model := f.eval.EvaluateBatch(gBar, a0)
		var sum float64
		for i := range gBar {
			r := (gObs[i] - model[i]) / gObsErr[i]
			sum += r * r
		}
		return sum
	}

	// Coarse scan over log10(a0) across the full physical bounds.
	bestLog, bestChi := f.logLower, math.Inf(1)
	step := (f.logUpper - f.logLower) / float64(gridSamples-1)
	for i := 0; i < gridSamples; i++ {
		trial := f.logLower + float64(i)*step
		if c := chi2(trial); c < bestChi {
			bestChi, bestLog = c, trial
		}
	}

	// Quasi-Newton refinement in log space from the best grid point. The
	// objective clamps into bounds, so the minimizer cannot escape them.
	// L-BFGS needs a gradient; the chi-square has none in closed form, so
	// it is estimated by finite differences.
	objective := func(x []float64) float64 { return chi2(x[0]) }
	problem := optimize.Problem{
		Func: objective,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, objective, x, nil)
		},
	}
	settings := &optimize.Settings{MajorIterations: maxIterations}
	logBest, chiBest := bestLog, bestChi
	result, err := optimize.Minimize(problem, []float64{bestLog}, settings, &optimize.LBFGS{})
	if err != nil || result == nil {
		// A stalled line search near a bound still leaves the grid
		// minimum as a finite, bounded answer; keep it.
		f.log.Debug("refinement stalled from grid point %.3f: %v", bestLog, err)
	} else if refined := f.clamp(result.X[0]); finite(refined) {
		if c := chi2(refined); finite(c) && c <= chiBest {
			logBest, chiBest = refined, c
		}
	}
	if !finite(logBest) || !finite(chiBest) {
		return rar.FitResult{
			NPoints:       n,
			FailureReason: errors.ConvergenceError("optimizer produced a non-finite optimum").Describe(),
		}
	}
	a0 := math.Pow(10, logBest)

	a0Err := f.curvatureError(chi2, logBest, a0)
	if math.IsInf(a0Err, 1) {
		f.log.Debug("degenerate curvature at log10(a0)=%.3f, error reported as infinite", logBest)
	}

	return rar.FitResult{
		A0:           a0,
		A0Err:        a0Err,
		ChiSquare:    chiBest,
		ChiSquareRed: chiBest / math.Max(float64(n-1), 1),
		NPoints:      n,
		Success:      true,
	}
}

// curvatureError converts the second derivative of chi-square at the
// optimum into a one-sigma error on a0. Non-positive curvature is a
// degenerate but non-fatal outcome, reported as an infinite error.
func (f *Fitter) curvatureError(chi2 func(float64) float64, logBest, a0 float64) float64 {
	h := curvatureStep
	c1 := chi2(logBest + h)
	c0 := chi2(logBest)
	cm1 := chi2(logBest - h)
	d2 := (c1 - 2*c0 + cm1) / (h * h)
	if d2 <= 0 || !finite(d2) {
		return math.Inf(1)
	}
	logErr := 1.0 / math.Sqrt(d2)
	// Delta(a0) = a0 * ln(10) * Delta(log10 a0)
	return a0 * math.Ln10 * logErr
}

// cleanPoints drops non-finite or non-positive pairs and substitutes a 5%
// floor for missing or non-positive observation errors.
func (f *Fitter) cleanPoints(gBar, gObs, gObsErr []float64) ([]float64, []float64, []float64) {
	cb := make([]float64, 0, len(gBar))
	co := make([]float64, 0, len(gBar))
	ce := make([]float64, 0, len(gBar))
	for i := range gBar {
		if i >= len(gObs) {
			break
		}
		if !(gBar[i] > 0 && gObs[i] > 0 && finite(gBar[i]) && finite(gObs[i])) {
			continue
		}
		err := 0.05 * gObs[i]
		if i < len(gObsErr) && gObsErr[i] > 0 && finite(gObsErr[i]) {
			err = gObsErr[i]
		}
		cb = append(cb, gBar[i])
		co = append(co, gObs[i])
		ce = append(ce, err)
	}
	return cb, co, ce
}

func (f *Fitter) clamp(logA0 float64) float64 {
	if logA0 < f.logLower {
		return f.logLower
	}
	if logA0 > f.logUpper {
		return f.logUpper
	}
	return logA0
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
