package fitting

import "math"

// maxSqrtRatio caps g/a0 inside the model so exp(-sqrt(x)) cannot
// underflow into a zero denominator for extreme ratios.
const maxSqrtRatio = 1e3

// Evaluator computes the saturating relation for a batch of predicted
// accelerations. The default CPU implementation suffices everywhere; an
// accelerated one can be slotted in via FitterConfig without touching the
// fitting code.
type Evaluator interface {
	EvaluateBatch(gBar []float64, a0 float64) []float64
}

// Model maps a predicted acceleration to the modeled observed value:
//
//	g_obs = g / (1 - exp(-sqrt(g / a0)))
//
// Invalid intermediate values fall back to the input g, which keeps the
// deep-Newtonian limit (g >> a0, model → g) well behaved.
func Model(g, a0 float64) float64 {
	ratio := g / a0
	if ratio < 0 {
		ratio = 0
	} else if ratio > maxSqrtRatio {
		ratio = maxSqrtRatio
	}
	denom := 1 - math.Exp(-math.Sqrt(ratio))
	out := g / denom
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return g
	}
	return out
}

// CPUEvaluator is the default scalar implementation of Evaluator.
type CPUEvaluator struct{}

func (CPUEvaluator) EvaluateBatch(gBar []float64, a0 float64) []float64 {
	out := make([]float64, len(gBar))
	for i, g := range gBar {
		out[i] = Model(g, a0)
	}
	return out
}
