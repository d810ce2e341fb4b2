package fitting

import (
	"math"
	"testing"

	"rarscale/domain/rar"

	"github.com/stretchr/testify/assert"
)

func TestModelBoostsObservedAcceleration(t *testing.T) {
	// The denominator is always below 1, so the model always predicts
	// g_obs >= g_bar.
	for _, g := range []float64{1e-13, 1e-11, 1e-10, 1e-9} {
		assert.Greater(t, Model(g, rar.A0Reference), g)
	}
}

func TestModelDeepNewtonianLimit(t *testing.T) {
	// For g >> a0 the correction vanishes and the model returns ~g.
	g := 1e-7
	out := Model(g, rar.A0Reference)
	assert.InEpsilon(t, g, out, 1e-6)
}

func TestModelMonotonicInA0(t *testing.T) {
	// For fixed g, increasing a0 strictly increases model(g,a0)/g. This
	// single-crossing behavior is what makes the coarse grid a safe seed.
	g := 5e-11
	prev := 0.0
	for logA0 := -12.0; logA0 <= -8.0; logA0 += 0.25 {
		ratio := Model(g, math.Pow(10, logA0)) / g
		assert.Greater(t, ratio, prev, "ratio must strictly increase at log10(a0)=%.2f", logA0)
		prev = ratio
	}
}

func TestModelExtremeRatioClamped(t *testing.T) {
	// Huge g/a0 must not overflow or produce a zero denominator.
	out := Model(1e-5, 1e-12)
	assert.False(t, math.IsNaN(out) || math.IsInf(out, 0))
	assert.InEpsilon(t, 1e-5, out, 1e-9)
}

func TestCPUEvaluatorMatchesScalarModel(t *testing.T) {
	gBar := []float64{1e-12, 1e-11, 1e-10, 1e-9}
	out := CPUEvaluator{}.EvaluateBatch(gBar, rar.A0Reference)
	for i, g := range gBar {
		assert.Equal(t, Model(g, rar.A0Reference), out[i])
	}
}
