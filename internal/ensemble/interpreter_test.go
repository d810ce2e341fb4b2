package ensemble

import (
	"testing"

	"rarscale/domain/rar"
	"rarscale/internal/logging"
	"rarscale/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInterpreter() *Interpreter {
	return NewInterpreter(1.12, logging.New(logging.LevelError))
}

func TestInterpretScaleDependentEnsemble(t *testing.T) {
	records := testkit.SyntheticRecords(100, 1.12, 0.06, 0.25, 42)
	summary := testInterpreter().Interpret(records)

	require.True(t, summary.Success)
	assert.Equal(t, 100, summary.NObjects)
	assert.Equal(t, rar.WinnerScaleDependent, summary.Winner)
	assert.Equal(t, rar.ConfidenceHigh, summary.Confidence)
	assert.Greater(t, summary.CombinedZ, 3.0)
	assert.InEpsilon(t, 1.12, summary.MeanRatio, 0.05)
}

func TestInterpretUniversalEnsemble(t *testing.T) {
	records := testkit.SyntheticRecords(100, 1.00, 0.05, 0.25, 42)
	summary := testInterpreter().Interpret(records)

	require.True(t, summary.Success)
	assert.Equal(t, rar.WinnerUniversal, summary.Winner)
	assert.Less(t, summary.MeanRatio, 1.02)
}

func TestInterpretBorderlineEnsembleIsInconclusive(t *testing.T) {
	// Mean ratio above the baseline cut but without ensemble
	// significance: neither hypothesis may claim it.
	records := testkit.SyntheticRecords(20, 1.03, 0.02, 1.5, 7)
	summary := testInterpreter().Interpret(records)

	require.True(t, summary.Success)
	assert.Equal(t, rar.WinnerInconclusive, summary.Winner)
	assert.Equal(t, rar.ConfidenceLow, summary.Confidence)
}

func TestInterpretEmptyInput(t *testing.T) {
	summary := testInterpreter().Interpret(nil)
	assert.False(t, summary.Success)
	assert.Equal(t, "no successful objects", summary.Reason)
	assert.Equal(t, rar.WinnerInconclusive, summary.Winner)
	assert.Equal(t, rar.ConfidenceLow, summary.Confidence)
}

func TestInterpretSkipsFailedRecords(t *testing.T) {
	records := testkit.SyntheticRecords(10, 1.12, 0.02, 0.25, 42)
	records = append(records, rar.ObjectRecord{Name: "FAIL", Success: false, Ratio: 99})

	summary := testInterpreter().Interpret(records)
	require.True(t, summary.Success)
	assert.Equal(t, 10, summary.NObjects)
}

func TestInterpretSigmaCounts(t *testing.T) {
	records := []rar.ObjectRecord{
		{Success: true, Ratio: 1.1, ZScore: 0.5},
		{Success: true, Ratio: 1.2, ZScore: 1.5},
		{Success: true, Ratio: 1.3, ZScore: 2.5},
		{Success: true, Ratio: 1.4, ZScore: 3.5},
	}
	summary := testInterpreter().Interpret(records)
	assert.Equal(t, 3, summary.N1Sigma)
	assert.Equal(t, 2, summary.N2Sigma)
}

func TestSummarizeByMorphologySkipsUnknown(t *testing.T) {
	var records []rar.ObjectRecord
	for i, morph := range []rar.Morphology{rar.MorphologySpiral, rar.MorphologyDwarf, rar.MorphologyUnknown} {
		for j := 0; j < 5; j++ {
			records = append(records, rar.ObjectRecord{
				Name:       string(morph) + string(rune('A'+j)),
				Morphology: morph,
				Ratio:      1.1 + float64(i)*0.01,
				ZScore:     1.0,
				Success:    true,
			})
		}
	}

	summaries := testInterpreter().SummarizeByMorphology(records)
	require.Len(t, summaries, 2)
	assert.Contains(t, summaries, rar.MorphologySpiral)
	assert.Contains(t, summaries, rar.MorphologyDwarf)
	assert.Equal(t, 5, summaries[rar.MorphologySpiral].NObjects)
}

func TestConclusionMentionsVerdict(t *testing.T) {
	records := testkit.SyntheticRecords(50, 1.12, 0.03, 0.25, 42)
	summary := testInterpreter().Interpret(records)
	assert.Contains(t, summary.Conclusion, string(summary.Winner))
	assert.Contains(t, summary.Conclusion, string(summary.Confidence))
}
