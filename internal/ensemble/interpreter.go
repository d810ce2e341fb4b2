package ensemble

import (
	"fmt"
	"math"

	"rarscale/domain/rar"
	"rarscale/internal/logging"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Fixed verdict thresholds. The combined significance is a simplified
// meta-analysis heuristic (mean z scaled by sqrt(n)), kept deliberately:
// the verdict tiers are calibrated against it.
const (
	baselineRatio = 1.00

	alternativeRatioCut = 1.05
	alternativeZCut     = 2.0
	baselineRatioCut    = 1.02
	baselineZCut        = 1.0
	highConfidenceZ     = 3.0
)

// Interpreter aggregates per-object significances into the ensemble
// verdict between the scale-dependent alternative and the universal
// baseline.
type Interpreter struct {
	alternativeRatio float64
	log              *logging.Logger
}

// NewInterpreter creates an interpreter testing against the given
// alternative target ratio (e.g. 1.12).
func NewInterpreter(alternativeRatio float64, log *logging.Logger) *Interpreter {
	return &Interpreter{
		alternativeRatio: alternativeRatio,
		log:              log.Named("ensemble"),
	}
}

// Interpret combines per-object records into a summary verdict. An empty
// success set yields a structured failure summary, not an error.
func (it *Interpreter) Interpret(records []rar.ObjectRecord) rar.EnsembleSummary {
	var ratios, zScores []float64
	for _, r := range records {
		if r.Success {
			ratios = append(ratios, r.Ratio)
			zScores = append(zScores, r.ZScore)
		}
	}
	if len(ratios) == 0 {
		return rar.EnsembleSummary{
			Winner:     rar.WinnerInconclusive,
			Confidence: rar.ConfidenceLow,
			Reason:     "no successful objects",
			Conclusion: "no objects survived analysis; verdict unavailable",
		}
	}

	n := float64(len(ratios))
	meanRatio, _ := stats.Mean(ratios)
	stdRatio, _ := stats.StandardDeviation(ratios)
	semRatio := stdRatio / math.Sqrt(n)
	meanZ, _ := stats.Mean(zScores)

	// Approximate ensemble significance over independent per-object tests.
	combinedZ := meanZ * math.Sqrt(n)
	combinedP := distuv.UnitNormal.Survival(combinedZ)

	summary := rar.EnsembleSummary{
		NObjects:  len(ratios),
		MeanRatio: meanRatio,
		StdRatio:  stdRatio,
		SemRatio:  semRatio,
		MeanZ:     meanZ,
		CombinedZ: combinedZ,
		CombinedP: combinedP,
		Success:   true,
	}
	for _, z := range zScores {
		if z > 1.0 {
			summary.N1Sigma++
		}
		if z > 2.0 {
			summary.N2Sigma++
		}
	}

	// One-tailed point-hypothesis tests against the ensemble mean.
	if semRatio > 0 {
		summary.TStatBase = (meanRatio - baselineRatio) / semRatio
		summary.PValueBase = distuv.UnitNormal.Survival(summary.TStatBase)
		summary.TStatAlt = (meanRatio - it.alternativeRatio) / semRatio
		summary.PValueAlt = distuv.UnitNormal.CDF(summary.TStatAlt)
	} else {
		summary.PValueBase = 1
		summary.PValueAlt = 1
	}

	summary.Winner, summary.Confidence = classify(meanRatio, combinedZ)
	summary.Conclusion = fmt.Sprintf("%s (%s) - %.1f sigma ensemble significance over %d objects",
		summary.Winner, summary.Confidence, combinedZ, summary.NObjects)

	it.log.Info("verdict: %s", summary.Conclusion)
	return summary
}

// classify applies the fixed winner and confidence thresholds.
func classify(meanRatio, combinedZ float64) (rar.HypothesisWinner, rar.ConfidenceLevel) {
	switch {
	case meanRatio > alternativeRatioCut && combinedZ > alternativeZCut:
		if combinedZ > highConfidenceZ {
			return rar.WinnerScaleDependent, rar.ConfidenceHigh
		}
		return rar.WinnerScaleDependent, rar.ConfidenceModerate
	case meanRatio < baselineRatioCut && math.Abs(combinedZ) < baselineZCut:
		if math.Abs(combinedZ) > highConfidenceZ {
			return rar.WinnerUniversal, rar.ConfidenceHigh
		}
		return rar.WinnerUniversal, rar.ConfidenceModerate
	default:
		return rar.WinnerInconclusive, rar.ConfidenceLow
	}
}

// SummarizeByMorphology interprets each morphology class separately,
// skipping objects with unknown morphology.
func (it *Interpreter) SummarizeByMorphology(records []rar.ObjectRecord) map[rar.Morphology]rar.EnsembleSummary {
	grouped := make(map[rar.Morphology][]rar.ObjectRecord)
	for _, r := range records {
		if r.Morphology == rar.MorphologyUnknown || r.Morphology == "" {
			continue
		}
		grouped[r.Morphology] = append(grouped[r.Morphology], r)
	}

	summaries := make(map[rar.Morphology]rar.EnsembleSummary, len(grouped))
	for morph, group := range grouped {
		summaries[morph] = it.Interpret(group)
	}
	return summaries
}
