package radial

import (
	"fmt"
	"math"

	"rarscale/domain/rar"
	"rarscale/internal/fitting"
	"rarscale/internal/logging"

	"gonum.org/v1/gonum/stat/distuv"
)

// AnalyzerConfig tunes the zone partitioning.
type AnalyzerConfig struct {
	RadialBins   int // zones per object, >= 2
	MinBinPoints int // per-zone point floor, >= 3
}

// Analyzer partitions an object's samples into radial zones, fits the
// scale parameter per zone, and scores the inner/outer ratio.
type Analyzer struct {
	nBins        int
	minBinPoints int
	fitter       *fitting.Fitter
	log          *logging.Logger
}

// NewAnalyzer creates an analyzer. Bin counts below 2 and point floors
// below 3 are raised to those minimums.
func NewAnalyzer(cfg AnalyzerConfig, fitter *fitting.Fitter, log *logging.Logger) *Analyzer {
	nBins := cfg.RadialBins
	if nBins < 2 {
		nBins = 2
	}
	minPoints := cfg.MinBinPoints
	if minPoints < 3 {
		minPoints = 3
	}
	return &Analyzer{
		nBins:        nBins,
		minBinPoints: minPoints,
		fitter:       fitter,
		log:          log.Named("radial"),
	}
}

// Analyze produces the complete per-object record. Failures at any level
// are captured in the record, never raised.
func (a *Analyzer) Analyze(obj rar.ObjectSamples) rar.ObjectRecord {
	record := rar.ObjectRecord{
		Name:       obj.Name,
		Morphology: obj.Morphology,
		NPoints:    len(obj.Samples),
		Tier:       rar.TierIndeterminate,
	}
	if len(obj.Samples) == 0 {
		record.Reason = "no samples"
		return record
	}

	rMin, rMax := radialExtent(obj.Samples)
	record.RadiusMin, record.RadiusMax = rMin, rMax

	edges := binEdges(rMin, rMax, a.nBins)
	record.Bins = make([]rar.RadialBin, 0, a.nBins)
	for i := 0; i < a.nBins; i++ {
		bin := a.fitBin(obj.Samples, edges[i], edges[i+1], i)
		if !bin.Fit.Success {
			a.log.Debug("%s bin %d failed: %s", obj.Name, i, bin.Fit.FailureReason)
		}
		record.Bins = append(record.Bins, bin)
	}

	sd := ComputeScaleDependence(record.InnerBin(), record.OuterBin())
	record.Ratio = sd.Ratio
	record.RatioErr = sd.RatioErr
	record.ZScore = sd.ZScore
	record.PValue = sd.PValue
	record.Tier = sd.Tier
	record.Success = sd.Success
	record.Reason = sd.Reason
	return record
}

// fitBin selects the zone's points and delegates to the fitter. Zones are
// half-open except the outermost, which includes its upper edge.
func (a *Analyzer) fitBin(samples []rar.Sample, rLower, rUpper float64, index int) rar.RadialBin {
	last := index == a.nBins-1
	var selected []rar.Sample
	for _, s := range samples {
		if s.RadiusKpc >= rLower && (s.RadiusKpc < rUpper || (last && s.RadiusKpc <= rUpper)) {
			selected = append(selected, s)
		}
	}

	bin := rar.RadialBin{Index: index, RLower: rLower, RUpper: rUpper, NPoints: len(selected)}
	if len(selected) < a.minBinPoints {
		bin.Fit = rar.FitResult{
			NPoints:       len(selected),
			FailureReason: fmt.Sprintf("insufficient points in bin (%d<%d)", len(selected), a.minBinPoints),
		}
		return bin
	}

	points := rar.DerivePoints(selected)
	gBar := make([]float64, len(points))
	gObs := make([]float64, len(points))
	gErr := make([]float64, len(points))
	for i, p := range points {
		gBar[i], gObs[i], gErr[i] = p.GBar, p.GObs, p.GObsErr
	}
	bin.Fit = a.fitter.Fit(gBar, gObs, gErr)
	return bin
}

// ScaleDependence is the inner-vs-outer significance statistic.
type ScaleDependence struct {
	Ratio    float64
	RatioErr float64
	ZScore   float64
	PValue   float64
	Tier     rar.InterpretationTier
	Success  bool
	Reason   string
}

// ComputeScaleDependence scores the ratio of the inner zone's scale
// parameter to the outer zone's. An infinite propagated error means the
// significance is unmeasurable; that outcome keeps z=0 but is surfaced as
// the indeterminate tier rather than a measured null.
func ComputeScaleDependence(inner, outer rar.RadialBin) ScaleDependence {
	if !inner.Fit.Success || !outer.Fit.Success {
		return ScaleDependence{
			Tier:   rar.TierIndeterminate,
			PValue: 1,
			Reason: "one or both bins failed to fit",
		}
	}
	a0In, a0Out := inner.Fit.A0, outer.Fit.A0
	if a0In <= 0 || a0Out <= 0 {
		return ScaleDependence{
			Tier:   rar.TierIndeterminate,
			PValue: 1,
			Reason: "non-positive scale parameter",
		}
	}

	ratio := a0In / a0Out
	errIn, errOut := inner.Fit.A0Err, outer.Fit.A0Err

	sd := ScaleDependence{Ratio: ratio, Success: true}
	if finitePositive(errIn) && finitePositive(errOut) {
		relIn := errIn / a0In
		relOut := errOut / a0Out
		sd.RatioErr = ratio * math.Sqrt(relIn*relIn+relOut*relOut)
		if sd.RatioErr > 0 {
			sd.ZScore = (ratio - 1.0) / sd.RatioErr
		}
		sd.PValue = distuv.UnitNormal.Survival(sd.ZScore)
		sd.Tier = tierForZ(sd.ZScore)
	} else {
		sd.RatioErr = math.Inf(1)
		sd.ZScore = 0
		sd.PValue = 1
		sd.Tier = rar.TierIndeterminate
	}
	return sd
}

// tierForZ maps a z-score to its interpretation tier. The thresholds are
// fixed, not configurable.
func tierForZ(z float64) rar.InterpretationTier {
	switch {
	case z > 3:
		return rar.TierStrong
	case z > 2:
		return rar.TierSignificant
	case z > 1:
		return rar.TierMarginal
	case z > 0:
		return rar.TierSlight
	default:
		return rar.TierBaselineConsistent
	}
}

// binEdges partitions [rMin, rMax] into n equal-width zones.
func binEdges(rMin, rMax float64, n int) []float64 {
	edges := make([]float64, n+1)
	width := (rMax - rMin) / float64(n)
	for i := 0; i <= n; i++ {
		edges[i] = rMin + float64(i)*width
	}
	edges[n] = rMax
	return edges
}

func radialExtent(samples []rar.Sample) (rMin, rMax float64) {
	rMin, rMax = samples[0].RadiusKpc, samples[0].RadiusKpc
	for _, s := range samples[1:] {
		if s.RadiusKpc < rMin {
			rMin = s.RadiusKpc
		}
		if s.RadiusKpc > rMax {
			rMax = s.RadiusKpc
		}
	}
	return rMin, rMax
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
