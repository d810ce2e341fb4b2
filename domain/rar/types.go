package rar

import (
	"fmt"
	"math"
)

// Sample is one radial measurement of a rotation curve. It is produced by
// the loader and treated as read-only everywhere downstream.
type Sample struct {
	RadiusKpc     float64 `json:"radius_kpc"`     // > 0
	VObs          float64 `json:"v_obs"`          // observed circular velocity, km/s, > 0
	VObsErr       float64 `json:"v_obs_err"`      // 1-sigma uncertainty on VObs, >= 0
	VGas          float64 `json:"v_gas"`          // gas contribution, km/s
	VDisk         float64 `json:"v_disk"`         // stellar disk contribution, km/s
	VBulge        float64 `json:"v_bulge"`        // bulge contribution, km/s
}

// Valid reports whether the sample satisfies the basic input contract.
func (s Sample) Valid() bool {
	return s.RadiusKpc > 0 && s.VObs > 0 && s.VObsErr >= 0 &&
		isFinite(s.RadiusKpc, s.VObs, s.VObsErr, s.VGas, s.VDisk, s.VBulge)
}

// ObjectSamples is one catalog object's full measurement set as produced
// by the loader.
type ObjectSamples struct {
	Name       string     `json:"name"`
	Morphology Morphology `json:"morphology"`
	Samples    []Sample   `json:"samples"`
}

// DerivedPoint is a (predicted, observed) acceleration pair computed from
// one Sample. Transient: recomputed per analysis, never persisted.
type DerivedPoint struct {
	GBar    float64 // baryonic (predicted) acceleration, m/s^2
	GObs    float64 // observed acceleration, m/s^2
	GObsErr float64 // propagated uncertainty on GObs, m/s^2
}

// FitResult is the outcome of one scale-parameter fit. Immutable after
// creation.
type FitResult struct {
	A0            float64 `json:"a0"`
	A0Err         float64 `json:"a0_err"` // +Inf when the curvature estimate degenerates
	ChiSquare     float64 `json:"chi_square"`
	ChiSquareRed  float64 `json:"chi_square_reduced"`
	NPoints       int     `json:"n_points"`
	Success       bool    `json:"success"`
	FailureReason string  `json:"failure_reason,omitempty"`
}

// BootstrapResult summarizes the a0 distribution over resampled fits.
type BootstrapResult struct {
	A0Mean        float64 `json:"a0_mean"`
	A0Median      float64 `json:"a0_median"`
	A0Std         float64 `json:"a0_std"`
	A0Lower       float64 `json:"a0_lower"` // 16th percentile
	A0Upper       float64 `json:"a0_upper"` // 84th percentile
	NConverged    int     `json:"n_converged"`
	Success       bool    `json:"success"`
	FailureReason string  `json:"failure_reason,omitempty"`
}

// RadialBin is one fitted radial zone of a single object.
type RadialBin struct {
	Index   int       `json:"index"`
	RLower  float64   `json:"r_lower"`
	RUpper  float64   `json:"r_upper"`
	NPoints int       `json:"n_points"`
	Fit     FitResult `json:"fit"`
}

// InterpretationTier grades the per-object significance of the
// inner/outer scale-parameter ratio.
type InterpretationTier string

const (
	TierStrong             InterpretationTier = "strong"
	TierSignificant        InterpretationTier = "significant"
	TierMarginal           InterpretationTier = "marginal"
	TierSlight             InterpretationTier = "slight"
	TierBaselineConsistent InterpretationTier = "baseline-consistent"

	// TierIndeterminate marks ratios whose propagated error is infinite:
	// the significance is unmeasurable, which is not the same as a
	// measured null result.
	TierIndeterminate InterpretationTier = "indeterminate"
)

// Morphology is a coarse object-shape classification used to stratify
// ensemble results.
type Morphology string

const (
	MorphologyDwarf   Morphology = "dwarf"
	MorphologySpiral  Morphology = "spiral"
	MorphologyUnknown Morphology = "unknown"
)

// ObjectRecord holds the complete per-object analysis outcome.
type ObjectRecord struct {
	Name       string             `json:"name"`
	Morphology Morphology         `json:"morphology"`
	NPoints    int                `json:"n_points"`
	RadiusMin  float64            `json:"radius_min"`
	RadiusMax  float64            `json:"radius_max"`
	Bins       []RadialBin        `json:"bins"`
	Ratio      float64            `json:"ratio"`
	RatioErr   float64            `json:"ratio_err"`
	ZScore     float64            `json:"z_score"`
	PValue     float64            `json:"p_value"`
	Tier       InterpretationTier `json:"interpretation_tier"`
	Success    bool               `json:"success"`
	Reason     string             `json:"reason,omitempty"`

	// Bootstrap is filled only when resampling is enabled for the run.
	Bootstrap *BootstrapResult `json:"bootstrap,omitempty"`
}

// InnerBin returns the innermost radial zone.
func (o ObjectRecord) InnerBin() RadialBin {
	if len(o.Bins) == 0 {
		return RadialBin{}
	}
	return o.Bins[0]
}

// OuterBin returns the outermost radial zone.
func (o ObjectRecord) OuterBin() RadialBin {
	if len(o.Bins) == 0 {
		return RadialBin{}
	}
	return o.Bins[len(o.Bins)-1]
}

// HypothesisWinner names the ensemble-level verdict.
type HypothesisWinner string

const (
	WinnerScaleDependent HypothesisWinner = "SCALE_DEPENDENT"
	WinnerUniversal      HypothesisWinner = "UNIVERSAL"
	WinnerInconclusive   HypothesisWinner = "INCONCLUSIVE"
)

// ConfidenceLevel grades how firmly the ensemble verdict is held.
type ConfidenceLevel string

const (
	ConfidenceHigh     ConfidenceLevel = "HIGH"
	ConfidenceModerate ConfidenceLevel = "MODERATE"
	ConfidenceLow      ConfidenceLevel = "LOW"
)

// EnsembleSummary is the terminal verdict over a catalog of objects.
type EnsembleSummary struct {
	NObjects     int              `json:"n_objects"`
	MeanRatio    float64          `json:"mean_ratio"`
	StdRatio     float64          `json:"std_ratio"`
	SemRatio     float64          `json:"sem_ratio"`
	MeanZ        float64          `json:"mean_z"`
	CombinedZ    float64          `json:"combined_z"`
	CombinedP    float64          `json:"combined_p"`
	N1Sigma      int              `json:"n_1sigma"`
	N2Sigma      int              `json:"n_2sigma"`
	TStatBase    float64          `json:"t_stat_baseline"`
	PValueBase   float64          `json:"p_value_baseline"`
	TStatAlt     float64          `json:"t_stat_alternative"`
	PValueAlt    float64          `json:"p_value_alternative"`
	Winner       HypothesisWinner `json:"winner"`
	Confidence   ConfidenceLevel  `json:"confidence"`
	Conclusion   string           `json:"conclusion"`
	Success      bool             `json:"success"`
	Reason       string           `json:"reason,omitempty"`
}

// QualityProfile is a named set of admission thresholds. Immutable after
// construction; profiles are strictly nested from strict to maximal.
type QualityProfile struct {
	Name                  string  `json:"name"`
	MinPoints             int     `json:"min_points"`
	MinRadialSpanKpc      float64 `json:"min_radial_span_kpc"`
	MaxInnerRadiusKpc     float64 `json:"max_inner_radius_kpc"`
	MinOuterRadiusKpc     float64 `json:"min_outer_radius_kpc"`
	MaxRelVelocityErr     float64 `json:"max_rel_velocity_err"`
	PlausibilityTolerance float64 `json:"plausibility_tolerance"` // 0 disables the check
}

// CheckPlausibility reports whether the profile enforces the
// observed-vs-predicted acceleration sanity check.
func (p QualityProfile) CheckPlausibility() bool {
	return p.PlausibilityTolerance > 0
}

func (p QualityProfile) String() string {
	return fmt.Sprintf("QualityProfile(%s)", p.Name)
}

func isFinite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
