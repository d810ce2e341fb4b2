package quality

import (
	"fmt"

	"rarscale/domain/rar"
	"rarscale/internal/logging"

	"github.com/montanaflynn/stats"
)

// Gate decides which catalog objects carry enough trustworthy data to
// analyze. Every check contributes its own reason on failure so a report
// can show exactly why an object was turned away.
type Gate struct {
	profile rar.QualityProfile
	log     *logging.Logger
}

// NewGate creates a gate for the named profile.
func NewGate(profileName string, log *logging.Logger) (*Gate, error) {
	profile, err := ProfileByName(profileName)
	if err != nil {
		return nil, err
	}
	return &Gate{profile: profile, log: log.Named("quality")}, nil
}

// Profile returns the gate's admission profile.
func (g *Gate) Profile() rar.QualityProfile {
	return g.profile
}

// Check runs every admission check against one object's sample set.
// passes is true iff no reason was recorded.
func (g *Gate) Check(samples []rar.Sample) (bool, []string) {
	var reasons []string
	c := g.profile

	if len(samples) == 0 {
		return false, []string{"no radial points"}
	}

	rMin, rMax := radialExtent(samples)

	if len(samples) < c.MinPoints {
		reasons = append(reasons, fmt.Sprintf("points(%d<%d)", len(samples), c.MinPoints))
	}
	if rMax-rMin < c.MinRadialSpanKpc {
		reasons = append(reasons, fmt.Sprintf("span(%.2f<%.2f)", rMax-rMin, c.MinRadialSpanKpc))
	}
	if rMin > c.MaxInnerRadiusKpc {
		reasons = append(reasons, fmt.Sprintf("inner_radius(%.2f>%.2f)", rMin, c.MaxInnerRadiusKpc))
	}
	if rMax < c.MinOuterRadiusKpc {
		reasons = append(reasons, fmt.Sprintf("outer_radius(%.2f<%.2f)", rMax, c.MinOuterRadiusKpc))
	}

	if reason, ok := g.checkVelocityErrors(samples); !ok {
		reasons = append(reasons, reason)
	}

	if c.CheckPlausibility() {
		if reason, ok := g.checkPlausibility(samples); !ok {
			reasons = append(reasons, reason)
		}
	}

	return len(reasons) == 0, reasons
}

// checkVelocityErrors enforces the median relative velocity error bound.
func (g *Gate) checkVelocityErrors(samples []rar.Sample) (string, bool) {
	relErrs := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s.VObs != 0 {
			relErrs = append(relErrs, s.VObsErr/s.VObs)
		}
	}
	if len(relErrs) == 0 {
		return "no usable velocity errors", false
	}
	median, err := stats.Median(relErrs)
	if err != nil {
		return "velocity error median failed", false
	}
	if median > g.profile.MaxRelVelocityErr {
		return fmt.Sprintf("velocity_err(%.3f>%.3f)", median, g.profile.MaxRelVelocityErr), false
	}
	return "", true
}

// checkPlausibility rejects objects where the observed acceleration falls
// materially below the predicted one at any point. The tolerance is the
// profile's plausibility factor.
func (g *Gate) checkPlausibility(samples []rar.Sample) (string, bool) {
	tol := g.profile.PlausibilityTolerance
	for _, s := range samples {
		p := s.Derive()
		if !p.Usable() {
			continue
		}
		if p.GObs < tol*p.GBar {
			return fmt.Sprintf("g_obs<%.1f*g_bar at r=%.2f", tol, s.RadiusKpc), false
		}
	}
	return "", true
}

// Clean drops malformed individual samples from a set, logging each drop.
// It never fails: a single bad row must not sink the object.
func (g *Gate) Clean(name string, samples []rar.Sample) []rar.Sample {
	cleaned := make([]rar.Sample, 0, len(samples))
	for i, s := range samples {
		if !s.Valid() {
			g.log.Debug("%s: dropping malformed sample %d (r=%g, v=%g)", name, i, s.RadiusKpc, s.VObs)
			continue
		}
		cleaned = append(cleaned, s)
	}
	return cleaned
}

// AdmitCatalog filters a catalog down to analyzable objects. Objects that
// fail are logged with their reasons and skipped; the batch never aborts.
func (g *Gate) AdmitCatalog(catalog []rar.ObjectSamples) []rar.ObjectSamples {
	admitted := make([]rar.ObjectSamples, 0, len(catalog))
	for _, obj := range catalog {
		cleaned := g.Clean(obj.Name, obj.Samples)
		passes, reasons := g.Check(cleaned)
		if !passes {
			g.log.Debug("%s rejected: %v", obj.Name, reasons)
			continue
		}
		admitted = append(admitted, rar.ObjectSamples{
			Name:       obj.Name,
			Morphology: obj.Morphology,
			Samples:    cleaned,
		})
	}
	g.log.Info("quality gate (%s): %d/%d objects admitted", g.profile.Name, len(admitted), len(catalog))
	return admitted
}

// Report is one row of a quality report.
type Report struct {
	Name    string   `json:"name"`
	Passes  bool     `json:"passes"`
	Reasons []string `json:"reasons,omitempty"`
}

// ReportCatalog evaluates every object without filtering, for quality
// report exports.
func (g *Gate) ReportCatalog(catalog []rar.ObjectSamples) []Report {
	reports := make([]Report, 0, len(catalog))
	for _, obj := range catalog {
		passes, reasons := g.Check(g.Clean(obj.Name, obj.Samples))
		reports = append(reports, Report{Name: obj.Name, Passes: passes, Reasons: reasons})
	}
	return reports
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
