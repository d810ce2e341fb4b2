package rar

import "math"

// Physical constants shared by the whole pipeline. AccelConversion turns
// (km/s)^2/kpc into m/s^2 and is declared exactly once; every acceleration
// in the system flows through it.
const (
	AccelConversion = 3.24077885e-14

	// Mass-to-light weights for the baryonic velocity decomposition
	// (3.6um reference values: disk 0.5, bulge 0.7).
	DiskWeight  = 0.5
	BulgeWeight = 0.7

	// A0Reference is the canonical scale parameter, used to seed fits.
	A0Reference = 1.2e-10

	// Hard physical bounds on the fitted scale parameter.
	A0LowerBound = 1e-12
	A0UpperBound = 1e-8
)

// Derive computes the acceleration pair for a single sample.
//
//	g_bar = (v_gas^2 + 0.5*v_disk^2 + 0.7*v_bulge^2) / r
//	g_obs = v_obs^2 / r
//	g_obs_err = 2*sqrt(g_obs)*v_err/sqrt(r)   (velocity-error propagation)
func (s Sample) Derive() DerivedPoint {
	vBarSq := s.VGas*s.VGas + DiskWeight*s.VDisk*s.VDisk + BulgeWeight*s.VBulge*s.VBulge
	gObs := s.VObs * s.VObs / s.RadiusKpc * AccelConversion
	gBar := vBarSq / s.RadiusKpc * AccelConversion
	gObsErr := 2 * math.Sqrt(gObs) * s.VObsErr / math.Sqrt(s.RadiusKpc) * AccelConversion
	return DerivedPoint{GBar: gBar, GObs: gObs, GObsErr: gObsErr}
}

// DerivePoints maps a sample set to acceleration space, dropping samples
// that violate the input contract.
func DerivePoints(samples []Sample) []DerivedPoint {
	points := make([]DerivedPoint, 0, len(samples))
	for _, s := range samples {
		if !s.Valid() {
			continue
		}
		points = append(points, s.Derive())
	}
	return points
}

// Usable reports whether the point may participate in a fit: strictly
// positive, finite accelerations on both axes.
func (d DerivedPoint) Usable() bool {
	return d.GBar > 0 && d.GObs > 0 && isFinite(d.GBar, d.GObs, d.GObsErr)
}
