package quality

import (
	"rarscale/domain/rar"
	"rarscale/internal/errors"
)

// Named admission profiles, tightest first. Each step loosens every
// threshold, so any sample set admitted by a profile is admitted by all
// looser ones.
var profiles = map[string]rar.QualityProfile{
	"strict": {
		Name:                  "STRICT",
		MinPoints:             8,
		MinRadialSpanKpc:      5.0,
		MaxInnerRadiusKpc:     1.0,
		MinOuterRadiusKpc:     10.0,
		MaxRelVelocityErr:     0.20,
		PlausibilityTolerance: 0.9,
	},
	"relaxed": {
		Name:                  "RELAXED",
		MinPoints:             6,
		MinRadialSpanKpc:      4.0,
		MaxInnerRadiusKpc:     2.0,
		MinOuterRadiusKpc:     8.0,
		MaxRelVelocityErr:     0.25,
		PlausibilityTolerance: 0.8,
	},
	"minimal": {
		Name:                  "MINIMAL",
		MinPoints:             5,
		MinRadialSpanKpc:      3.0,
		MaxInnerRadiusKpc:     3.0,
		MinOuterRadiusKpc:     6.0,
		MaxRelVelocityErr:     0.30,
		PlausibilityTolerance: 0.7,
	},
	// Accept anything with three points; plausibility is skipped.
	"maximal": {
		Name:                  "MAXIMAL",
		MinPoints:             3,
		MinRadialSpanKpc:      0.0,
		MaxInnerRadiusKpc:     100.0,
		MinOuterRadiusKpc:     0.0,
		MaxRelVelocityErr:     1.0,
		PlausibilityTolerance: 0,
	},
}

// ProfileByName resolves a profile name. Unknown names are a
// configuration error; the four names above are the whole surface.
func ProfileByName(name string) (rar.QualityProfile, error) {
	p, ok := profiles[name]
	if !ok {
		return rar.QualityProfile{}, errors.ConfigurationError("unknown quality profile: " + name)
	}
	return p, nil
}

// ProfileNames lists the recognized profile names, tightest first.
func ProfileNames() []string {
	return []string{"strict", "relaxed", "minimal", "maximal"}
}
