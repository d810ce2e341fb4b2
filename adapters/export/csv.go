package export

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"rarscale/domain/rar"
	"rarscale/internal/errors"
	"rarscale/internal/quality"
)

// WriteRecordsCSV writes one row per analyzed object: the inner/outer
// scale-parameter ratio, its significance, and the bin-level fits that
// produced it.
func WriteRecordsCSV(path string, records []rar.ObjectRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.StoreError(path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"name", "morphology", "n_points", "radius_min_kpc", "radius_max_kpc",
		"inner_a0", "inner_a0_err", "outer_a0", "outer_a0_err",
		"ratio", "ratio_err", "z_score", "p_value", "tier", "success", "reason",
	}
	if err := w.Write(header); err != nil {
		return errors.StoreError(path, err)
	}

	for _, rec := range records {
		inner, outer := rec.InnerBin().Fit, rec.OuterBin().Fit
		row := []string{
			rec.Name,
			string(rec.Morphology),
			strconv.Itoa(rec.NPoints),
			formatFloat(rec.RadiusMin),
			formatFloat(rec.RadiusMax),
			formatFloat(inner.A0),
			formatFloat(inner.A0Err),
			formatFloat(outer.A0),
			formatFloat(outer.A0Err),
			formatFloat(rec.Ratio),
			formatFloat(rec.RatioErr),
			formatFloat(rec.ZScore),
			formatFloat(rec.PValue),
			string(rec.Tier),
			strconv.FormatBool(rec.Success),
			rec.Reason,
		}
		if err := w.Write(row); err != nil {
			return errors.StoreError(path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errors.StoreError(path, err)
	}
	return nil
}

// WriteQualityCSV writes the admission report: one row per catalog
// object with its pass/fail status and the accumulated rejection reasons.
func WriteQualityCSV(path string, reports []quality.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.StoreError(path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"name", "passes", "reasons"}); err != nil {
		return errors.StoreError(path, err)
	}
	for _, rep := range reports {
		row := []string{rep.Name, strconv.FormatBool(rep.Passes), strings.Join(rep.Reasons, "; ")}
		if err := w.Write(row); err != nil {
			return errors.StoreError(path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errors.StoreError(path, err)
	}
	return nil
}

// formatFloat renders analysis values compactly; 'g' keeps the small
// acceleration magnitudes readable without padding.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
