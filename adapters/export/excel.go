package export

import (
	"fmt"

	"rarscale/domain/rar"
	"rarscale/internal/errors"
	"rarscale/internal/quality"

	"github.com/xuri/excelize/v2"
)

const (
	sheetRecords = "Records"
	sheetSummary = "Summary"
	sheetQuality = "Quality"
)

// WorkbookReport bundles everything one run produces, so a single file
// can be handed around after the run.
type WorkbookReport struct {
	Records      []rar.ObjectRecord
	Summary      rar.EnsembleSummary
	ByMorphology map[rar.Morphology]rar.EnsembleSummary
	Quality      []quality.Report
}

// WriteWorkbook writes the run report as an xlsx workbook with Records,
// Summary and Quality sheets.
func WriteWorkbook(path string, report WorkbookReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetRecords); err != nil {
		return errors.StoreError(path, err)
	}
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return errors.StoreError(path, err)
	}
	if _, err := f.NewSheet(sheetQuality); err != nil {
		return errors.StoreError(path, err)
	}

	if err := writeRecordsSheet(f, report.Records); err != nil {
		return errors.StoreError(path, err)
	}
	if err := writeSummarySheet(f, report.Summary, report.ByMorphology); err != nil {
		return errors.StoreError(path, err)
	}
	if err := writeQualitySheet(f, report.Quality); err != nil {
		return errors.StoreError(path, err)
	}

	if err := f.SaveAs(path); err != nil {
		return errors.StoreError(path, err)
	}
	return nil
}

func writeRecordsSheet(f *excelize.File, records []rar.ObjectRecord) error {
	header := []interface{}{
		"Name", "Morphology", "Points", "R min (kpc)", "R max (kpc)",
		"Inner a0", "Inner a0 err", "Outer a0", "Outer a0 err",
		"Ratio", "Ratio err", "Z", "p", "Tier", "Success", "Reason",
	}
	if err := setRow(f, sheetRecords, 1, header); err != nil {
		return err
	}
	for i, rec := range records {
		inner, outer := rec.InnerBin().Fit, rec.OuterBin().Fit
		row := []interface{}{
			rec.Name, string(rec.Morphology), rec.NPoints, rec.RadiusMin, rec.RadiusMax,
			inner.A0, inner.A0Err, outer.A0, outer.A0Err,
			rec.Ratio, rec.RatioErr, rec.ZScore, rec.PValue,
			string(rec.Tier), rec.Success, rec.Reason,
		}
		if err := setRow(f, sheetRecords, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, summary rar.EnsembleSummary, byMorph map[rar.Morphology]rar.EnsembleSummary) error {
	header := []interface{}{
		"Stratum", "Objects", "Mean ratio", "Std ratio", "SEM",
		"Mean Z", "Combined Z", "Combined p",
		"Above 1 sigma", "Above 2 sigma",
		"t (baseline)", "p (baseline)", "t (alternative)", "p (alternative)",
		"Winner", "Confidence", "Conclusion",
	}
	if err := setRow(f, sheetSummary, 1, header); err != nil {
		return err
	}
	if err := setRow(f, sheetSummary, 2, summaryRow("all", summary)); err != nil {
		return err
	}
	row := 3
	for _, morph := range []rar.Morphology{rar.MorphologySpiral, rar.MorphologyDwarf} {
		s, ok := byMorph[morph]
		if !ok {
			continue
		}
		if err := setRow(f, sheetSummary, row, summaryRow(string(morph), s)); err != nil {
			return err
		}
		row++
	}
	return nil
}

func summaryRow(stratum string, s rar.EnsembleSummary) []interface{} {
	return []interface{}{
		stratum, s.NObjects, s.MeanRatio, s.StdRatio, s.SemRatio,
		s.MeanZ, s.CombinedZ, s.CombinedP,
		s.N1Sigma, s.N2Sigma,
		s.TStatBase, s.PValueBase, s.TStatAlt, s.PValueAlt,
		string(s.Winner), string(s.Confidence), s.Conclusion,
	}
}

func writeQualitySheet(f *excelize.File, reports []quality.Report) error {
	if err := setRow(f, sheetQuality, 1, []interface{}{"Name", "Passes", "Reasons"}); err != nil {
		return err
	}
	for i, rep := range reports {
		reasons := ""
		for j, r := range rep.Reasons {
			if j > 0 {
				reasons += "; "
			}
			reasons += r
		}
		if err := setRow(f, sheetQuality, i+2, []interface{}{rep.Name, rep.Passes, reasons}); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	return f.SetSheetRow(sheet, cell, &values)
}
