package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"rarscale/domain/rar"
	"rarscale/internal/quality"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRecords() []rar.ObjectRecord {
	return []rar.ObjectRecord{
		{
			Name:       "NGC3198",
			Morphology: rar.MorphologySpiral,
			NPoints:    24,
			RadiusMin:  0.5,
			RadiusMax:  30.0,
			Bins: []rar.RadialBin{
				{Index: 0, Fit: rar.FitResult{A0: 1.35e-10, A0Err: 6e-12, Success: true}},
				{Index: 1, Fit: rar.FitResult{A0: 1.21e-10, A0Err: 5e-12, Success: true}},
			},
			Ratio:    1.116,
			RatioErr: 0.07,
			ZScore:   1.65,
			PValue:   0.099,
			Tier:     rar.TierMarginal,
			Success:  true,
		},
		{
			Name:       "DDO154",
			Morphology: rar.MorphologyDwarf,
			Success:    false,
			Tier:       rar.TierIndeterminate,
			Reason:     "inner zone fit failed",
		},
	}
}

func TestWriteRecordsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.csv")
	require.NoError(t, WriteRecordsCSV(path, sampleRecords()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "name", rows[0][0])
	assert.Equal(t, "NGC3198", rows[1][0])
	assert.Equal(t, "1.116", rows[1][9])
	assert.Equal(t, "marginal", rows[1][13])
	assert.Equal(t, "false", rows[2][14])
	assert.Equal(t, "inner zone fit failed", rows[2][15])
}

func TestWriteQualityCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quality.csv")
	reports := []quality.Report{
		{Name: "NGC3198", Passes: true},
		{Name: "CamB", Passes: false, Reasons: []string{"too few points", "radial span too small"}},
	}
	require.NoError(t, WriteQualityCSV(path, reports))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "true", rows[1][1])
	assert.Equal(t, "too few points; radial span too small", rows[2][2])
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.xlsx")
	report := WorkbookReport{
		Records: sampleRecords(),
		Summary: rar.EnsembleSummary{
			NObjects:   1,
			MeanRatio:  1.116,
			CombinedZ:  1.65,
			Winner:     rar.WinnerInconclusive,
			Confidence: rar.ConfidenceLow,
			Conclusion: "inconclusive",
			Success:    true,
		},
		ByMorphology: map[rar.Morphology]rar.EnsembleSummary{
			rar.MorphologySpiral: {NObjects: 1, MeanRatio: 1.116, Success: true},
		},
		Quality: []quality.Report{{Name: "NGC3198", Passes: true}},
	}
	require.NoError(t, WriteWorkbook(path, report))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Records", "Summary", "Quality"}, f.GetSheetList())

	name, err := f.GetCellValue("Records", "A2")
	require.NoError(t, err)
	assert.Equal(t, "NGC3198", name)

	// Columns I and J count records whose z lies above the threshold.
	sigmaHeader, err := f.GetCellValue("Summary", "I1")
	require.NoError(t, err)
	assert.Equal(t, "Above 1 sigma", sigmaHeader)

	stratum, err := f.GetCellValue("Summary", "A3")
	require.NoError(t, err)
	assert.Equal(t, "spiral", stratum)

	winner, err := f.GetCellValue("Summary", "O2")
	require.NoError(t, err)
	assert.Equal(t, "INCONCLUSIVE", winner)
}
