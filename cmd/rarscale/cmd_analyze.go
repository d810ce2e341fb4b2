package main

import (
	"fmt"

	"rarscale/adapters/export"
	"rarscale/adapters/postgres"
	"rarscale/adapters/sparc"
	"rarscale/app"
	"rarscale/domain/rar"
	"rarscale/internal/config"
	"rarscale/internal/logging"

	"github.com/spf13/cobra"
)

var analyzeFlags struct {
	manifest   string
	profile    string
	bins       int
	bootstrap  int
	seed       int64
	workers    int64
	csvPath    string
	excelPath  string
	archiveURL string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [data-dir]",
	Short: "Run the full pipeline over a rotation-curve catalog",
	Long: `Analyze every rotation-curve table in a directory (or the objects
named by a manifest), print the ensemble verdict, and optionally write
CSV/xlsx reports or archive the run in Postgres.

  rarscale analyze data/sparc
  rarscale analyze --manifest run.yaml --profile strict --csv out.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyzeCmd,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.manifest, "manifest", "", "YAML manifest naming the objects to analyze")
	f.StringVar(&analyzeFlags.profile, "profile", "", "Quality profile: strict, relaxed, minimal, maximal")
	f.IntVar(&analyzeFlags.bins, "bins", 0, "Number of radial zones per object")
	f.IntVar(&analyzeFlags.bootstrap, "bootstrap", 0, "Bootstrap resamples per object (0 disables)")
	f.Int64Var(&analyzeFlags.seed, "seed", 0, "Random seed for resampling")
	f.Int64Var(&analyzeFlags.workers, "workers", 0, "Concurrent object analyses")
	f.StringVar(&analyzeFlags.csvPath, "csv", "", "Write per-object results to this CSV file")
	f.StringVar(&analyzeFlags.excelPath, "xlsx", "", "Write the full run report to this xlsx workbook")
	f.StringVar(&analyzeFlags.archiveURL, "archive-url", "", "Postgres URL for run archiving (default: $DATABASE_URL)")
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyAnalyzeOverrides(cmd, cfg)

	log := logging.New(logging.ParseLevel(cfg.LogLevel))
	svc, err := app.NewCatalogService(cfg, log)
	if err != nil {
		return err
	}

	catalog, err := loadCatalog(args, analyzeFlags.manifest, log)
	if err != nil {
		return err
	}

	result, err := svc.Run(cmd.Context(), catalog)
	if err != nil {
		return err
	}

	printSummary(cmd, result)

	if cfg.Export.CSVPath != "" {
		if err := export.WriteRecordsCSV(cfg.Export.CSVPath, result.Records); err != nil {
			return err
		}
		cmd.Printf("results written to %s\n", cfg.Export.CSVPath)
	}
	if cfg.Export.QualityPath != "" {
		if err := export.WriteQualityCSV(cfg.Export.QualityPath, result.Quality); err != nil {
			return err
		}
		cmd.Printf("quality report written to %s\n", cfg.Export.QualityPath)
	}
	if cfg.Export.ExcelPath != "" {
		report := export.WorkbookReport{
			Records:      result.Records,
			Summary:      result.Summary,
			ByMorphology: result.ByMorphology,
			Quality:      result.Quality,
		}
		if err := export.WriteWorkbook(cfg.Export.ExcelPath, report); err != nil {
			return err
		}
		cmd.Printf("workbook written to %s\n", cfg.Export.ExcelPath)
	}

	if cfg.Archive.Enabled() {
		if err := archiveRun(cmd, cfg, result); err != nil {
			return err
		}
	}
	return nil
}

func applyAnalyzeOverrides(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("profile") {
		cfg.Analysis.ProfileName = analyzeFlags.profile
	}
	if f.Changed("bins") {
		cfg.Analysis.RadialBins = analyzeFlags.bins
	}
	if f.Changed("bootstrap") {
		cfg.Analysis.BootstrapResamples = analyzeFlags.bootstrap
	}
	if f.Changed("seed") {
		cfg.Analysis.Seed = analyzeFlags.seed
	}
	if f.Changed("workers") {
		cfg.Analysis.Workers = analyzeFlags.workers
	}
	if f.Changed("csv") {
		cfg.Export.CSVPath = analyzeFlags.csvPath
	}
	if f.Changed("xlsx") {
		cfg.Export.ExcelPath = analyzeFlags.excelPath
	}
	if f.Changed("archive-url") {
		cfg.Archive.DatabaseURL = analyzeFlags.archiveURL
	}
}

func loadCatalog(args []string, manifestPath string, log *logging.Logger) ([]rar.ObjectSamples, error) {
	loader := sparc.NewLoader(log.Named("sparc"))
	if manifestPath != "" {
		manifest, err := sparc.LoadManifest(manifestPath)
		if err != nil {
			return nil, err
		}
		return loader.LoadFromManifest(manifest)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("a data directory or --manifest is required")
	}
	return loader.LoadCatalog(args[0])
}

func printSummary(cmd *cobra.Command, result *app.RunResult) {
	s := result.Summary
	cmd.Printf("run %s: %d objects analyzed\n", result.RunID, len(result.Records))
	cmd.Printf("  mean ratio   %.4f +/- %.4f\n", s.MeanRatio, s.SemRatio)
	cmd.Printf("  combined z   %.2f (p = %.3g)\n", s.CombinedZ, s.CombinedP)
	cmd.Printf("  verdict      %s (%s confidence)\n", s.Winner, s.Confidence)
	cmd.Printf("  %s\n", s.Conclusion)
	for morph, ms := range result.ByMorphology {
		cmd.Printf("  %-8s n=%d mean ratio %.4f combined z %.2f\n",
			morph, ms.NObjects, ms.MeanRatio, ms.CombinedZ)
	}
}

func archiveRun(cmd *cobra.Command, cfg *config.Config, result *app.RunResult) error {
	repo, err := postgres.Connect(cfg.Archive.DatabaseURL)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.EnsureSchema(cmd.Context()); err != nil {
		return err
	}
	run := postgres.ArchivedRun{
		ID:          result.RunID,
		ProfileName: cfg.Analysis.ProfileName,
		RadialBins:  cfg.Analysis.RadialBins,
		Seed:        cfg.Analysis.Seed,
		Summary:     result.Summary,
	}
	if err := repo.SaveRun(cmd.Context(), run, result.Records); err != nil {
		return err
	}
	cmd.Printf("run archived as %s\n", result.RunID)
	return nil
}
