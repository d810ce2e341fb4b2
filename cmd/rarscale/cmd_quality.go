package main

import (
	"strings"

	"rarscale/adapters/export"
	"rarscale/internal/config"
	"rarscale/internal/logging"
	"rarscale/internal/quality"

	"github.com/spf13/cobra"
)

var qualityFlags struct {
	manifest string
	profile  string
	csvPath  string
}

var qualityCmd = &cobra.Command{
	Use:   "quality [data-dir]",
	Short: "Report which catalog objects pass the admission gate",
	Long: `Check every object against the quality profile without running any
fits, listing each rejection reason.

  rarscale quality data/sparc --profile strict
  rarscale quality data/sparc --csv quality.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQualityCmd,
}

func init() {
	f := qualityCmd.Flags()
	f.StringVar(&qualityFlags.manifest, "manifest", "", "YAML manifest naming the objects to check")
	f.StringVar(&qualityFlags.profile, "profile", "", "Quality profile: strict, relaxed, minimal, maximal")
	f.StringVar(&qualityFlags.csvPath, "csv", "", "Write the report to this CSV file")
}

func runQualityCmd(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("profile") {
		cfg.Analysis.ProfileName = qualityFlags.profile
	}

	log := logging.New(logging.ParseLevel(cfg.LogLevel))
	gate, err := quality.NewGate(cfg.Analysis.ProfileName, log)
	if err != nil {
		return err
	}

	catalog, err := loadCatalog(args, qualityFlags.manifest, log)
	if err != nil {
		return err
	}

	reports := gate.ReportCatalog(catalog)
	passed := 0
	for _, rep := range reports {
		if rep.Passes {
			passed++
			cmd.Printf("PASS %s\n", rep.Name)
			continue
		}
		cmd.Printf("FAIL %s: %s\n", rep.Name, strings.Join(rep.Reasons, "; "))
	}
	cmd.Printf("%d/%d objects pass profile %s\n", passed, len(reports), cfg.Analysis.ProfileName)

	if qualityFlags.csvPath != "" {
		if err := export.WriteQualityCSV(qualityFlags.csvPath, reports); err != nil {
			return err
		}
		cmd.Printf("report written to %s\n", qualityFlags.csvPath)
	}
	return nil
}
