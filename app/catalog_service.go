package app

import (
	"context"

	"rarscale/domain/rar"
	"rarscale/internal/config"
	"rarscale/internal/ensemble"
	"rarscale/internal/errors"
	"rarscale/internal/fitting"
	"rarscale/internal/logging"
	"rarscale/internal/quality"
	"rarscale/internal/radial"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// CatalogService runs the full analysis pipeline over a catalog:
// quality admission, per-object radial fitting, and the ensemble
// verdict. Objects are analyzed concurrently under a bounded worker
// budget.
type CatalogService struct {
	cfg      *config.Config
	gate     *quality.Gate
	analyzer *radial.Analyzer
	fitter   *fitting.Fitter
	interp   *ensemble.Interpreter
	log      *logging.Logger
}

// RunResult is everything one pipeline run produces.
type RunResult struct {
	RunID        uuid.UUID
	Records      []rar.ObjectRecord
	Summary      rar.EnsembleSummary
	ByMorphology map[rar.Morphology]rar.EnsembleSummary
	Quality      []quality.Report
}

// NewCatalogService wires the pipeline from configuration.
func NewCatalogService(cfg *config.Config, log *logging.Logger) (*CatalogService, error) {
	gate, err := quality.NewGate(cfg.Analysis.ProfileName, log)
	if err != nil {
		return nil, err
	}

	fitter := fitting.NewFitter(fitting.FitterConfig{
		A0LowerBound: cfg.Analysis.A0LowerBound,
		A0UpperBound: cfg.Analysis.A0UpperBound,
	}, log.Named("fitting"))
	analyzer := radial.NewAnalyzer(radial.AnalyzerConfig{
		RadialBins:   cfg.Analysis.RadialBins,
		MinBinPoints: cfg.Analysis.MinBinPoints,
	}, fitter, log.Named("radial"))
	interp := ensemble.NewInterpreter(cfg.Analysis.AlternativeRatio, log.Named("ensemble"))

	return &CatalogService{
		cfg:      cfg,
		gate:     gate,
		analyzer: analyzer,
		fitter:   fitter,
		interp:   interp,
		log:      log,
	}, nil
}

// Run analyzes the catalog end to end. Only admission and analysis can
// fail structurally; individual object failures are recorded, not
// raised.
func (s *CatalogService) Run(ctx context.Context, catalog []rar.ObjectSamples) (*RunResult, error) {
	if len(catalog) == 0 {
		return nil, errors.DataError("empty catalog")
	}

	reports := s.gate.ReportCatalog(catalog)
	admitted := s.gate.AdmitCatalog(catalog)
	s.log.Info("quality gate admitted %d/%d objects under profile %s",
		len(admitted), len(catalog), s.cfg.Analysis.ProfileName)
	if len(admitted) == 0 {
		return nil, errors.DataError("no objects passed the quality gate")
	}

	records, err := s.analyzeAll(ctx, admitted)
	if err != nil {
		return nil, err
	}

	summary := s.interp.Interpret(records)
	byMorph := s.interp.SummarizeByMorphology(records)

	return &RunResult{
		RunID:        uuid.New(),
		Records:      records,
		Summary:      summary,
		ByMorphology: byMorph,
		Quality:      reports,
	}, nil
}

// analyzeAll fans the admitted objects across the worker budget. Result
// order matches catalog order regardless of completion order.
func (s *CatalogService) analyzeAll(ctx context.Context, admitted []rar.ObjectSamples) ([]rar.ObjectRecord, error) {
	records := make([]rar.ObjectRecord, len(admitted))
	sem := semaphore.NewWeighted(s.cfg.Analysis.Workers)
	g, ctx := errgroup.WithContext(ctx)

	for i, obj := range admitted {
		i, obj := i, obj
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			rec := s.analyzer.Analyze(obj)
			if s.cfg.Analysis.BootstrapResamples > 0 {
				rec.Bootstrap = s.bootstrapObject(obj, int64(i))
			}
			records[i] = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "catalog analysis interrupted")
	}
	return records, nil
}

// bootstrapObject resamples the object's full curve. The per-object
// seed is derived from the run seed so reruns reproduce exactly while
// objects stay independent.
func (s *CatalogService) bootstrapObject(obj rar.ObjectSamples, index int64) *rar.BootstrapResult {
	points := rar.DerivePoints(obj.Samples)
	gBar := make([]float64, 0, len(points))
	gObs := make([]float64, 0, len(points))
	gObsErr := make([]float64, 0, len(points))
	for _, p := range points {
		if !p.Usable() {
			continue
		}
		gBar = append(gBar, p.GBar)
		gObs = append(gObs, p.GObs)
		gObsErr = append(gObsErr, p.GObsErr)
	}

	result := s.fitter.FitWithBootstrap(gBar, gObs, gObsErr,
		s.cfg.Analysis.BootstrapResamples, s.cfg.Analysis.Seed+index)
	return &result
}
