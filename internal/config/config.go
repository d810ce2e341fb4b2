package config

import (
	"os"
	"strconv"

	"rarscale/domain/rar"
	"rarscale/internal/errors"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Analysis AnalysisConfig
	Export   ExportConfig
	Archive  ArchiveConfig
	LogLevel string
}

// AnalysisConfig holds the tunables of the fitting pipeline
type AnalysisConfig struct {
	ProfileName        string  // quality profile: strict, relaxed, minimal, maximal
	RadialBins         int     // number of radial zones per object, >= 2
	MinBinPoints       int     // per-zone point floor
	BootstrapResamples int     // 0 disables bootstrap
	Seed               int64   // seed for all resampling
	Workers            int64   // bounded per-object concurrency
	AlternativeRatio   float64 // target ratio of the scale-dependent hypothesis
	A0LowerBound       float64 // hard physical bounds on the fitted scale
	A0UpperBound       float64
}

// ExportConfig holds report output locations
type ExportConfig struct {
	CSVPath     string
	ExcelPath   string
	QualityPath string
}

// ArchiveConfig holds the optional Postgres run archive settings
type ArchiveConfig struct {
	DatabaseURL string // empty disables archiving
}

// Enabled reports whether run archiving is configured.
func (a ArchiveConfig) Enabled() bool {
	return a.DatabaseURL != ""
}

var knownProfiles = map[string]bool{
	"strict":  true,
	"relaxed": true,
	"minimal": true,
	"maximal": true,
}

// Load reads configuration from the environment (and .env when present)
// and validates it.
func Load() (*Config, error) {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	config := &Config{
		Analysis: AnalysisConfig{
			ProfileName:        getEnvOrDefault("QUALITY_PROFILE", "relaxed"),
			RadialBins:         getEnvIntOrDefault("RADIAL_BINS", 2),
			MinBinPoints:       getEnvIntOrDefault("MIN_BIN_POINTS", 3),
			BootstrapResamples: getEnvIntOrDefault("BOOTSTRAP_RESAMPLES", 0),
			Seed:               int64(getEnvIntOrDefault("RANDOM_SEED", 42)),
			Workers:            int64(getEnvIntOrDefault("ANALYSIS_WORKERS", 4)),
			AlternativeRatio:   getEnvFloatOrDefault("ALTERNATIVE_RATIO", 1.12),
			A0LowerBound:       getEnvFloatOrDefault("A0_LOWER_BOUND", rar.A0LowerBound),
			A0UpperBound:       getEnvFloatOrDefault("A0_UPPER_BOUND", rar.A0UpperBound),
		},
		Export: ExportConfig{
			CSVPath:     getEnvOrDefault("REPORT_CSV", "results.csv"),
			ExcelPath:   getEnvOrDefault("REPORT_XLSX", ""),
			QualityPath: getEnvOrDefault("QUALITY_REPORT_CSV", ""),
		},
		Archive: ArchiveConfig{
			DatabaseURL: getEnvOrDefault("DATABASE_URL", ""),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validate(c *Config) error {
	if !knownProfiles[c.Analysis.ProfileName] {
		return errors.ConfigurationError("unknown quality profile: " + c.Analysis.ProfileName)
	}
	if c.Analysis.RadialBins < 2 {
		return errors.ConfigurationError("RADIAL_BINS must be >= 2")
	}
	if c.Analysis.MinBinPoints < 3 {
		return errors.ConfigurationError("MIN_BIN_POINTS must be >= 3")
	}
	if c.Analysis.BootstrapResamples < 0 {
		return errors.ConfigurationError("BOOTSTRAP_RESAMPLES must not be negative")
	}
	if c.Analysis.Workers < 1 {
		return errors.ConfigurationError("ANALYSIS_WORKERS must be >= 1")
	}
	if c.Analysis.AlternativeRatio <= 1.0 {
		return errors.ConfigurationError("ALTERNATIVE_RATIO must exceed 1.0")
	}
	if c.Analysis.A0LowerBound <= 0 || c.Analysis.A0UpperBound <= c.Analysis.A0LowerBound {
		return errors.ConfigurationError("a0 bounds must satisfy 0 < lower < upper")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
