package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"time"

	"rarscale/domain/rar"
	"rarscale/internal/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// RunRepository archives completed analysis runs in PostgreSQL. One run
// row, one row per object record; re-archiving the same run id replaces
// the previous results.
type RunRepository struct {
	db *sqlx.DB
}

// Connect opens the archive database and verifies it is reachable.
func Connect(databaseURL string) (*RunRepository, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, errors.StoreError("connect to archive database", err)
	}
	db.SetMaxOpenConns(5)
	return &RunRepository{db: db}, nil
}

// NewRunRepository wraps an existing connection.
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Close releases the underlying connection pool.
func (r *RunRepository) Close() error {
	return r.db.Close()
}

// ArchivedRun is the persisted form of one run's terminal verdict.
type ArchivedRun struct {
	ID          uuid.UUID           `db:"id"`
	ProfileName string              `db:"profile_name"`
	RadialBins  int                 `db:"radial_bins"`
	Seed        int64               `db:"seed"`
	Summary     rar.EnsembleSummary `db:"-"`
	CreatedAt   time.Time           `db:"created_at"`
}

// SaveRun archives the run verdict and its per-object records in one
// transaction.
func (r *RunRepository) SaveRun(ctx context.Context, run ArchivedRun, records []rar.ObjectRecord) error {
	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return errors.StoreError("marshal run summary", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.StoreError("begin archive transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO analysis_runs (
			id, profile_name, radial_bins, seed, n_objects,
			mean_ratio, combined_z, winner, confidence, summary, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (id) DO UPDATE SET
			profile_name = EXCLUDED.profile_name,
			radial_bins = EXCLUDED.radial_bins,
			seed = EXCLUDED.seed,
			n_objects = EXCLUDED.n_objects,
			mean_ratio = EXCLUDED.mean_ratio,
			combined_z = EXCLUDED.combined_z,
			winner = EXCLUDED.winner,
			confidence = EXCLUDED.confidence,
			summary = EXCLUDED.summary`,
		run.ID, run.ProfileName, run.RadialBins, run.Seed, run.Summary.NObjects,
		run.Summary.MeanRatio, run.Summary.CombinedZ, string(run.Summary.Winner),
		string(run.Summary.Confidence), summaryJSON)
	if err != nil {
		return errors.StoreError("insert run", err)
	}

	// Replace rather than merge: a rerun under the same id supersedes
	// the old object set entirely.
	if _, err := tx.ExecContext(ctx, `DELETE FROM object_records WHERE run_id = $1`, run.ID); err != nil {
		return errors.StoreError("clear previous records", err)
	}

	for _, rec := range records {
		binsJSON, err := json.Marshal(encodeBins(rec.Bins))
		if err != nil {
			return errors.StoreError("marshal radial bins", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO object_records (
				run_id, name, morphology, n_points, ratio, ratio_err,
				z_score, p_value, tier, success, reason, bins
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			run.ID, rec.Name, string(rec.Morphology), rec.NPoints,
			rec.Ratio, nullableFloat(rec.RatioErr), rec.ZScore, rec.PValue,
			string(rec.Tier), rec.Success, rec.Reason, binsJSON)
		if err != nil {
			return errors.StoreError("insert object record", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.StoreError("commit archive transaction", err)
	}
	return nil
}

// GetRun retrieves an archived run verdict by id.
func (r *RunRepository) GetRun(ctx context.Context, id uuid.UUID) (*ArchivedRun, error) {
	var (
		run         ArchivedRun
		summaryJSON []byte
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, profile_name, radial_bins, seed, summary, created_at
		FROM analysis_runs
		WHERE id = $1`, id).Scan(
		&run.ID, &run.ProfileName, &run.RadialBins, &run.Seed, &summaryJSON, &run.CreatedAt)
	if err != nil {
		return nil, errors.StoreError("load run", err)
	}
	if err := json.Unmarshal(summaryJSON, &run.Summary); err != nil {
		return nil, errors.StoreError("unmarshal run summary", err)
	}
	return &run, nil
}

// GetRecords retrieves the per-object records of an archived run, in
// insertion order.
func (r *RunRepository) GetRecords(ctx context.Context, runID uuid.UUID) ([]rar.ObjectRecord, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT name, morphology, n_points, ratio, ratio_err,
		       z_score, p_value, tier, success, reason, bins
		FROM object_records
		WHERE run_id = $1
		ORDER BY id`, runID)
	if err != nil {
		return nil, errors.StoreError("load object records", err)
	}
	defer rows.Close()

	var records []rar.ObjectRecord
	for rows.Next() {
		var (
			rec      rar.ObjectRecord
			morph    string
			tier     string
			ratioErr sql.NullFloat64
			binsJSON []byte
		)
		if err := rows.Scan(&rec.Name, &morph, &rec.NPoints, &rec.Ratio, &ratioErr,
			&rec.ZScore, &rec.PValue, &tier, &rec.Success, &rec.Reason, &binsJSON); err != nil {
			return nil, errors.StoreError("scan object record", err)
		}
		rec.Morphology = rar.Morphology(morph)
		rec.Tier = rar.InterpretationTier(tier)
		rec.RatioErr = restoreFloat(ratioErr)
		if len(binsJSON) > 0 {
			var bins []archivedBin
			if err := json.Unmarshal(binsJSON, &bins); err != nil {
				return nil, errors.StoreError("unmarshal radial bins", err)
			}
			rec.Bins = decodeBins(bins)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// archivedBin is the persisted form of a RadialBin. JSON and Postgres
// both reject IEEE infinities, so the error fields go through a nullable
// encoding: a NULL error means the documented infinite-uncertainty
// outcome, restored as +Inf on load.
type archivedBin struct {
	Index   int         `json:"index"`
	RLower  float64     `json:"r_lower"`
	RUpper  float64     `json:"r_upper"`
	NPoints int         `json:"n_points"`
	Fit     archivedFit `json:"fit"`
}

type archivedFit struct {
	A0            float64  `json:"a0"`
	A0Err         *float64 `json:"a0_err"`
	ChiSquare     float64  `json:"chi_square"`
	ChiSquareRed  float64  `json:"chi_square_reduced"`
	NPoints       int      `json:"n_points"`
	Success       bool     `json:"success"`
	FailureReason string   `json:"failure_reason,omitempty"`
}

func encodeBins(bins []rar.RadialBin) []archivedBin {
	encoded := make([]archivedBin, len(bins))
	for i, b := range bins {
		encoded[i] = archivedBin{
			Index:   b.Index,
			RLower:  b.RLower,
			RUpper:  b.RUpper,
			NPoints: b.NPoints,
			Fit: archivedFit{
				A0:            b.Fit.A0,
				A0Err:         nullableFloat(b.Fit.A0Err),
				ChiSquare:     b.Fit.ChiSquare,
				ChiSquareRed:  b.Fit.ChiSquareRed,
				NPoints:       b.Fit.NPoints,
				Success:       b.Fit.Success,
				FailureReason: b.Fit.FailureReason,
			},
		}
	}
	return encoded
}

func decodeBins(bins []archivedBin) []rar.RadialBin {
	decoded := make([]rar.RadialBin, len(bins))
	for i, b := range bins {
		decoded[i] = rar.RadialBin{
			Index:   b.Index,
			RLower:  b.RLower,
			RUpper:  b.RUpper,
			NPoints: b.NPoints,
			Fit: rar.FitResult{
				A0:            b.Fit.A0,
				A0Err:         restoreFloatPtr(b.Fit.A0Err),
				ChiSquare:     b.Fit.ChiSquare,
				ChiSquareRed:  b.Fit.ChiSquareRed,
				NPoints:       b.Fit.NPoints,
				Success:       b.Fit.Success,
				FailureReason: b.Fit.FailureReason,
			},
		}
	}
	return decoded
}

func nullableFloat(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

func restoreFloat(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.Inf(1)
	}
	return v.Float64
}

func restoreFloatPtr(p *float64) float64 {
	if p == nil {
		return math.Inf(1)
	}
	return *p
}

// EnsureSchema creates the archive tables when they do not exist yet.
func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS analysis_runs (
			id UUID PRIMARY KEY,
			profile_name TEXT NOT NULL,
			radial_bins INT NOT NULL,
			seed BIGINT NOT NULL,
			n_objects INT NOT NULL,
			mean_ratio DOUBLE PRECISION NOT NULL,
			combined_z DOUBLE PRECISION NOT NULL,
			winner TEXT NOT NULL,
			confidence TEXT NOT NULL,
			summary JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS object_records (
			id BIGSERIAL PRIMARY KEY,
			run_id UUID NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			morphology TEXT NOT NULL,
			n_points INT NOT NULL,
			ratio DOUBLE PRECISION NOT NULL,
			ratio_err DOUBLE PRECISION,
			z_score DOUBLE PRECISION NOT NULL,
			p_value DOUBLE PRECISION NOT NULL,
			tier TEXT NOT NULL,
			success BOOLEAN NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			bins JSONB NOT NULL DEFAULT '[]'
		);
		CREATE INDEX IF NOT EXISTS idx_object_records_run ON object_records(run_id)`)
	if err != nil {
		return errors.StoreError("ensure archive schema", err)
	}
	return nil
}
