package database

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/centinela/sentinel-backend/internal/domain/analysis"
	"github.com/centinela/sentinel-backend/internal/domain/errors"
)

const defaultListLimit = 100

// AnalysisRepository implements the analysis registry on PostgreSQL. The
// unique index on document_fingerprint backs the upsert semantics.
type AnalysisRepository struct {
	db *pgxpool.Pool
}

// NewAnalysisRepository creates a PostgreSQL analysis repository.
func NewAnalysisRepository(db *pgxpool.Pool) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Upsert inserts the record or, when the fingerprint already exists,
// replaces the stored outcome in place. The stored row keeps its original
// id and created_at; rec is updated to match what was persisted.
func (r *AnalysisRepository) Upsert(ctx context.Context, rec *analysis.Record) error {
	query := `
		INSERT INTO analyses (
			id, document_fingerprint, title, actor, role, document_type,
			evidence, overall_score, risk_level, confidence, dimension_scores,
			critical_dimensions, recommendations, marked_indicators,
			model_version, duration_ms, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
		)
		ON CONFLICT (document_fingerprint)
		DO UPDATE SET
			title = EXCLUDED.title,
			actor = EXCLUDED.actor,
			role = EXCLUDED.role,
			document_type = EXCLUDED.document_type,
			evidence = EXCLUDED.evidence,
			overall_score = EXCLUDED.overall_score,
			risk_level = EXCLUDED.risk_level,
			confidence = EXCLUDED.confidence,
			dimension_scores = EXCLUDED.dimension_scores,
			critical_dimensions = EXCLUDED.critical_dimensions,
			recommendations = EXCLUDED.recommendations,
			marked_indicators = EXCLUDED.marked_indicators,
			model_version = EXCLUDED.model_version,
			duration_ms = EXCLUDED.duration_ms,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	evidenceJSON, err := json.Marshal(rec.Evidence)
	if err != nil {
		return errors.NewInternalError("failed to marshal evidence").WithCause(err)
	}
	dimensionsJSON, err := json.Marshal(rec.Result.Dimensions)
	if err != nil {
		return errors.NewInternalError("failed to marshal dimension scores").WithCause(err)
	}
	criticalJSON, err := json.Marshal(rec.Result.Critical)
	if err != nil {
		return errors.NewInternalError("failed to marshal critical dimensions").WithCause(err)
	}
	recommendationsJSON, err := json.Marshal(rec.Result.Recommendations)
	if err != nil {
		return errors.NewInternalError("failed to marshal recommendations").WithCause(err)
	}
	markedJSON, err := json.Marshal(rec.Result.Marked)
	if err != nil {
		return errors.NewInternalError("failed to marshal marked indicators").WithCause(err)
	}

	now := time.Now().UTC()
	row := r.db.QueryRow(ctx, query,
		rec.ID,
		rec.Fingerprint.String(),
		rec.Title,
		rec.Actor,
		string(rec.Context.Role),
		string(rec.Context.DocumentType),
		evidenceJSON,
		rec.Result.Overall,
		string(rec.Result.Level),
		rec.Result.Confidence,
		dimensionsJSON,
		criticalJSON,
		recommendationsJSON,
		markedJSON,
		rec.Result.ModelVersion,
		rec.DurationMS,
		rec.CreatedAt,
		now,
	)

	if err := row.Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return errors.NewInternalError("failed to upsert analysis").WithCause(err)
	}
	rec.UpdatedAt = now
	return nil
}

// GetByID retrieves an analysis by its identifier.
func (r *AnalysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*analysis.Record, error) {
	query := selectAnalysis + ` WHERE id = $1`
	return r.scanRecord(r.db.QueryRow(ctx, query, id))
}

// GetByFingerprint retrieves the analysis stored for a content fingerprint.
func (r *AnalysisRepository) GetByFingerprint(ctx context.Context, fp analysis.Fingerprint) (*analysis.Record, error) {
	query := selectAnalysis + ` WHERE document_fingerprint = $1`
	return r.scanRecord(r.db.QueryRow(ctx, query, fp.String()))
}

// List returns analyses matching the filter, most recently analyzed first.
// The window constrains updated_at, the time of the latest analysis of the
// content, so an upserted record falls in the window it was re-analyzed in.
func (r *AnalysisRepository) List(ctx context.Context, filter analysis.ListFilter) ([]*analysis.Record, error) {
	query := selectAnalysis + ` WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.Actor != "" {
		query += fmt.Sprintf(" AND actor = $%d", argIdx)
		args = append(args, filter.Actor)
		argIdx++
	}
	if !filter.Window.From.IsZero() {
		query += fmt.Sprintf(" AND updated_at >= $%d", argIdx)
		args = append(args, filter.Window.From)
		argIdx++
	}
	if !filter.Window.To.IsZero() {
		query += fmt.Sprintf(" AND updated_at <= $%d", argIdx)
		args = append(args, filter.Window.To)
		argIdx++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query += fmt.Sprintf(" ORDER BY updated_at DESC LIMIT $%d", argIdx)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternalError("failed to list analyses").WithCause(err)
	}
	defer rows.Close()

	var records []*analysis.Record
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternalError("failed to iterate analyses").WithCause(err)
	}
	return records, nil
}

// Summarize aggregates the window's analyses, windowed on updated_at like
// List. An empty window yields a zeroed summary.
func (r *AnalysisRepository) Summarize(ctx context.Context, window analysis.TimeWindow) (*analysis.Summary, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(AVG(overall_score), 0),
			COUNT(*) FILTER (WHERE risk_level = 'LOW'),
			COUNT(*) FILTER (WHERE risk_level = 'MEDIUM'),
			COUNT(*) FILTER (WHERE risk_level = 'HIGH')
		FROM analyses
		WHERE 1=1
	`
	args := []interface{}{}
	argIdx := 1

	if !window.From.IsZero() {
		query += fmt.Sprintf(" AND updated_at >= $%d", argIdx)
		args = append(args, window.From)
		argIdx++
	}
	if !window.To.IsZero() {
		query += fmt.Sprintf(" AND updated_at <= $%d", argIdx)
		args = append(args, window.To)
	}

	summary := &analysis.Summary{ByLevel: make(map[analysis.RiskLevel]int)}
	var low, medium, high int
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&summary.Total, &summary.MeanScore, &low, &medium, &high,
	)
	if err != nil {
		return nil, errors.NewInternalError("failed to summarize analyses").WithCause(err)
	}

	summary.ByLevel[analysis.RiskLevelLow] = low
	summary.ByLevel[analysis.RiskLevelMedium] = medium
	summary.ByLevel[analysis.RiskLevelHigh] = high
	return summary, nil
}

const selectAnalysis = `
	SELECT id, document_fingerprint, title, actor, role, document_type,
	       evidence, overall_score, risk_level, confidence, dimension_scores,
	       critical_dimensions, recommendations, marked_indicators,
	       model_version, duration_ms, created_at, updated_at
	FROM analyses`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *AnalysisRepository) scanRecord(row rowScanner) (*analysis.Record, error) {
	var (
		rec                 analysis.Record
		fingerprint         string
		role, docType       string
		level               string
		evidenceJSON        []byte
		dimensionsJSON      []byte
		criticalJSON        []byte
		recommendationsJSON []byte
		markedJSON          []byte
	)

	err := row.Scan(
		&rec.ID,
		&fingerprint,
		&rec.Title,
		&rec.Actor,
		&role,
		&docType,
		&evidenceJSON,
		&rec.Result.Overall,
		&level,
		&rec.Result.Confidence,
		&dimensionsJSON,
		&criticalJSON,
		&recommendationsJSON,
		&markedJSON,
		&rec.Result.ModelVersion,
		&rec.DurationMS,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.ErrAnalysisNotFound
		}
		return nil, errors.NewInternalError("failed to scan analysis").WithCause(err)
	}

	fp, err := analysis.NewFingerprint(fingerprint)
	if err != nil {
		return nil, errors.NewInternalError("stored fingerprint is invalid").WithCause(err)
	}
	rec.Fingerprint = fp
	rec.Context = analysis.Context{
		Role:         analysis.Role(role),
		DocumentType: analysis.DocumentType(docType),
	}
	rec.Result.Level = analysis.RiskLevel(level)

	if err := json.Unmarshal(evidenceJSON, &rec.Evidence); err != nil {
		return nil, errors.NewInternalError("failed to unmarshal evidence").WithCause(err)
	}
	if err := json.Unmarshal(dimensionsJSON, &rec.Result.Dimensions); err != nil {
		return nil, errors.NewInternalError("failed to unmarshal dimension scores").WithCause(err)
	}
	if err := json.Unmarshal(criticalJSON, &rec.Result.Critical); err != nil {
		return nil, errors.NewInternalError("failed to unmarshal critical dimensions").WithCause(err)
	}
	if err := json.Unmarshal(recommendationsJSON, &rec.Result.Recommendations); err != nil {
		return nil, errors.NewInternalError("failed to unmarshal recommendations").WithCause(err)
	}
	if err := json.Unmarshal(markedJSON, &rec.Result.Marked); err != nil {
		return nil, errors.NewInternalError("failed to unmarshal marked indicators").WithCause(err)
	}

	return &rec, nil
}
