package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/centinela/sentinel-backend/internal/domain/analysis"
	"github.com/centinela/sentinel-backend/internal/domain/audit"
	"github.com/centinela/sentinel-backend/internal/domain/errors"
	"github.com/centinela/sentinel-backend/internal/domain/evidence"
	"github.com/centinela/sentinel-backend/internal/metrics"
)

// service implements the Service interface
type service struct {
	repo    Repository
	auditor Auditor
	metrics *metrics.Registry
	logger  *slog.Logger

	criticalThreshold float64
}

// NewService creates the risk scoring service. A non-positive
// criticalThreshold falls back to the default.
func NewService(repo Repository, auditor Auditor, reg *metrics.Registry, logger *slog.Logger, criticalThreshold float64) Service {
	if criticalThreshold <= 0 {
		criticalThreshold = DefaultCriticalThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &service{
		repo:              repo,
		auditor:           auditor,
		metrics:           reg,
		logger:            logger,
		criticalThreshold: criticalThreshold,
	}
}

// Score runs the deterministic pipeline: normalize evidence, score the
// dimensions, apply context multipliers, aggregate, derive
// recommendations.
func (s *service) Score(input ScoreInput) analysis.ScoreResult {
	rec := evidence.Normalize(input.Evidence)
	factors := analysis.Context{Role: input.Role, DocumentType: input.DocumentType}
	return s.score(rec, factors)
}

func (s *service) score(rec evidence.Record, factors analysis.Context) analysis.ScoreResult {
	raw := analysis.ScoreDimensions(rec)
	adjusted := factors.Adjust(raw)
	overall, level, confidence := analysis.Aggregate(adjusted, rec.MarkedCount())
	critical := analysis.CriticalDimensions(adjusted, s.criticalThreshold)

	return analysis.ScoreResult{
		Overall:         overall,
		Level:           level,
		Confidence:      confidence,
		Dimensions:      adjusted,
		Critical:        critical,
		Recommendations: recommendationsFor(overall, level, critical),
		Marked:          rec.Marked(),
		ModelVersion:    ModelVersion,
	}
}

// Analyze scores a submission and persists the outcome. The registry
// upserts on the content fingerprint, so re-analyzing identical content
// replaces the previous outcome. The activity entry and any high-risk
// alert are written durably; their failures surface to the caller.
func (s *service) Analyze(ctx context.Context, req AnalyzeRequest) (*analysis.Record, error) {
	start := time.Now()

	if req.Actor == "" {
		return nil, errors.NewValidationError("MISSING_ACTOR", "analysis requires an acting user")
	}

	fp, err := analysis.ComputeFingerprint(req.Content)
	if err != nil {
		return nil, err
	}

	ev := evidence.Normalize(req.Evidence)
	factors := analysis.Context{Role: req.Role, DocumentType: req.DocumentType}
	result := s.score(ev, factors)

	rec, err := analysis.NewRecord(fp, req.Title, req.Actor, factors, ev, result)
	if err != nil {
		return nil, err
	}
	rec.DurationMS = time.Since(start).Milliseconds()

	if err := s.repo.Upsert(ctx, rec); err != nil {
		s.metrics.RecordPersistenceFailure(ctx, "analysis_upsert")
		return nil, errors.NewPersistenceError("analysis").WithCause(err)
	}

	entry, err := audit.NewActivityEntry(req.Actor, audit.ActivityAnalysisPerformed,
		fmt.Sprintf("scored %q as %s (%d/100)", req.Title, result.Level, result.Overall))
	if err != nil {
		return nil, err
	}
	entry.WithMetadata("analysis_id", rec.ID.String()).
		WithMetadata("fingerprint", fp.String()).
		WithDuration(time.Since(start))

	if err := s.auditor.RecordActivity(ctx, entry); err != nil {
		return nil, err
	}

	if result.Level == analysis.RiskLevelHigh {
		alert, err := audit.NewAlert(audit.AlertLevelHigh, "high_risk_analysis",
			fmt.Sprintf("analysis of %q scored %d/100", req.Title, result.Overall))
		if err != nil {
			return nil, err
		}
		alert.WithActor(req.Actor).WithResource("analysis:" + rec.ID.String())
		if _, err := s.auditor.RaiseAlert(ctx, alert); err != nil {
			return nil, err
		}
	}

	s.metrics.RecordAnalysis(ctx, string(result.Level), time.Since(start))
	s.logger.InfoContext(ctx, "analysis completed",
		slog.String("analysis_id", rec.ID.String()),
		slog.String("actor", req.Actor),
		slog.String("level", string(result.Level)),
		slog.Int("overall", result.Overall),
	)

	return rec, nil
}

// GetAnalysis retrieves a stored analysis by id.
func (s *service) GetAnalysis(ctx context.Context, id uuid.UUID) (*analysis.Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListAnalyses lists stored analyses, newest first.
func (s *service) ListAnalyses(ctx context.Context, filter analysis.ListFilter) ([]*analysis.Record, error) {
	return s.repo.List(ctx, filter)
}
