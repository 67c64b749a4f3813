package scoring

import (
	"context"

	"github.com/google/uuid"

	"github.com/centinela/sentinel-backend/internal/domain/analysis"
	"github.com/centinela/sentinel-backend/internal/domain/audit"
)

// Service is the risk scoring surface.
type Service interface {
	// Score runs the pure scoring pipeline. It never fails: any input
	// yields a result.
	Score(input ScoreInput) analysis.ScoreResult
	// Analyze scores a document, upserts the outcome by content
	// fingerprint and records the activity. Persistence failures
	// propagate.
	Analyze(ctx context.Context, req AnalyzeRequest) (*analysis.Record, error)
	// GetAnalysis retrieves a stored analysis by id.
	GetAnalysis(ctx context.Context, id uuid.UUID) (*analysis.Record, error)
	// ListAnalyses lists stored analyses, newest first.
	ListAnalyses(ctx context.Context, filter analysis.ListFilter) ([]*analysis.Record, error)
}

// Repository is the analysis registry the service persists to.
type Repository interface {
	Upsert(ctx context.Context, rec *analysis.Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*analysis.Record, error)
	GetByFingerprint(ctx context.Context, fp analysis.Fingerprint) (*analysis.Record, error)
	List(ctx context.Context, filter analysis.ListFilter) ([]*analysis.Record, error)
}

// Auditor records the durable audit trail of an analysis.
type Auditor interface {
	RecordActivity(ctx context.Context, entry *audit.ActivityEntry) error
	RaiseAlert(ctx context.Context, alert *audit.Alert) (*audit.Alert, error)
}
