package analytics

import (
	"context"

	"github.com/centinela/sentinel-backend/internal/domain/analysis"
	"github.com/centinela/sentinel-backend/internal/domain/audit"
)

// Service is the institutional reporting surface. All operations are
// read-only aggregations over the registry and the audit trail, except
// report generation, which leaves an activity entry of its own.
type Service interface {
	// Summary returns level counts and the mean score over a window,
	// served from the cache when fresh.
	Summary(ctx context.Context, window analysis.TimeWindow) (*analysis.Summary, error)
	// Breakdown slices the window's analyses by role and document type.
	Breakdown(ctx context.Context, window analysis.TimeWindow) (*Breakdown, error)
	// FrequentPatterns ranks indicators by how often they were marked.
	FrequentPatterns(ctx context.Context, window analysis.TimeWindow, limit int) ([]IndicatorFrequency, error)
	// AuditReport summarizes one actor's activity, analyses, sensitive
	// changes and score distribution.
	AuditReport(ctx context.Context, requestedBy, actor string, window analysis.TimeWindow) (*AuditReport, error)
	// InvalidateSummaries drops cached summaries after new analyses
	// land.
	InvalidateSummaries(ctx context.Context) error
}

// Registry is the slice of the analysis registry the aggregations read.
type Registry interface {
	List(ctx context.Context, filter analysis.ListFilter) ([]*analysis.Record, error)
	Summarize(ctx context.Context, window analysis.TimeWindow) (*analysis.Summary, error)
}

// AuditTrail is the slice of the audit stores the report reads.
type AuditTrail interface {
	Query(ctx context.Context, filter audit.ActivityFilter) ([]*audit.ActivityEntry, error)
	CountByActor(ctx context.Context, actor string) (int, error)
}

// ChangeTrail reads sensitive-change entries for the audit report.
type ChangeTrail interface {
	Query(ctx context.Context, filter audit.ChangeFilter) ([]*audit.SensitiveChangeEntry, error)
}

// ActivityRecorder leaves the report-generated entry in the activity log.
type ActivityRecorder interface {
	RecordActivity(ctx context.Context, entry *audit.ActivityEntry) error
}

// SummaryCache stores aggregate summaries keyed by window.
type SummaryCache interface {
	GetSummary(ctx context.Context, key string) (*analysis.Summary, error)
	SetSummary(ctx context.Context, key string, summary *analysis.Summary) error
	InvalidateSummaries(ctx context.Context) error
}
