package analytics

import (
	"github.com/centinela/sentinel-backend/internal/domain/analysis"
	"github.com/centinela/sentinel-backend/internal/domain/audit"
	"github.com/centinela/sentinel-backend/internal/domain/evidence"
)

// GroupStats aggregates the analyses that share one grouping key.
type GroupStats struct {
	Count     int     `json:"count"`
	MeanScore float64 `json:"mean_score"`
	HighRisk  int     `json:"high_risk"`
}

// Breakdown slices persisted analyses by role and document type.
type Breakdown struct {
	Total          int                                 `json:"total"`
	HighRiskRate   float64                             `json:"high_risk_rate"`
	ByRole         map[analysis.Role]GroupStats        `json:"by_role"`
	ByDocumentType map[analysis.DocumentType]GroupStats `json:"by_document_type"`
}

// IndicatorFrequency counts how often an indicator was marked across the
// aggregated analyses.
type IndicatorFrequency struct {
	Indicator evidence.Indicator `json:"indicator"`
	Count     int                `json:"count"`
	Rate      float64            `json:"rate"`
}

// AuditReport summarizes one actor's footprint in the system.
type AuditReport struct {
	Actor             string                     `json:"actor"`
	ActivityCount     int                        `json:"activity_count"`
	AnalysisCount     int                        `json:"analysis_count"`
	SensitiveChanges  int                        `json:"sensitive_changes"`
	ScoreDistribution map[analysis.RiskLevel]int `json:"score_distribution"`
	RecentActivities  []*audit.ActivityEntry     `json:"recent_activities"`
}
