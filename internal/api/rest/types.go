package rest

import (
	"time"

	"github.com/centinela/sentinel-backend/internal/domain/analysis"
	"github.com/centinela/sentinel-backend/internal/domain/audit"
)

// AnalyzeRequest is the POST /api/v2/analyses payload. The actor arrives
// already authenticated by the gateway in front of this service.
type AnalyzeRequest struct {
	Title        string          `json:"title" validate:"required,max=300"`
	Content      string          `json:"content" validate:"required"`
	Actor        string          `json:"actor" validate:"required,max=200"`
	Evidence     map[string]bool `json:"evidence"`
	Role         string          `json:"role" validate:"max=100"`
	DocumentType string          `json:"document_type" validate:"max=100"`
}

// ResolveAlertRequest is the POST /api/v2/alerts/{id}/resolve payload.
type ResolveAlertRequest struct {
	Actor string `json:"actor" validate:"required,max=200"`
}

// AnalysisResponse is the wire form of a stored analysis.
type AnalysisResponse struct {
	ID              string             `json:"id"`
	Fingerprint     string             `json:"document_fingerprint"`
	Title           string             `json:"title"`
	Actor           string             `json:"actor"`
	Role            string             `json:"role"`
	DocumentType    string             `json:"document_type"`
	OverallScore    int                `json:"overall_score"`
	RiskLevel       string             `json:"risk_level"`
	Confidence      float64            `json:"confidence"`
	DimensionScores map[string]float64 `json:"dimension_scores"`
	Critical        []string           `json:"critical_dimensions"`
	Recommendations []string           `json:"recommendations"`
	MarkedEvidence  []string           `json:"marked_indicators"`
	ModelVersion    string             `json:"model_version"`
	DurationMS      int64              `json:"duration_ms"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

func toAnalysisResponse(rec *analysis.Record) AnalysisResponse {
	dimensions := make(map[string]float64, len(rec.Result.Dimensions))
	for dim, score := range rec.Result.Dimensions {
		dimensions[string(dim)] = score
	}
	critical := make([]string, 0, len(rec.Result.Critical))
	for _, dim := range rec.Result.Critical {
		critical = append(critical, string(dim))
	}
	marked := make([]string, 0, len(rec.Result.Marked))
	for _, ind := range rec.Result.Marked {
		marked = append(marked, string(ind))
	}

	return AnalysisResponse{
		ID:              rec.ID.String(),
		Fingerprint:     rec.Fingerprint.String(),
		Title:           rec.Title,
		Actor:           rec.Actor,
		Role:            string(rec.Context.Role),
		DocumentType:    string(rec.Context.DocumentType),
		OverallScore:    rec.Result.Overall,
		RiskLevel:       string(rec.Result.Level),
		Confidence:      rec.Result.Confidence,
		DimensionScores: dimensions,
		Critical:        critical,
		Recommendations: rec.Result.Recommendations,
		MarkedEvidence:  marked,
		ModelVersion:    rec.Result.ModelVersion,
		DurationMS:      rec.DurationMS,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}

// AlertResponse is the wire form of an alert.
type AlertResponse struct {
	ID         string     `json:"id"`
	Level      string     `json:"level"`
	Kind       string     `json:"kind"`
	Message    string     `json:"message"`
	Actor      string     `json:"actor,omitempty"`
	Resource   string     `json:"resource,omitempty"`
	Resolved   bool       `json:"resolved"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func toAlertResponse(a *audit.Alert) AlertResponse {
	return AlertResponse{
		ID:         a.ID.String(),
		Level:      string(a.Level),
		Kind:       a.Kind,
		Message:    a.Message,
		Actor:      a.Actor,
		Resource:   a.Resource,
		Resolved:   a.Resolved,
		ResolvedAt: a.ResolvedAt,
		CreatedAt:  a.CreatedAt,
	}
}

// ActivityResponse is the wire form of an activity entry.
type ActivityResponse struct {
	ID         string                 `json:"id"`
	Actor      string                 `json:"actor"`
	Kind       string                 `json:"kind"`
	Detail     string                 `json:"detail"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	DurationMS int64                  `json:"duration_ms"`
	CreatedAt  time.Time              `json:"created_at"`
}

func toActivityResponse(e *audit.ActivityEntry) ActivityResponse {
	return ActivityResponse{
		ID:         e.ID.String(),
		Actor:      e.Actor,
		Kind:       e.Kind,
		Detail:     e.Detail,
		Metadata:   e.Metadata,
		DurationMS: e.DurationMS,
		CreatedAt:  e.CreatedAt,
	}
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
