package analysis

import (
	"time"

	"github.com/google/uuid"

	"github.com/centinela/sentinel-backend/internal/domain/errors"
	"github.com/centinela/sentinel-backend/internal/domain/evidence"
)

// Record is a persisted analysis. One record exists per document
// fingerprint; re-analysis of the same content overwrites the stored
// outcome in place.
type Record struct {
	ID          uuid.UUID       `json:"id"`
	Fingerprint Fingerprint     `json:"document_fingerprint"`
	Title       string          `json:"title"`
	Actor       string          `json:"actor"`
	Context     Context         `json:"context"`
	Evidence    evidence.Record `json:"evidence"`
	Result      ScoreResult     `json:"result"`
	DurationMS  int64           `json:"duration_ms"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewRecord assembles an analysis record ready for persistence.
func NewRecord(fp Fingerprint, title, actor string, ctx Context, ev evidence.Record, result ScoreResult) (*Record, error) {
	if fp.IsEmpty() {
		return nil, errors.NewValidationError("EMPTY_FINGERPRINT",
			"analysis record requires a document fingerprint")
	}
	if actor == "" {
		return nil, errors.NewValidationError("EMPTY_ACTOR",
			"analysis record requires an acting user")
	}

	now := time.Now().UTC()
	return &Record{
		ID:          uuid.New(),
		Fingerprint: fp,
		Title:       title,
		Actor:       actor,
		Context:     ctx,
		Evidence:    ev,
		Result:      result,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
