package scoring

import (
	"github.com/centinela/sentinel-backend/internal/domain/analysis"
)

// ScoreInput is everything the pure scoring pipeline needs: the raw
// indicator map and the submission context.
type ScoreInput struct {
	Evidence     map[string]bool
	Role         analysis.Role
	DocumentType analysis.DocumentType
}

// AnalyzeRequest asks for a full analysis: score the evidence, persist the
// outcome keyed by the document's content fingerprint, and leave an audit
// trail.
type AnalyzeRequest struct {
	Title        string
	Content      string
	Actor        string
	Evidence     map[string]bool
	Role         analysis.Role
	DocumentType analysis.DocumentType
}
