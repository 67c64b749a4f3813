package analysis

import (
	"math"

	"github.com/centinela/sentinel-backend/internal/domain/evidence"
)

// RiskLevel is the categorical outcome of an analysis.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelHigh   RiskLevel = "HIGH"
)

// Band edges for the overall score, on the 0..100 scale.
const (
	MediumThreshold = 33
	HighThreshold   = 67
)

// LevelForScore maps an overall score to its risk band. The HIGH check runs
// last so the upper band wins at its boundary.
func LevelForScore(overall int) RiskLevel {
	level := RiskLevelLow
	if overall >= MediumThreshold {
		level = RiskLevelMedium
	}
	if overall >= HighThreshold {
		level = RiskLevelHigh
	}
	return level
}

// ScoreResult is the complete outcome of one scoring run.
type ScoreResult struct {
	Overall         int                  `json:"overall_score"`
	Level           RiskLevel            `json:"risk_level"`
	Confidence      float64              `json:"confidence"`
	Dimensions      DimensionScores      `json:"dimension_scores"`
	Critical        []Dimension          `json:"critical_dimensions"`
	Recommendations []string             `json:"recommendations"`
	Marked          []evidence.Indicator `json:"marked_indicators"`
	ModelVersion    string               `json:"model_version"`
}

// Aggregate collapses adjusted dimension scores into the overall score,
// risk level and confidence. markedCount is the number of indicators
// present in the underlying evidence. An empty score set yields overall 0
// at the baseline confidence of 0.5.
func Aggregate(adjusted DimensionScores, markedCount int) (int, RiskLevel, float64) {
	if len(adjusted) == 0 {
		return 0, RiskLevelLow, 0.5
	}

	var sum float64
	minScore := math.Inf(1)
	maxScore := math.Inf(-1)
	for _, v := range adjusted {
		sum += v
		minScore = math.Min(minScore, v)
		maxScore = math.Max(maxScore, v)
	}
	mean := sum / float64(len(adjusted))

	overall := int(math.Round(mean * 100))
	if overall < 0 {
		overall = 0
	}
	if overall > 100 {
		overall = 100
	}

	spread := maxScore - minScore
	boost := math.Min(0.1*float64(markedCount), 0.3)
	confidence := math.Min(1.0-spread+boost, 1.0)

	return overall, LevelForScore(overall), confidence
}

// CriticalDimensions returns the dimensions whose adjusted score exceeds
// the threshold, in declaration order.
func CriticalDimensions(adjusted DimensionScores, threshold float64) []Dimension {
	var critical []Dimension
	for _, dim := range allDimensions {
		if adjusted[dim] > threshold {
			critical = append(critical, dim)
		}
	}
	return critical
}
