package scoring

import (
	"github.com/centinela/sentinel-backend/internal/domain/analysis"
)

var highRiskRecommendations = []string{
	"Conduct an exhaustive review of the document's authorship.",
	"Consider an additional interview with the author.",
	"Document all evidence for the audit record.",
}

var dimensionRecommendations = map[analysis.Dimension][]string{
	analysis.DimensionAuthorshipStyle: {
		"Apply style-comparison tooling against the author's prior work.",
		"Schedule an oral defense of the submitted content.",
	},
	analysis.DimensionTimingProcess: {
		"Review the submission chronology for anomalies.",
		"Request an explanation of the work timeline.",
	},
	analysis.DimensionReferencesData: {
		"Verify every cited reference against academic databases.",
		"Cross-check the reported data for internal consistency.",
	},
	analysis.DimensionPresentation: {
		"Inspect image metadata for signs of manipulation.",
		"Assess the visual material for coherence with the written content.",
	},
}

var normalRecommendations = []string{
	"Document is within normal parameters.",
	"Continue periodic monitoring.",
}

// recommendationsFor builds the ordered recommendation list: level
// recommendations first, then one block per critical dimension in
// declaration order, then the normal-parameters block for quiet LOW
// results.
func recommendationsFor(overall int, level analysis.RiskLevel, critical []analysis.Dimension) []string {
	var recs []string

	if level == analysis.RiskLevelHigh {
		recs = append(recs, highRiskRecommendations...)
	}

	for _, dim := range critical {
		recs = append(recs, dimensionRecommendations[dim]...)
	}

	if level == analysis.RiskLevelLow && overall < normalScoreCeiling {
		recs = append(recs, normalRecommendations...)
	}

	return recs
}
