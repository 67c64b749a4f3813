package analysis

import (
	"github.com/centinela/sentinel-backend/internal/domain/evidence"
)

// Dimension identifies one of the fixed risk dimensions an analysis scores.
type Dimension string

const (
	DimensionAuthorshipStyle Dimension = "authorship_style"
	DimensionTimingProcess   Dimension = "timing_process"
	DimensionReferencesData  Dimension = "references_data"
	DimensionPresentation    Dimension = "presentation"
)

// allDimensions fixes the iteration order used for scoring, recommendations
// and serialized output.
var allDimensions = []Dimension{
	DimensionAuthorshipStyle,
	DimensionTimingProcess,
	DimensionReferencesData,
	DimensionPresentation,
}

// AllDimensions returns the dimensions in declaration order.
func AllDimensions() []Dimension {
	out := make([]Dimension, len(allDimensions))
	copy(out, allDimensions)
	return out
}

// dimensionWeights maps each dimension to its weighted indicators. The
// weights are the calibrated model values and do not change at runtime.
var dimensionWeights = map[Dimension]map[evidence.Indicator]float64{
	DimensionAuthorshipStyle: {
		evidence.IndicatorStyleMismatch: 0.4,
		evidence.IndicatorWeakDefense:   0.6,
	},
	DimensionTimingProcess: {
		evidence.IndicatorSuspiciousTiming: 0.5,
		evidence.IndicatorNoDrafts:         0.5,
	},
	DimensionReferencesData: {
		evidence.IndicatorUnverifiableReferences: 0.4,
		evidence.IndicatorInconsistentData:       0.6,
	},
	DimensionPresentation: {
		evidence.IndicatorSuspiciousImages: 1.0,
	},
}

// DimensionScores holds one normalized score per dimension, each in [0,1].
type DimensionScores map[Dimension]float64

// ScoreDimensions computes the weighted-average score of every dimension
// from a normalized evidence record. A dimension with zero total weight
// scores 0.
func ScoreDimensions(rec evidence.Record) DimensionScores {
	scores := make(DimensionScores, len(allDimensions))
	for _, dim := range allDimensions {
		weights := dimensionWeights[dim]
		var weighted, total float64
		for ind, w := range weights {
			weighted += rec.Value(ind) * w
			total += w
		}
		if total == 0 {
			scores[dim] = 0
			continue
		}
		scores[dim] = weighted / total
	}
	return scores
}

// Indicators returns the indicators that feed the dimension, in the closed
// indicator set's declaration order.
func (d Dimension) Indicators() []evidence.Indicator {
	weights := dimensionWeights[d]
	var out []evidence.Indicator
	for _, ind := range evidence.AllIndicators() {
		if _, ok := weights[ind]; ok {
			out = append(out, ind)
		}
	}
	return out
}
