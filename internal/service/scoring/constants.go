package scoring

// ModelVersion tags every result with the scoring model that produced it.
const ModelVersion = "2.2"

const (
	// DefaultCriticalThreshold is the adjusted score above which a
	// dimension is flagged critical.
	DefaultCriticalThreshold = 0.6

	// normalScoreCeiling bounds the LOW band in which a submission is
	// reported as within normal parameters.
	normalScoreCeiling = 20
)
