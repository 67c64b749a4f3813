package evidence

// Indicator identifies one of the discrete evidence signals a reviewer can
// mark on a submission. The set is closed: indicators are defined at build
// time and unknown names are dropped at the boundary.
type Indicator string

const (
	IndicatorStyleMismatch          Indicator = "style_mismatch"
	IndicatorSuspiciousTiming       Indicator = "suspicious_timing"
	IndicatorUnverifiableReferences Indicator = "unverifiable_references"
	IndicatorInconsistentData       Indicator = "inconsistent_data"
	IndicatorSuspiciousImages       Indicator = "suspicious_images"
	IndicatorNoDrafts               Indicator = "no_drafts"
	IndicatorWeakDefense            Indicator = "weak_defense"
)

// allIndicators is the declaration order used everywhere a stable iteration
// order matters.
var allIndicators = []Indicator{
	IndicatorStyleMismatch,
	IndicatorSuspiciousTiming,
	IndicatorUnverifiableReferences,
	IndicatorInconsistentData,
	IndicatorSuspiciousImages,
	IndicatorNoDrafts,
	IndicatorWeakDefense,
}

// AllIndicators returns the closed indicator set in declaration order.
func AllIndicators() []Indicator {
	out := make([]Indicator, len(allIndicators))
	copy(out, allIndicators)
	return out
}

// IsKnown reports whether name is a member of the closed indicator set.
func IsKnown(name string) bool {
	for _, ind := range allIndicators {
		if string(ind) == name {
			return true
		}
	}
	return false
}

// Record is a complete, typed evidence record: every known indicator is
// present with an explicit value. Construct one through Normalize.
type Record struct {
	StyleMismatch          bool `json:"style_mismatch"`
	SuspiciousTiming       bool `json:"suspicious_timing"`
	UnverifiableReferences bool `json:"unverifiable_references"`
	InconsistentData       bool `json:"inconsistent_data"`
	SuspiciousImages       bool `json:"suspicious_images"`
	NoDrafts               bool `json:"no_drafts"`
	WeakDefense            bool `json:"weak_defense"`
}

// Normalize builds a complete Record from a partial raw mapping. Missing
// indicators default to absent and unknown keys are silently dropped, so the
// function is total: any input yields a valid Record.
func Normalize(raw map[string]bool) Record {
	var r Record
	for name, present := range raw {
		switch Indicator(name) {
		case IndicatorStyleMismatch:
			r.StyleMismatch = present
		case IndicatorSuspiciousTiming:
			r.SuspiciousTiming = present
		case IndicatorUnverifiableReferences:
			r.UnverifiableReferences = present
		case IndicatorInconsistentData:
			r.InconsistentData = present
		case IndicatorSuspiciousImages:
			r.SuspiciousImages = present
		case IndicatorNoDrafts:
			r.NoDrafts = present
		case IndicatorWeakDefense:
			r.WeakDefense = present
		}
	}
	return r
}

// Value returns the indicator's contribution as 0 or 1 for weighted sums.
func (r Record) Value(ind Indicator) float64 {
	if r.Present(ind) {
		return 1.0
	}
	return 0.0
}

// Present reports whether the indicator is marked in this record.
func (r Record) Present(ind Indicator) bool {
	switch ind {
	case IndicatorStyleMismatch:
		return r.StyleMismatch
	case IndicatorSuspiciousTiming:
		return r.SuspiciousTiming
	case IndicatorUnverifiableReferences:
		return r.UnverifiableReferences
	case IndicatorInconsistentData:
		return r.InconsistentData
	case IndicatorSuspiciousImages:
		return r.SuspiciousImages
	case IndicatorNoDrafts:
		return r.NoDrafts
	case IndicatorWeakDefense:
		return r.WeakDefense
	}
	return false
}

// MarkedCount returns the number of indicators marked present.
func (r Record) MarkedCount() int {
	count := 0
	for _, ind := range allIndicators {
		if r.Present(ind) {
			count++
		}
	}
	return count
}

// Marked returns the marked indicators in declaration order.
func (r Record) Marked() []Indicator {
	var marked []Indicator
	for _, ind := range allIndicators {
		if r.Present(ind) {
			marked = append(marked, ind)
		}
	}
	return marked
}
