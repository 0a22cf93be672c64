package analytics

// DriftThresholds is the fixed threshold table for drift classification.
// It is passed explicitly so classifiers stay independently testable.
type DriftThresholds struct {
	Warning  float64
	Critical float64
}

// DefaultDriftThresholds matches the dashboard's drift bands.
var DefaultDriftThresholds = DriftThresholds{Warning: 10, Critical: 20}

// Classify maps a drift percentage to its status band. A nil or zero
// reading means no measured drift and reports stable. The warning boundary
// is exclusive: exactly 10 is still watch.
func (t DriftThresholds) Classify(drift *float64) DriftStatus {
	switch {
	case drift == nil || *drift == 0:
		return DriftStable
	case *drift > t.Critical:
		return DriftCritical
	case *drift > t.Warning:
		return DriftWarning
	default:
		return DriftWatch
	}
}
