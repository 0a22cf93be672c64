package analytics

import "time"

// Severity is an ordered alert severity band
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Rank returns the escalation order of the severity (LOW=0 .. CRITICAL=3)
func (s Severity) Rank() int {
	return severityRank[s]
}

// maxSeverity returns the higher of two severities
func maxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// DriftStatus is a model-drift severity band
type DriftStatus string

const (
	DriftStable   DriftStatus = "stable"
	DriftWatch    DriftStatus = "watch"
	DriftWarning  DriftStatus = "warning"
	DriftCritical DriftStatus = "critical"
)

var driftLabels = map[DriftStatus]string{
	DriftStable:   "Stable",
	DriftWatch:    "Watch",
	DriftWarning:  "Warning",
	DriftCritical: "Critical",
}

// Label returns the display label for the drift status
func (d DriftStatus) Label() string {
	return driftLabels[d]
}

// Event is a single time-stamped surveillance observation produced by a
// site's local model. Numeric fields are pointers: a nil value means the
// producer sent no reading, which is not the same as a reading of zero.
type Event struct {
	Timestamp    time.Time `json:"timestamp"`
	Category     string    `json:"category"`
	SiteID       string    `json:"site_id"`
	Severity     Severity  `json:"severity,omitempty"`
	RiskScore    *float64  `json:"risk_score,omitempty"`              // 0..1
	AccuracyDrop *float64  `json:"accuracy_drop_percentage,omitempty"` // percentage points
	ModelVersion string    `json:"model_version,omitempty"`
}

// SeriesPoint is one dated value in a derived series
type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// SiteMetrics is the latest model snapshot for one participating site
type SiteMetrics struct {
	SiteID          string   `json:"site_id"`
	LocalAccuracy   *float64 `json:"local_accuracy,omitempty"`   // 0..1
	DriftPercentage *float64 `json:"drift_percentage,omitempty"` // >= 0
	RiskScore       *float64 `json:"risk_score,omitempty"`       // 0..1
	Severity        Severity `json:"severity,omitempty"`
	PatientCount    int      `json:"patient_count"`
	Categories      []string `json:"categories,omitempty"`
}
