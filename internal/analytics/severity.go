package analytics

import "math"

// RiskBands is the threshold table for classifying a normalized 0-1 risk
// score into heatmap severity bands. It must not be fed 0-100 percentages;
// the multi-indicator site rule below handles those.
type RiskBands struct {
	Low    float64 // below this: LOW
	Medium float64 // below this: MEDIUM
	High   float64 // below this: HIGH, else CRITICAL
}

// DefaultRiskBands matches the dashboard heatmap bands.
var DefaultRiskBands = RiskBands{Low: 0.35, Medium: 0.55, High: 0.75}

// Classify maps a normalized risk score to a severity band
func (b RiskBands) Classify(risk float64) Severity {
	switch {
	case risk < b.Low:
		return SeverityLow
	case risk < b.Medium:
		return SeverityMedium
	case risk < b.High:
		return SeverityHigh
	default:
		return SeverityCritical
	}
}

// SiteIndicators are the per-site signals for the district-level severity
// rule. Accuracy is a 0-1 fraction, Drift a 0-100 percentage; nil means the
// signal was not reported.
type SiteIndicators struct {
	Accuracy   *float64
	Drift      *float64
	AlertCount int
}

// Accuracy escalation cutoffs (0-1 fraction).
const (
	accuracyCriticalBelow = 0.6
	accuracyHighBelow     = 0.75
)

// Drift escalation cutoffs (percentage).
const (
	driftCriticalAbove = 20.0
	driftHighAbove     = 10.0
	driftMediumAbove   = 5.0
)

// Alert volume escalation cutoffs.
const (
	alertsHighAbove   = 50
	alertsMediumAbove = 20
)

// ClassifySiteSeverity applies the multi-indicator rule: start at LOW and
// escalate over accuracy, drift, then alert volume. Escalation only ever
// raises severity within the pass; an absent signal contributes nothing.
func ClassifySiteSeverity(ind SiteIndicators) Severity {
	severity := SeverityLow

	if ind.Accuracy != nil {
		switch {
		case *ind.Accuracy < accuracyCriticalBelow:
			severity = maxSeverity(severity, SeverityCritical)
		case *ind.Accuracy < accuracyHighBelow:
			severity = maxSeverity(severity, SeverityHigh)
		}
	}

	if ind.Drift != nil {
		switch {
		case *ind.Drift > driftCriticalAbove:
			severity = maxSeverity(severity, SeverityCritical)
		case *ind.Drift > driftHighAbove:
			severity = maxSeverity(severity, SeverityHigh)
		case *ind.Drift > driftMediumAbove:
			severity = maxSeverity(severity, SeverityMedium)
		}
	}

	switch {
	case ind.AlertCount > alertsHighAbove:
		severity = maxSeverity(severity, SeverityHigh)
	case ind.AlertCount > alertsMediumAbove:
		severity = maxSeverity(severity, SeverityMedium)
	}

	return severity
}

// SiteRiskScore derives the 0-100 display score for a site from drift and
// alert volume. Accuracy carries no weight in the upstream formula.
func SiteRiskScore(ind SiteIndicators) float64 {
	drift := 0.0
	if ind.Drift != nil {
		drift = *ind.Drift
	}

	driftPart := math.Min(drift/25, 1) * 40
	alertPart := math.Min(float64(ind.AlertCount)/100, 1) * 60

	return driftPart + alertPart
}
