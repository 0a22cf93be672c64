package analytics

import "sort"

// MinOutbreakEvents is the smallest event sample category trends are
// analyzed over; smaller samples produce a "nothing detected" report.
const MinOutbreakEvents = 10

// minTrendDays is the number of distinct days a category needs before its
// daily counts can carry a trend.
const minTrendDays = 3

// Outbreak slope cutoffs, in cases per day.
const (
	outbreakSlopeIncreasing = 0.5
	outbreakSlopeRapid      = 2.0
)

// Last-day case count gates for the severity rules.
const (
	criticalCaseGate = 10
	highCaseGate     = 5
	mediumCaseGate   = 3
)

// CategoryTrend is the per-category outcome of outbreak analysis
type CategoryTrend struct {
	Category  string        `json:"category"`
	Severity  Severity      `json:"severity"`
	Detected  bool          `json:"detected"`
	Slope     float64       `json:"slope"`
	RSquared  float64       `json:"r_squared"`
	LastCount float64       `json:"last_count"`
	PrevCount float64       `json:"prev_count"`
	Days      int           `json:"days"`
	Counts    []SeriesPoint `json:"counts"`
	Note      string        `json:"note,omitempty"`
}

// OutbreakReport aggregates category trends across the whole event sample
type OutbreakReport struct {
	Detected        bool            `json:"detected"`
	OverallSeverity Severity        `json:"overall_severity"`
	Categories      []CategoryTrend `json:"categories"`
	DetectedCount   int             `json:"detected_count"`
	TotalCategories int             `json:"total_categories"`
}

// AnalyzeCategoryTrends buckets events into per-category daily case counts,
// fits a trend per category, and flags the ones that look like outbreaks.
// The overall severity is the highest among detected categories; categories
// are returned sorted by slope, steepest first.
func AnalyzeCategoryTrends(events []Event) OutbreakReport {
	report := OutbreakReport{
		OverallSeverity: SeverityLow,
		Categories:      []CategoryTrend{},
	}

	if len(events) < MinOutbreakEvents {
		return report
	}

	for category, counts := range BucketDailyCounts(events) {
		trend := classifyCategory(category, counts)
		report.Categories = append(report.Categories, trend)

		if trend.Detected {
			report.Detected = true
			report.DetectedCount++
			report.OverallSeverity = maxSeverity(report.OverallSeverity, trend.Severity)
		}
	}

	report.TotalCategories = len(report.Categories)

	sort.Slice(report.Categories, func(i, j int) bool {
		a, b := report.Categories[i], report.Categories[j]
		if a.Slope != b.Slope {
			return a.Slope > b.Slope
		}
		return a.Category < b.Category
	})

	return report
}

func classifyCategory(category string, counts []SeriesPoint) CategoryTrend {
	trend := CategoryTrend{
		Category: category,
		Severity: SeverityLow,
		Days:     len(counts),
		Counts:   counts,
	}

	if len(counts) < minTrendDays {
		trend.Note = "insufficient data"
		return trend
	}

	values := make([]float64, len(counts))
	for i, p := range counts {
		values[i] = p.Value
	}

	line, ok := EstimateTrend(values)
	if !ok {
		trend.Note = "insufficient data"
		return trend
	}

	trend.Slope = line.Slope
	trend.RSquared = line.RSquared
	trend.LastCount = values[len(values)-1]
	if len(values) >= 2 {
		trend.PrevCount = values[len(values)-2]
	}

	isIncreasing := line.Slope > outbreakSlopeIncreasing
	isRapid := line.Slope > outbreakSlopeRapid

	switch {
	case isRapid && trend.LastCount > criticalCaseGate:
		trend.Severity = SeverityCritical
		trend.Detected = true
	case isRapid || (isIncreasing && trend.LastCount > highCaseGate):
		trend.Severity = SeverityHigh
		trend.Detected = true
	case isIncreasing && trend.LastCount > mediumCaseGate:
		trend.Severity = SeverityMedium
		trend.Detected = true
	}

	return trend
}
