package analytics

import (
	"testing"
	"time"
)

// eventsForCategory spreads the given daily case counts over consecutive
// days starting 2025-06-01.
func eventsForCategory(category, siteID string, dailyCounts []int) []Event {
	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	var events []Event
	for day, count := range dailyCounts {
		for i := 0; i < count; i++ {
			events = append(events, Event{
				Timestamp: start.AddDate(0, 0, day).Add(time.Duration(i) * time.Minute),
				Category:  category,
				SiteID:    siteID,
			})
		}
	}
	return events
}

func TestAnalyzeCategoryTrends_CriticalOutbreak(t *testing.T) {
	// Dengue cases 1,2,4,12 over 4 days: slope > 2 and last count > 10.
	events := eventsForCategory("Dengue", "PHC-001", []int{1, 2, 4, 12})

	report := AnalyzeCategoryTrends(events)

	if !report.Detected {
		t.Fatal("Expected outbreak detected")
	}
	if report.OverallSeverity != SeverityCritical {
		t.Errorf("Expected CRITICAL, got %s", report.OverallSeverity)
	}
	if report.DetectedCount != 1 || report.TotalCategories != 1 {
		t.Errorf("Expected 1/1 categories detected, got %d/%d",
			report.DetectedCount, report.TotalCategories)
	}

	dengue := report.Categories[0]
	if dengue.Slope <= outbreakSlopeRapid {
		t.Errorf("Expected rapid slope, got %f", dengue.Slope)
	}
	if dengue.LastCount != 12 {
		t.Errorf("Expected last count 12, got %f", dengue.LastCount)
	}
	if dengue.PrevCount != 4 {
		t.Errorf("Expected previous count 4, got %f", dengue.PrevCount)
	}
}

func TestAnalyzeCategoryTrends_TooFewEvents(t *testing.T) {
	events := eventsForCategory("Dengue", "PHC-001", []int{3, 3, 3})

	report := AnalyzeCategoryTrends(events)

	if report.Detected {
		t.Error("Expected nothing detected below the event minimum")
	}
	if len(report.Categories) != 0 {
		t.Errorf("Expected empty category list, got %d", len(report.Categories))
	}
	if report.OverallSeverity != SeverityLow {
		t.Errorf("Expected LOW overall severity, got %s", report.OverallSeverity)
	}
}

func TestAnalyzeCategoryTrends_TooFewDays(t *testing.T) {
	// Plenty of events but only two distinct days.
	events := eventsForCategory("Malaria", "PHC-002", []int{6, 7})

	report := AnalyzeCategoryTrends(events)

	if report.Detected {
		t.Error("Expected nothing detected with under three days of data")
	}
	if len(report.Categories) != 1 {
		t.Fatalf("Expected 1 category, got %d", len(report.Categories))
	}

	malaria := report.Categories[0]
	if malaria.Severity != SeverityLow || malaria.Detected {
		t.Errorf("Expected LOW/not-detected, got %s/%v", malaria.Severity, malaria.Detected)
	}
	if malaria.Note != "insufficient data" {
		t.Errorf("Expected insufficient data note, got %q", malaria.Note)
	}
}

func TestAnalyzeCategoryTrends_MediumAndHighBands(t *testing.T) {
	// Slow climb ending above the medium gate but not the high gate.
	medium := eventsForCategory("Typhoid", "PHC-003", []int{2, 4, 4})
	reportMedium := AnalyzeCategoryTrends(medium)
	if got := reportMedium.Categories[0].Severity; got != SeverityMedium {
		t.Errorf("Expected MEDIUM for slow climb to 4 cases, got %s", got)
	}

	// Steady climb ending above the high gate.
	high := eventsForCategory("Cholera", "PHC-004", []int{3, 5, 7})
	reportHigh := AnalyzeCategoryTrends(high)
	if got := reportHigh.Categories[0].Severity; got != SeverityHigh {
		t.Errorf("Expected HIGH for climb to 7 cases, got %s", got)
	}
	if reportHigh.OverallSeverity != SeverityHigh {
		t.Errorf("Expected HIGH overall, got %s", reportHigh.OverallSeverity)
	}
}

func TestAnalyzeCategoryTrends_DecliningCategoryNotDetected(t *testing.T) {
	events := eventsForCategory("Influenza", "PHC-005", []int{8, 5, 2})

	report := AnalyzeCategoryTrends(events)

	if report.Detected {
		t.Error("Declining series must not be detected")
	}
	if got := report.Categories[0].Severity; got != SeverityLow {
		t.Errorf("Expected LOW, got %s", got)
	}
}

func TestAnalyzeCategoryTrends_SortedBySlopeDescending(t *testing.T) {
	events := append(
		eventsForCategory("Dengue", "PHC-001", []int{1, 4, 12}),
		eventsForCategory("Malaria", "PHC-001", []int{2, 3, 4})...,
	)

	report := AnalyzeCategoryTrends(events)

	if len(report.Categories) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(report.Categories))
	}
	if report.Categories[0].Category != "Dengue" {
		t.Errorf("Expected steepest category first, got %s", report.Categories[0].Category)
	}
	if report.Categories[0].Slope < report.Categories[1].Slope {
		t.Error("Categories not sorted by slope descending")
	}
	// Overall severity is the max across detected categories.
	if report.OverallSeverity != SeverityCritical {
		t.Errorf("Expected CRITICAL overall, got %s", report.OverallSeverity)
	}
	if report.DetectedCount != 2 {
		t.Errorf("Expected 2 detected, got %d", report.DetectedCount)
	}
}
