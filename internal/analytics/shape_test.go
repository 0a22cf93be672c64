package analytics

import (
	"testing"
	"time"
)

func TestBucketDailyCounts(t *testing.T) {
	day1 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)

	events := []Event{
		{Timestamp: day1, Category: "Dengue", SiteID: "PHC-001"},
		{Timestamp: day1.Add(2 * time.Hour), Category: "Dengue", SiteID: "PHC-002"},
		{Timestamp: day2, Category: "Dengue", SiteID: "PHC-001"},
		{Timestamp: day1, Category: "Malaria", SiteID: "PHC-001"},
		{Timestamp: day1, Category: "", SiteID: "PHC-001"}, // unlabeled, skipped
	}

	series := BucketDailyCounts(events)

	dengue := series["Dengue"]
	if len(dengue) != 2 {
		t.Fatalf("Expected 2 dengue days, got %d", len(dengue))
	}
	if dengue[0].Value != 2 || dengue[1].Value != 1 {
		t.Errorf("Expected daily counts [2 1], got [%v %v]", dengue[0].Value, dengue[1].Value)
	}
	if !dengue[0].Date.Before(dengue[1].Date) {
		t.Error("Daily series not ordered by day")
	}

	if len(series["Malaria"]) != 1 {
		t.Errorf("Expected 1 malaria day, got %d", len(series["Malaria"]))
	}
	if _, ok := series[""]; ok {
		t.Error("Unlabeled events must not form a category")
	}
}

func TestBucketDailyCounts_GroupsByCalendarDayUTC(t *testing.T) {
	// 23:30 and 00:30 the next day are different buckets.
	late := time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC)
	early := time.Date(2025, 6, 2, 0, 30, 0, 0, time.UTC)

	series := BucketDailyCounts([]Event{
		{Timestamp: late, Category: "Dengue"},
		{Timestamp: early, Category: "Dengue"},
	})

	if len(series["Dengue"]) != 2 {
		t.Errorf("Expected 2 distinct days, got %d", len(series["Dengue"]))
	}
}

func TestTallyCategories(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	events := []Event{
		{Timestamp: day, Category: "Dengue", SiteID: "PHC-001"},
		{Timestamp: day, Category: "Dengue", SiteID: "PHC-001"}, // duplicate label
		{Timestamp: day, Category: "Malaria", SiteID: "PHC-001"},
		{Timestamp: day, Category: "Dengue", SiteID: "PHC-002"},
		{Timestamp: day, Category: "Typhoid", SiteID: ""}, // no site, skipped
	}

	tally := TallyCategories(events)

	if len(tally) != 2 {
		t.Fatalf("Expected 2 sites, got %d", len(tally))
	}

	first := tally["PHC-001"]
	if len(first) != 2 || first[0] != "Dengue" || first[1] != "Malaria" {
		t.Errorf("Expected sorted [Dengue Malaria], got %v", first)
	}
	if len(tally["PHC-002"]) != 1 {
		t.Errorf("Expected 1 category for PHC-002, got %v", tally["PHC-002"])
	}
}

func TestCountAlertsBySite(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	events := []Event{
		{Timestamp: day, Category: "Dengue", SiteID: "PHC-001"},
		{Timestamp: day, Category: "Malaria", SiteID: "PHC-001"},
		{Timestamp: day, Category: "Dengue", SiteID: "PHC-002"},
	}

	counts := CountAlertsBySite(events)

	if counts["PHC-001"] != 2 {
		t.Errorf("Expected 2 alerts for PHC-001, got %d", counts["PHC-001"])
	}
	if counts["PHC-002"] != 1 {
		t.Errorf("Expected 1 alert for PHC-002, got %d", counts["PHC-002"])
	}
}
