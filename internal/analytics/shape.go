package analytics

import (
	"sort"
	"time"
)

const dayLayout = "2006-01-02"

// BucketDailyCounts groups events by (category, calendar day) and counts
// each bucket, producing one daily count series per category ordered by day.
// Events with no category label are skipped.
func BucketDailyCounts(events []Event) map[string][]SeriesPoint {
	buckets := make(map[string]map[string]float64)
	for _, e := range events {
		if e.Category == "" {
			continue
		}
		day := e.Timestamp.UTC().Format(dayLayout)
		if buckets[e.Category] == nil {
			buckets[e.Category] = make(map[string]float64)
		}
		buckets[e.Category][day]++
	}

	series := make(map[string][]SeriesPoint, len(buckets))
	for category, days := range buckets {
		keys := make([]string, 0, len(days))
		for day := range days {
			keys = append(keys, day)
		}
		sort.Strings(keys)

		points := make([]SeriesPoint, 0, len(keys))
		for _, day := range keys {
			date, _ := time.Parse(dayLayout, day)
			points = append(points, SeriesPoint{Date: date, Value: days[day]})
		}
		series[category] = points
	}

	return series
}

// TallyCategories collects the distinct category labels observed in each
// site's events, sorted for stable output.
func TallyCategories(events []Event) map[string][]string {
	seen := make(map[string]map[string]struct{})
	for _, e := range events {
		if e.SiteID == "" || e.Category == "" {
			continue
		}
		if seen[e.SiteID] == nil {
			seen[e.SiteID] = make(map[string]struct{})
		}
		seen[e.SiteID][e.Category] = struct{}{}
	}

	tally := make(map[string][]string, len(seen))
	for siteID, labels := range seen {
		sorted := make([]string, 0, len(labels))
		for label := range labels {
			sorted = append(sorted, label)
		}
		sort.Strings(sorted)
		tally[siteID] = sorted
	}

	return tally
}

// CountAlertsBySite counts the events attributed to each site
func CountAlertsBySite(events []Event) map[string]int {
	counts := make(map[string]int)
	for _, e := range events {
		if e.SiteID == "" {
			continue
		}
		counts[e.SiteID]++
	}
	return counts
}
