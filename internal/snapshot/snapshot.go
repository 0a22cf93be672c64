package snapshot

import (
	"fmt"
	"sort"
	"time"

	"github.com/asengupta/surveillance-server/internal/analytics"
	"github.com/asengupta/surveillance-server/internal/database"
)

// Snapshot is a point-in-time view of the network used by one analysis
// cycle. Building it up front keeps the analysis pure and repeatable.
type Snapshot struct {
	TakenAt     time.Time
	Events      []analytics.Event
	Sites       []analytics.SiteMetrics
	RiskHistory []analytics.SeriesPoint
}

// Loader reads analysis inputs from the database
type Loader struct {
	db          *database.DB
	eventWindow time.Duration
	historyDays int
}

// NewLoader creates a snapshot loader. eventWindow bounds how far back
// events are read; historyDays bounds the daily risk series.
func NewLoader(db *database.DB, eventWindow time.Duration, historyDays int) *Loader {
	return &Loader{
		db:          db,
		eventWindow: eventWindow,
		historyDays: historyDays,
	}
}

// Load builds a snapshot of recent events, latest per-site metrics and the
// daily risk history
func (l *Loader) Load() (*Snapshot, error) {
	now := time.Now().UTC()

	records, err := l.db.GetEventsSince(now.Add(-l.eventWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	events := make([]analytics.Event, 0, len(records))
	for _, rec := range records {
		events = append(events, eventFromRecord(rec))
	}

	metricRecords, err := l.db.GetLatestSiteMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to load site metrics: %w", err)
	}

	// Per-site category labels come from the event stream, not the
	// metrics table
	categories := analytics.TallyCategories(events)

	sites := make([]analytics.SiteMetrics, 0, len(metricRecords))
	for _, rec := range metricRecords {
		site := siteFromRecord(rec)
		site.Categories = categories[site.SiteID]
		sites = append(sites, site)
	}
	sort.Slice(sites, func(i, j int) bool {
		return sites[i].SiteID < sites[j].SiteID
	})

	daily, err := l.db.GetDailyRiskAverages(now.AddDate(0, 0, -l.historyDays))
	if err != nil {
		return nil, fmt.Errorf("failed to load risk history: %w", err)
	}

	history := make([]analytics.SeriesPoint, 0, len(daily))
	for _, d := range daily {
		history = append(history, analytics.SeriesPoint{
			Date:  d.Date,
			Value: d.AvgRisk,
		})
	}

	return &Snapshot{
		TakenAt:     now,
		Events:      events,
		Sites:       sites,
		RiskHistory: history,
	}, nil
}

func eventFromRecord(rec *database.EventRecord) analytics.Event {
	event := analytics.Event{
		Timestamp:    rec.Timestamp,
		Category:     rec.Category,
		SiteID:       rec.SiteID,
		RiskScore:    rec.RiskScore,
		AccuracyDrop: rec.AccuracyDrop,
	}
	if rec.Severity != nil {
		event.Severity = analytics.Severity(*rec.Severity)
	}
	if rec.ModelVersion != nil {
		event.ModelVersion = *rec.ModelVersion
	}
	return event
}

func siteFromRecord(rec *database.SiteMetricsRecord) analytics.SiteMetrics {
	site := analytics.SiteMetrics{
		SiteID:          rec.SiteID,
		LocalAccuracy:   rec.LocalAccuracy,
		DriftPercentage: rec.DriftPercentage,
		RiskScore:       rec.RiskScore,
		PatientCount:    rec.PatientCount,
	}
	if rec.Severity != nil {
		site.Severity = analytics.Severity(*rec.Severity)
	}
	return site
}
