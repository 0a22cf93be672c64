package analyzer

import (
	"time"

	"github.com/google/uuid"
	"github.com/asengupta/surveillance-server/internal/analytics"
	"github.com/asengupta/surveillance-server/internal/snapshot"
)

// SiteStatus is the dashboard row for one participating site
type SiteStatus struct {
	SiteID          string             `json:"site_id"`
	Severity        analytics.Severity `json:"severity"`
	HeatmapSeverity analytics.Severity `json:"heatmap_severity"`
	RiskScore       float64            `json:"risk_score"` // 0-100 display score
	DriftStatus     string             `json:"drift_status"`
	DriftLabel      string             `json:"drift_label"`
	LocalAccuracy   *float64           `json:"local_accuracy,omitempty"`
	DriftPercentage *float64           `json:"drift_percentage,omitempty"`
	PatientCount    int                `json:"patient_count"`
	AlertCount      int                `json:"alert_count"`
	Categories      []string           `json:"categories,omitempty"`
}

// DashboardReport is the full output of one analysis cycle
type DashboardReport struct {
	ReportID      string                     `json:"report_id"`
	GeneratedAt   time.Time                  `json:"generated_at"`
	RiskForecast  analytics.ForecastResult   `json:"risk_forecast"`
	Outbreaks     analytics.OutbreakReport   `json:"outbreaks"`
	Sites         []SiteStatus               `json:"sites"`
	Similarity    analytics.SimilarityMatrix `json:"similarity"`
	NetworkHealth analytics.NetworkHealth    `json:"network_health"`
	EventCount    int                        `json:"event_count"`
	SiteCount     int                        `json:"site_count"`
}

// BuildReport runs every analysis over a snapshot and assembles the
// dashboard report. It is pure: all inputs are in the snapshot.
func BuildReport(snap *snapshot.Snapshot, horizon int) *DashboardReport {
	alertCounts := analytics.CountAlertsBySite(snap.Events)

	sites := make([]SiteStatus, 0, len(snap.Sites))
	for _, site := range snap.Sites {
		sites = append(sites, buildSiteStatus(site, alertCounts[site.SiteID]))
	}

	return &DashboardReport{
		ReportID:      uuid.New().String(),
		GeneratedAt:   snap.TakenAt,
		RiskForecast:  analytics.ForecastSeries(snap.RiskHistory, horizon),
		Outbreaks:     analytics.AnalyzeCategoryTrends(snap.Events),
		Sites:         sites,
		Similarity:    analytics.BuildSimilarityMatrix(snap.Sites),
		NetworkHealth: analytics.ScoreNetworkHealth(snap.Sites),
		EventCount:    len(snap.Events),
		SiteCount:     len(snap.Sites),
	}
}

func buildSiteStatus(site analytics.SiteMetrics, alertCount int) SiteStatus {
	indicators := analytics.SiteIndicators{
		Accuracy:   site.LocalAccuracy,
		Drift:      site.DriftPercentage,
		AlertCount: alertCount,
	}

	driftStatus := analytics.DefaultDriftThresholds.Classify(site.DriftPercentage)

	// The heatmap band classifies the site's own 0-1 risk score; a site
	// that never reported one stays in the neutral band
	heatmap := analytics.SeverityLow
	if site.RiskScore != nil {
		heatmap = analytics.DefaultRiskBands.Classify(*site.RiskScore)
	}

	return SiteStatus{
		SiteID:          site.SiteID,
		Severity:        analytics.ClassifySiteSeverity(indicators),
		HeatmapSeverity: heatmap,
		RiskScore:       analytics.SiteRiskScore(indicators),
		DriftStatus:     string(driftStatus),
		DriftLabel:      driftStatus.Label(),
		LocalAccuracy:   site.LocalAccuracy,
		DriftPercentage: site.DriftPercentage,
		PatientCount:    site.PatientCount,
		AlertCount:      alertCount,
		Categories:      site.Categories,
	}
}
