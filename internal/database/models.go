package database

import (
	"time"
)

// Site represents a participating reporting unit (PHC)
type Site struct {
	SiteID    string
	District  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EventRecord represents a stored surveillance event. Optional readings are
// nullable columns.
type EventRecord struct {
	ID           int64
	SiteID       string
	Timestamp    time.Time
	Category     string
	Severity     *string
	RiskScore    *float64
	AccuracyDrop *float64
	ModelVersion *string
	ReceivedAt   time.Time
}

// SiteMetricsRecord represents a stored local-model snapshot for a site
type SiteMetricsRecord struct {
	ID              int64
	SiteID          string
	ReportedAt      time.Time
	LocalAccuracy   *float64
	DriftPercentage *float64
	RiskScore       *float64
	Severity        *string
	PatientCount    int
	ModelVersion    *string
	ReceivedAt      time.Time
}

// OutbreakLog represents a logged outbreak episode
type OutbreakLog struct {
	OutbreakID  int64
	Category    string
	Severity    string
	Slope       float64
	PeakCount   float64
	TrendConfig string // JSON
	StartTime   time.Time
	EndTime     *time.Time
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const (
	OutbreakStatusActive  = "ACTIVE"
	OutbreakStatusCleared = "CLEARED"
)

// DailyRisk is one day's average risk across all sites, on a 0-100 scale
type DailyRisk struct {
	Date    time.Time
	AvgRisk float64
}
