package protocol

import (
	"encoding/json"
	"time"
)

// EventEnvelope is the internal Kafka format for site event submissions
type EventEnvelope struct {
	ConnectionID string    `json:"connection_id"`
	SiteID       string    `json:"site_id"`
	District     string    `json:"district"`
	ReceivedAt   time.Time `json:"received_at"`
	Data         EventData `json:"data"`
}

// MetricsEnvelope is the internal Kafka format for site model metrics
type MetricsEnvelope struct {
	ConnectionID string      `json:"connection_id"`
	SiteID       string      `json:"site_id"`
	District     string      `json:"district"`
	ReceivedAt   time.Time   `json:"received_at"`
	Data         MetricsData `json:"data"`
}

// ParsedEvent is EventData with its timestamp parsed
type ParsedEvent struct {
	Timestamp    time.Time
	Category     string
	Severity     string
	RiskScore    *float64
	AccuracyDrop *float64
	ModelVersion string
}

// Parse converts EventData to ParsedEvent
func (d *EventData) Parse() (*ParsedEvent, error) {
	ts, err := time.Parse(time.RFC3339, d.Timestamp)
	if err != nil {
		return nil, err
	}

	return &ParsedEvent{
		Timestamp:    ts,
		Category:     d.Category,
		Severity:     d.Severity,
		RiskScore:    d.RiskScore,
		AccuracyDrop: d.AccuracyDrop,
		ModelVersion: d.ModelVersion,
	}, nil
}

// ParsedMetrics is MetricsData with its timestamp parsed
type ParsedMetrics struct {
	Timestamp       time.Time
	LocalAccuracy   *float64
	DriftPercentage *float64
	RiskScore       *float64
	Severity        string
	PatientCount    int
	ModelVersion    string
}

// Parse converts MetricsData to ParsedMetrics
func (d *MetricsData) Parse() (*ParsedMetrics, error) {
	ts, err := time.Parse(time.RFC3339, d.Timestamp)
	if err != nil {
		return nil, err
	}

	return &ParsedMetrics{
		Timestamp:       ts,
		LocalAccuracy:   d.LocalAccuracy,
		DriftPercentage: d.DriftPercentage,
		RiskScore:       d.RiskScore,
		Severity:        d.Severity,
		PatientCount:    d.PatientCount,
		ModelVersion:    d.ModelVersion,
	}, nil
}

// OutbreakNotification is the message format for outbreak alerts
type OutbreakNotification struct {
	Type       string    `json:"type"` // OUTBREAK_DETECTED, OUTBREAK_CLEARED
	Category   string    `json:"category"`
	Severity   string    `json:"severity"`
	Slope      float64   `json:"slope"`
	LastCount  float64   `json:"last_count"`
	StartTime  time.Time `json:"start_time"`
	OutbreakID int64     `json:"outbreak_id,omitempty"`
}

const (
	OutbreakTypeDetected = "OUTBREAK_DETECTED"
	OutbreakTypeCleared  = "OUTBREAK_CLEARED"
)

// EncodeEventEnvelope encodes an EventEnvelope to JSON
func EncodeEventEnvelope(msg *EventEnvelope) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeEventEnvelope decodes JSON to EventEnvelope
func DecodeEventEnvelope(data []byte) (*EventEnvelope, error) {
	var msg EventEnvelope
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// EncodeMetricsEnvelope encodes a MetricsEnvelope to JSON
func EncodeMetricsEnvelope(msg *MetricsEnvelope) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMetricsEnvelope decodes JSON to MetricsEnvelope
func DecodeMetricsEnvelope(data []byte) (*MetricsEnvelope, error) {
	var msg MetricsEnvelope
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// EncodeOutbreakNotification encodes an OutbreakNotification to JSON
func EncodeOutbreakNotification(alert *OutbreakNotification) ([]byte, error) {
	return json.Marshal(alert)
}

// DecodeOutbreakNotification decodes JSON to OutbreakNotification
func DecodeOutbreakNotification(data []byte) (*OutbreakNotification, error) {
	var alert OutbreakNotification
	if err := json.Unmarshal(data, &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}
