package queue

import (
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/asengupta/surveillance-server/internal/database"
	"github.com/asengupta/surveillance-server/internal/protocol"
)

// NewEventHandler returns a handler that persists event envelopes,
// registering the site on first sight
func NewEventHandler(db *database.DB) MessageHandler {
	return func(msg kafka.Message) error {
		envelope, err := protocol.DecodeEventEnvelope(msg.Value)
		if err != nil {
			return fmt.Errorf("failed to decode event envelope: %w", err)
		}

		parsed, err := envelope.Data.Parse()
		if err != nil {
			return fmt.Errorf("failed to parse event data: %w", err)
		}

		if err := ensureSite(db, envelope.SiteID, envelope.District); err != nil {
			return err
		}

		record := &database.EventRecord{
			SiteID:       envelope.SiteID,
			Timestamp:    parsed.Timestamp,
			Category:     parsed.Category,
			Severity:     optionalString(parsed.Severity),
			RiskScore:    parsed.RiskScore,
			AccuracyDrop: parsed.AccuracyDrop,
			ModelVersion: optionalString(parsed.ModelVersion),
			ReceivedAt:   envelope.ReceivedAt,
		}

		if err := db.InsertEvent(record); err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}

		return nil
	}
}

// NewMetricsHandler returns a handler that persists site metrics envelopes
func NewMetricsHandler(db *database.DB) MessageHandler {
	return func(msg kafka.Message) error {
		envelope, err := protocol.DecodeMetricsEnvelope(msg.Value)
		if err != nil {
			return fmt.Errorf("failed to decode metrics envelope: %w", err)
		}

		parsed, err := envelope.Data.Parse()
		if err != nil {
			return fmt.Errorf("failed to parse metrics data: %w", err)
		}

		if err := ensureSite(db, envelope.SiteID, envelope.District); err != nil {
			return err
		}

		record := &database.SiteMetricsRecord{
			SiteID:          envelope.SiteID,
			ReportedAt:      parsed.Timestamp,
			LocalAccuracy:   parsed.LocalAccuracy,
			DriftPercentage: parsed.DriftPercentage,
			RiskScore:       parsed.RiskScore,
			Severity:        optionalString(parsed.Severity),
			PatientCount:    parsed.PatientCount,
			ModelVersion:    optionalString(parsed.ModelVersion),
			ReceivedAt:      envelope.ReceivedAt,
		}

		if err := db.InsertSiteMetrics(record); err != nil {
			return fmt.Errorf("failed to insert site metrics: %w", err)
		}

		return nil
	}
}

func ensureSite(db *database.DB, siteID, district string) error {
	site, err := db.GetSite(siteID)
	if err != nil {
		return fmt.Errorf("failed to get site: %w", err)
	}

	if site == nil {
		newSite := &database.Site{
			SiteID:   siteID,
			District: district,
		}
		if err := db.UpsertSite(newSite); err != nil {
			return fmt.Errorf("failed to create site: %w", err)
		}
	}

	return nil
}

// optionalString maps an empty string to a NULL column value
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
