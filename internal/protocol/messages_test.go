package protocol

import (
	"strings"
	"testing"
)

func TestParseIdentifyMessage(t *testing.T) {
	data := []byte(`{"type":"identify","site_id":"phc-001","district":"Bengaluru Urban"}`)

	msg, err := ParseMessage(data)
	if err != nil {
		t.Fatalf("ParseMessage returned error: %v", err)
	}

	identify, ok := msg.(*IdentifyMessage)
	if !ok {
		t.Fatalf("expected *IdentifyMessage, got %T", msg)
	}
	if identify.SiteID != "phc-001" {
		t.Errorf("expected site_id phc-001, got %s", identify.SiteID)
	}
	if identify.District != "Bengaluru Urban" {
		t.Errorf("expected district Bengaluru Urban, got %s", identify.District)
	}
}

func TestParseIdentifyMissingSiteID(t *testing.T) {
	data := []byte(`{"type":"identify","district":"Bengaluru Urban"}`)

	_, err := ParseMessage(data)
	if err == nil {
		t.Fatal("expected error for identify without site_id")
	}
	if !strings.Contains(err.Error(), "site_id") {
		t.Errorf("expected site_id error, got: %v", err)
	}
}

func TestParseEventMessage(t *testing.T) {
	data := []byte(`{"type":"event","data":{"timestamp":"2026-03-01T10:00:00Z","category":"Dengue","severity":"HIGH","risk_score":0.8}}`)

	msg, err := ParseMessage(data)
	if err != nil {
		t.Fatalf("ParseMessage returned error: %v", err)
	}

	event, ok := msg.(*EventMessage)
	if !ok {
		t.Fatalf("expected *EventMessage, got %T", msg)
	}
	if event.Data.Category != "Dengue" {
		t.Errorf("expected category Dengue, got %s", event.Data.Category)
	}
	if event.Data.RiskScore == nil || *event.Data.RiskScore != 0.8 {
		t.Errorf("expected risk_score 0.8, got %v", event.Data.RiskScore)
	}
	if event.Data.AccuracyDrop != nil {
		t.Errorf("expected absent accuracy_drop to stay nil, got %v", *event.Data.AccuracyDrop)
	}
}

func TestParseEventInvalidRiskScore(t *testing.T) {
	data := []byte(`{"type":"event","data":{"timestamp":"2026-03-01T10:00:00Z","category":"Dengue","risk_score":1.5}}`)

	if _, err := ParseMessage(data); err == nil {
		t.Fatal("expected error for risk_score above 1")
	}
}

func TestParseEventBadTimestamp(t *testing.T) {
	data := []byte(`{"type":"event","data":{"timestamp":"yesterday","category":"Dengue"}}`)

	if _, err := ParseMessage(data); err == nil {
		t.Fatal("expected error for non-RFC3339 timestamp")
	}
}

func TestParseMetricsMessage(t *testing.T) {
	data := []byte(`{"type":"metrics","data":{"timestamp":"2026-03-01T10:00:00Z","local_accuracy":0.92,"drift_percentage":12.5,"patient_count":140}}`)

	msg, err := ParseMessage(data)
	if err != nil {
		t.Fatalf("ParseMessage returned error: %v", err)
	}

	metrics, ok := msg.(*MetricsMessage)
	if !ok {
		t.Fatalf("expected *MetricsMessage, got %T", msg)
	}
	if metrics.Data.LocalAccuracy == nil || *metrics.Data.LocalAccuracy != 0.92 {
		t.Errorf("expected local_accuracy 0.92, got %v", metrics.Data.LocalAccuracy)
	}
	if metrics.Data.PatientCount != 140 {
		t.Errorf("expected patient_count 140, got %d", metrics.Data.PatientCount)
	}
	if metrics.Data.RiskScore != nil {
		t.Errorf("expected absent risk_score to stay nil, got %v", *metrics.Data.RiskScore)
	}
}

func TestParseMetricsNegativeDrift(t *testing.T) {
	data := []byte(`{"type":"metrics","data":{"timestamp":"2026-03-01T10:00:00Z","drift_percentage":-3}}`)

	if _, err := ParseMessage(data); err == nil {
		t.Fatal("expected error for negative drift_percentage")
	}
}

func TestParseKeepalive(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"type":"keepalive"}`))
	if err != nil {
		t.Fatalf("ParseMessage returned error: %v", err)
	}
	if _, ok := msg.(*KeepaliveMessage); !ok {
		t.Fatalf("expected *KeepaliveMessage, got %T", msg)
	}
}

func TestParseUnknownType(t *testing.T) {
	if _, err := ParseMessage([]byte(`{"type":"telemetry"}`)); err == nil {
		t.Fatal("expected error for unknown message type")
	}
}

func TestParseInvalidJSON(t *testing.T) {
	if _, err := ParseMessage([]byte(`{"type":`)); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
}

func TestEventDataParse(t *testing.T) {
	d := EventData{
		Timestamp: "2026-03-01T10:00:00Z",
		Category:  "Dengue",
	}

	parsed, err := d.Parse()
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if parsed.Timestamp.Year() != 2026 || parsed.Timestamp.Month() != 3 {
		t.Errorf("unexpected parsed timestamp: %v", parsed.Timestamp)
	}
	if parsed.RiskScore != nil {
		t.Errorf("expected nil risk score, got %v", *parsed.RiskScore)
	}
}
