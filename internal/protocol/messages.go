package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType represents the type of message
type MessageType string

const (
	// Client to Server
	MsgTypeIdentify  MessageType = "identify"
	MsgTypeEvent     MessageType = "event"
	MsgTypeMetrics   MessageType = "metrics"
	MsgTypeKeepalive MessageType = "keepalive"

	// Server to Client
	MsgTypeAck MessageType = "ack"
)

// BaseMessage is the common structure for all messages
type BaseMessage struct {
	Type MessageType `json:"type"`
}

// IdentifyMessage is sent by a site on connection
type IdentifyMessage struct {
	Type     MessageType `json:"type"`
	SiteID   string      `json:"site_id"`
	District string      `json:"district"`
}

// EventData is one surveillance alert raised by a site's local model.
// Optional numeric fields are pointers so an omitted reading stays
// distinguishable from a zero reading.
type EventData struct {
	Timestamp    string   `json:"timestamp"`
	Category     string   `json:"category"`
	Severity     string   `json:"severity,omitempty"`
	RiskScore    *float64 `json:"risk_score,omitempty"`
	AccuracyDrop *float64 `json:"accuracy_drop_percentage,omitempty"`
	ModelVersion string   `json:"model_version,omitempty"`
}

// EventMessage is sent by a site whenever its local model raises an alert
type EventMessage struct {
	Type MessageType `json:"type"`
	Data EventData   `json:"data"`
}

// MetricsData is a periodic snapshot of a site's local model
type MetricsData struct {
	Timestamp       string   `json:"timestamp"`
	LocalAccuracy   *float64 `json:"local_accuracy,omitempty"`
	DriftPercentage *float64 `json:"drift_percentage,omitempty"`
	RiskScore       *float64 `json:"risk_score,omitempty"`
	Severity        string   `json:"severity,omitempty"`
	PatientCount    int      `json:"patient_count"`
	ModelVersion    string   `json:"model_version,omitempty"`
}

// MetricsMessage is sent by a site after each local training round
type MetricsMessage struct {
	Type MessageType `json:"type"`
	Data MetricsData `json:"data"`
}

// KeepaliveMessage is sent by the client every 30-60 seconds
type KeepaliveMessage struct {
	Type MessageType `json:"type"`
}

// AckMessage is sent by the server in response to messages
type AckMessage struct {
	Type   MessageType `json:"type"`
	Status string      `json:"status"`
}

// AckStatus constants
const (
	AckStatusIdentified = "identified"
	AckStatusAlive      = "alive"
	AckStatusError      = "error"
)

// ParseMessage parses a JSON line into the appropriate message type
func ParseMessage(data []byte) (interface{}, error) {
	var base BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	switch base.Type {
	case MsgTypeIdentify:
		var msg IdentifyMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("invalid identify message: %w", err)
		}
		if err := validateIdentify(&msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case MsgTypeEvent:
		var msg EventMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("invalid event message: %w", err)
		}
		if err := validateEvent(&msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case MsgTypeMetrics:
		var msg MetricsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("invalid metrics message: %w", err)
		}
		if err := validateMetrics(&msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case MsgTypeKeepalive:
		var msg KeepaliveMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("invalid keepalive message: %w", err)
		}
		return &msg, nil

	default:
		return nil, fmt.Errorf("unknown message type: %s", base.Type)
	}
}

// validateIdentify validates an identify message
func validateIdentify(msg *IdentifyMessage) error {
	if msg.SiteID == "" {
		return fmt.Errorf("site_id is required")
	}
	if msg.District == "" {
		return fmt.Errorf("district is required")
	}
	return nil
}

// validateEvent validates an event message
func validateEvent(msg *EventMessage) error {
	if msg.Data.Timestamp == "" {
		return fmt.Errorf("timestamp is required")
	}
	if _, err := time.Parse(time.RFC3339, msg.Data.Timestamp); err != nil {
		return fmt.Errorf("invalid timestamp format (must be RFC3339): %w", err)
	}
	if msg.Data.Category == "" {
		return fmt.Errorf("category is required")
	}
	if msg.Data.RiskScore != nil && (*msg.Data.RiskScore < 0 || *msg.Data.RiskScore > 1) {
		return fmt.Errorf("risk_score must be between 0 and 1")
	}
	return nil
}

// validateMetrics validates a metrics message
func validateMetrics(msg *MetricsMessage) error {
	if msg.Data.Timestamp == "" {
		return fmt.Errorf("timestamp is required")
	}
	if _, err := time.Parse(time.RFC3339, msg.Data.Timestamp); err != nil {
		return fmt.Errorf("invalid timestamp format (must be RFC3339): %w", err)
	}
	if msg.Data.LocalAccuracy != nil && (*msg.Data.LocalAccuracy < 0 || *msg.Data.LocalAccuracy > 1) {
		return fmt.Errorf("local_accuracy must be between 0 and 1")
	}
	if msg.Data.DriftPercentage != nil && *msg.Data.DriftPercentage < 0 {
		return fmt.Errorf("drift_percentage must not be negative")
	}
	if msg.Data.PatientCount < 0 {
		return fmt.Errorf("patient_count must not be negative")
	}
	return nil
}

// EncodeMessage encodes a message to JSON
func EncodeMessage(msg interface{}) ([]byte, error) {
	return json.Marshal(msg)
}

// NewAckMessage creates a new acknowledgment message
func NewAckMessage(status string) *AckMessage {
	return &AckMessage{
		Type:   MsgTypeAck,
		Status: status,
	}
}
