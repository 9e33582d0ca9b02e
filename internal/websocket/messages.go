// Package websocket provides the real-time dashboard feed for warden.
// Connected clients receive live agent status updates and activity log
// entries as they happen.
package websocket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/warden/warden/internal/agent"
	"github.com/warden/warden/internal/eventlog"
)

// MessageType defines the type of WebSocket message.
type MessageType string

const (
	// Client -> Server message types
	MessageTypePing MessageType = "ping"

	// Server -> Client message types
	MessageTypePong         MessageType = "pong"
	MessageTypeError        MessageType = "error"
	MessageTypeStatusUpdate MessageType = "status_update"
	MessageTypeLogEntry     MessageType = "log_entry"
)

// Message represents a WebSocket message.
type Message struct {
	// Type is the message type.
	Type MessageType `json:"type"`
	// Payload contains the message data.
	Payload json.RawMessage `json:"payload,omitempty"`
	// Timestamp is when the message was created.
	Timestamp time.Time `json:"timestamp"`
	// ID is a unique message identifier.
	ID string `json:"id,omitempty"`
}

// NewMessage creates a new message with the given type and payload.
func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		var err error
		payloadBytes, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}

	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UTC(),
		ID:        uuid.New().String(),
	}, nil
}

// Bytes serializes the message to JSON bytes.
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage deserializes a message from JSON bytes.
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	// Code is the error code.
	Code string `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
}

// StatusUpdatePayload is the payload for status update messages.
type StatusUpdatePayload struct {
	Status agent.Snapshot `json:"status"`
}

// LogEntryPayload is the payload for log entry messages.
type LogEntryPayload struct {
	Entry eventlog.Entry `json:"entry"`
}
