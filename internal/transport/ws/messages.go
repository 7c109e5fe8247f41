package ws

import (
	"encoding/json"
	"time"

	"secretwheel/internal/domain"
)

// MessageType represents the type of WebSocket message
type MessageType string

// Client → Server message types
const (
	MsgAddLabel     MessageType = "add_label"
	MsgSpin         MessageType = "spin"
	MsgSpinComplete MessageType = "spin_complete"
	MsgCancelSpin   MessageType = "cancel_spin"
	MsgResetWheel   MessageType = "reset_wheel"
	MsgPing         MessageType = "ping"
)

// Server → Client message types. Wheel events (SEGMENT_ADDED, SPIN_STARTED, ...)
// are sent as domain.WheelEvent values.
const (
	MsgConnected MessageType = "connected"
	MsgError     MessageType = "error"
	MsgPong      MessageType = "pong"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewServerMessage creates a new server message with current timestamp
func NewServerMessage(msgType MessageType, payload interface{}) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Client message payloads

// AddLabelPayload is the payload for add_label message
type AddLabelPayload struct {
	Text string `json:"text"`
}

// SpinRefPayload is the payload for spin_complete and cancel_spin messages
type SpinRefPayload struct {
	SpinID string `json:"spinId"`
}

// Server message payloads

// ConnectedPayload is the payload for connected message
type ConnectedPayload struct {
	ClientID string                    `json:"clientId"`
	WheelID  string                    `json:"wheelId"`
	State    *domain.WheelStatePayload `json:"state"`
}

// ErrorPayload is the payload for error message
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeInvalidMessage   = "INVALID_MESSAGE"
	ErrCodeWheelFull        = "WHEEL_FULL"
	ErrCodeLabelTooLong     = "LABEL_TOO_LONG"
	ErrCodeSpinInProgress   = "SPIN_IN_PROGRESS"
	ErrCodeNoSpinInProgress = "NO_SPIN_IN_PROGRESS"
	ErrCodeStaleSpin        = "STALE_SPIN"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)
