package domain

import "time"

// EventType represents the type of wheel event
type EventType string

const (
	EventSegmentAdded  EventType = "SEGMENT_ADDED"
	EventWheelReset    EventType = "WHEEL_RESET"
	EventSpinStarted   EventType = "SPIN_STARTED"
	EventSpinResolved  EventType = "SPIN_RESOLVED"
	EventSpinRejected  EventType = "SPIN_REJECTED"
	EventSpinCancelled EventType = "SPIN_CANCELLED"
)

// WheelEvent represents an event that occurred on a wheel
type WheelEvent struct {
	Type      EventType   `json:"type"`
	WheelID   string      `json:"wheelId"`
	ClientID  string      `json:"clientId,omitempty"` // If event is client-specific
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a new wheel event
func NewEvent(eventType EventType, wheelID string, payload interface{}) *WheelEvent {
	return &WheelEvent{
		Type:      eventType,
		WheelID:   wheelID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// NewClientEvent creates a new client-specific wheel event
func NewClientEvent(eventType EventType, wheelID, clientID string, payload interface{}) *WheelEvent {
	return &WheelEvent{
		Type:      eventType,
		WheelID:   wheelID,
		ClientID:  clientID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// Payload types for different events

// WheelStatePayload is the full wheel state sent on connect and by the REST API
type WheelStatePayload struct {
	Segments    []Segment           `json:"segments"`
	SpinState   SpinState           `json:"spinState"`
	CurrentSpin *SpinStartedPayload `json:"currentSpin,omitempty"`
	History     []*SpinResult       `json:"history"`
}

// SegmentAddedPayload is sent when a label is appended
type SegmentAddedPayload struct {
	Segment  Segment   `json:"segment"`
	Segments []Segment `json:"segments"`
}

// SpinStartedPayload tells the renderer how to animate the spin
type SpinStartedPayload struct {
	SpinID             string  `json:"spinId"`
	TargetAngleDegrees float64 `json:"targetAngleDegrees"`
	DurationMs         int64   `json:"durationMs"`
	SegmentCount       int     `json:"segmentCount"`
}

// SpinRejectedPayload is sent to the client whose spin request was refused
type SpinRejectedPayload struct {
	Reason RejectReason `json:"reason"`
}

// SpinCancelledPayload is sent when a spin ends without a result
type SpinCancelledPayload struct {
	SpinID string `json:"spinId"`
	Reason string `json:"reason"`
}

// Cancellation reasons
const (
	CancelRequested = "requested"
	CancelTimeout   = "timeout"
)
