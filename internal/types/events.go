package types

import "time"

// EventType represents the type of real-time event
type EventType string

const (
	EventVideoSubmitted EventType = "video.submitted"
	EventVideoExpired   EventType = "video.expired"
)

// Event represents a real-time event that can be sent over WebSocket
type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// VideoSubmittedEvent is broadcast when a submission completes.
type VideoSubmittedEvent struct {
	Video       *Video `json:"video"`
	SubmittedAt string `json:"submitted_at"`
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
