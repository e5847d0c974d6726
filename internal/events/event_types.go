package events

import (
	"time"

	"github.com/queuely/queue-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventQueueCreated       EventType = "queue_created"
	EventQueueStatusChanged EventType = "queue_status_changed"
	EventQueueDeleted       EventType = "queue_deleted"
	EventMemberJoined       EventType = "queue_member_joined"
	EventMemberLeft         EventType = "queue_member_left"
	EventMemberCalled       EventType = "queue_member_called"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	QueueID   string      `json:"queue_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// QueueCreatedPayload payload.
type QueueCreatedPayload struct {
	Name     string               `json:"name"`
	Category domain.QueueCategory `json:"category"`
	Capacity int                  `json:"capacity"`
}

// QueueStatusChangedPayload payload. Waiting holds the user ids still in line.
type QueueStatusChangedPayload struct {
	OldStatus domain.QueueStatus `json:"old_status"`
	NewStatus domain.QueueStatus `json:"new_status"`
	Waiting   []string           `json:"waiting"`
}

// MemberJoinedPayload payload.
type MemberJoinedPayload struct {
	UserID   string `json:"user_id"`
	Position int    `json:"position"`
}

// MemberLeftPayload payload. Remaining lists who moved up after the removal.
type MemberLeftPayload struct {
	UserID           string              `json:"user_id"`
	PreviousPosition int                 `json:"previous_position"`
	Remaining        []domain.Membership `json:"remaining"`
}

// MemberCalledPayload payload.
type MemberCalledPayload struct {
	UserID    string              `json:"user_id"`
	Position  int                 `json:"position"`
	WaitTime  int                 `json:"wait_time"`
	Remaining []domain.Membership `json:"remaining"`
}
