package events

import (
	"time"

	"github.com/spec-kit/maintenance-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Name string      `json:"name"`
	Role domain.Role `json:"role"`
}

// Event represents a domain event emitted after a successful mutation.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Issue       string                `json:"issue"`
	Category    domain.TicketCategory `json:"category"`
	TeacherName string                `json:"teacher_name"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	Action    string              `json:"action"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	Assignee string `json:"assignee"`
}
