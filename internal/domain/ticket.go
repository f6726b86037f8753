package domain

import "time"

// TicketStatus enumerates lifecycle states for maintenance tickets.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "PENDING"
	TicketStatusApproved   TicketStatus = "APPROVED"
	TicketStatusAssigned   TicketStatus = "ASSIGNED"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusCompleted  TicketStatus = "COMPLETED"
	TicketStatusClosed     TicketStatus = "CLOSED"
	TicketStatusReopened   TicketStatus = "REOPENED"
	TicketStatusRejected   TicketStatus = "REJECTED"
)

// Statuses lists every valid ticket status.
func Statuses() []TicketStatus {
	return []TicketStatus{
		TicketStatusPending,
		TicketStatusApproved,
		TicketStatusAssigned,
		TicketStatusInProgress,
		TicketStatusCompleted,
		TicketStatusClosed,
		TicketStatusReopened,
		TicketStatusRejected,
	}
}

// IsValidStatus reports whether s is a known status.
func IsValidStatus(s TicketStatus) bool {
	for _, candidate := range Statuses() {
		if candidate == s {
			return true
		}
	}
	return false
}

// TicketCategory classifies the kind of issue reported.
type TicketCategory string

const (
	CategoryHardware  TicketCategory = "HARDWARE"
	CategorySoftware  TicketCategory = "SOFTWARE"
	CategoryFurniture TicketCategory = "FURNITURE"
	CategoryAppliance TicketCategory = "APPLIANCE"
	CategoryNetwork   TicketCategory = "NETWORK"
	CategoryOther     TicketCategory = "OTHER"
)

// IsValidCategory reports whether c is a known category.
func IsValidCategory(c TicketCategory) bool {
	switch c {
	case CategoryHardware, CategorySoftware, CategoryFurniture, CategoryAppliance, CategoryNetwork, CategoryOther:
		return true
	default:
		return false
	}
}

// Ticket is the aggregate for maintenance requests.
//
// Status and AssignedTo change only through workflow transitions; ProofImage
// is written only by a Complete transition. EvidenceImage and ProofImage are
// opaque attachment handles owned by collaborators, never dereferenced here.
type Ticket struct {
	ID            string
	Issue         string
	Description   string
	Category      TicketCategory
	Status        TicketStatus
	TeacherName   string
	AssignedTo    *string
	EvidenceImage *string
	ProofImage    *string
	LastUpdated   time.Time
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	copied := *t
	copied.AssignedTo = clonePtr(t.AssignedTo)
	copied.EvidenceImage = clonePtr(t.EvidenceImage)
	copied.ProofImage = clonePtr(t.ProofImage)
	return &copied
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
