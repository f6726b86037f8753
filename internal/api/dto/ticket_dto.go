package dto

import (
	"time"

	"github.com/spec-kit/maintenance-tracker/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Issue         string  `json:"issue"`
	Category      string  `json:"category"`
	Description   string  `json:"description"`
	EvidenceImage *string `json:"evidence_image"`
}

// PatchTicketRequest carries optional field edits. Status and assignee are
// intentionally not representable here.
type PatchTicketRequest struct {
	Issue         *string `json:"issue"`
	Description   *string `json:"description"`
	EvidenceImage *string `json:"evidence_image"`
}

// TransitionRequest payload for workflow actions.
type TransitionRequest struct {
	Action     string `json:"action"`
	Assignee   string `json:"assignee"`
	ProofImage string `json:"proof_image"`
}

// TicketResponse is the wire form of a ticket.
type TicketResponse struct {
	ID               string              `json:"id"`
	Issue            string              `json:"issue"`
	Description      string              `json:"description"`
	Category         string              `json:"category"`
	Status           domain.TicketStatus `json:"status"`
	TeacherName      string              `json:"teacher_name"`
	AssignedTo       *string             `json:"assigned_to,omitempty"`
	EvidenceImage    *string             `json:"evidence_image,omitempty"`
	ProofImage       *string             `json:"proof_image,omitempty"`
	LastUpdated      time.Time           `json:"last_updated"`
	TimelinePosition int                 `json:"timeline_position"`
}

// TicketDetailResponse adds the caller's legal actions to a ticket.
type TicketDetailResponse struct {
	TicketResponse
	LegalActions []string `json:"legal_actions"`
}

// StatsResponse reports per-status counts over the caller's scope.
type StatsResponse struct {
	Counts map[domain.TicketStatus]int `json:"counts"`
	Total  int                         `json:"total"`
}
