package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/maintenance-tracker/internal/domain"
	"github.com/spec-kit/maintenance-tracker/internal/events"
	"github.com/spec-kit/maintenance-tracker/internal/observability"
	"github.com/spec-kit/maintenance-tracker/internal/projection"
	"github.com/spec-kit/maintenance-tracker/internal/repository"
	"github.com/spec-kit/maintenance-tracker/internal/workflow"
	"github.com/spec-kit/maintenance-tracker/pkg/errorutil"
)

// TicketService coordinates ticket mutations and role-scoped reads. All
// status changes funnel through the workflow engine inside the store's
// atomic Apply; nothing here writes status or assignee directly.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Issue         string
	Description   string
	Category      domain.TicketCategory
	EvidenceImage *string
}

// ListFilter narrows a role-scoped listing.
type ListFilter struct {
	Status domain.TicketStatus
}

// CreateTicket raises a new ticket for the acting teacher. The creator
// identity is taken from the actor, never from the payload.
func (s *TicketService) CreateTicket(ctx context.Context, actor domain.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	if actor.Role != domain.RoleTeacher {
		return nil, errorutil.NewForbidden("only teachers may raise tickets")
	}
	ticket, err := s.tickets.Create(ctx, repository.TicketCreateInput{
		Issue:         input.Issue,
		Description:   input.Description,
		Category:      input.Category,
		TeacherName:   actor.Name,
		EvidenceImage: input.EvidenceImage,
	})
	if err != nil {
		return nil, err
	}
	observability.RecordTicketCreated(string(ticket.Category))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Payload: events.TicketCreatedPayload{
			Issue:       ticket.Issue,
			Category:    ticket.Category,
			TeacherName: ticket.TeacherName,
		},
	})
	return ticket, nil
}

// Transition performs a workflow action on a ticket. The guard check and the
// resulting write happen under the store lock, so racing intents against the
// same ticket resolve to exactly one winner.
func (s *TicketService) Transition(ctx context.Context, actor domain.Actor, ticketID string, action workflow.Action, payload workflow.Payload) (*domain.Ticket, error) {
	if !workflow.IsValidAction(action) {
		return nil, errorutil.NewValidationError("unknown action", map[string]any{"action": string(action)})
	}

	var oldStatus domain.TicketStatus
	var patch workflow.Patch
	ticket, err := s.tickets.Apply(ctx, ticketID, func(t *domain.Ticket) error {
		oldStatus = t.Status
		decided, decideErr := workflow.Decide(t, actor, action, payload)
		if decideErr != nil {
			return decideErr
		}
		patch = decided
		t.Status = decided.Status
		if decided.AssignedTo != nil {
			t.AssignedTo = decided.AssignedTo
		}
		if decided.ProofImage != nil {
			t.ProofImage = decided.ProofImage
		}
		if decided.ClearWork {
			t.AssignedTo = nil
			t.ProofImage = nil
		}
		return nil
	})
	if err != nil {
		observability.RecordTransition(string(action), errorutil.ToDomainError(err).Code)
		return nil, err
	}
	observability.RecordTransition(string(action), "success")

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Payload: events.TicketStatusChangedPayload{
			Action:    string(action),
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		},
	})
	if patch.AssignedTo != nil {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: ticket.ID,
			Actor:    eventActor(actor),
			Payload:  events.TicketAssignedPayload{Assignee: *patch.AssignedTo},
		})
	}
	return ticket, nil
}

// PatchTicket edits collaborator-confirmed fields on the actor's own
// ticket. It is an escape hatch for description-style corrections only;
// status and assignee cannot be reached from here.
func (s *TicketService) PatchTicket(ctx context.Context, actor domain.Actor, ticketID string, input repository.TicketPatchInput) (*domain.Ticket, error) {
	return s.tickets.Apply(ctx, ticketID, func(t *domain.Ticket) error {
		if actor.Role != domain.RoleTeacher || t.TeacherName != actor.Name {
			return errorutil.NewForbidden("only the raising teacher may edit a ticket")
		}
		if input.Issue != nil {
			issue := strings.TrimSpace(*input.Issue)
			if issue == "" {
				return errorutil.NewValidationError("issue required", map[string]any{"field": "issue"})
			}
			t.Issue = issue
		}
		if input.Description != nil {
			description := strings.TrimSpace(*input.Description)
			if description == "" {
				return errorutil.NewValidationError("description required", map[string]any{"field": "description"})
			}
			t.Description = description
		}
		if input.EvidenceImage != nil {
			t.EvidenceImage = input.EvidenceImage
		}
		return nil
	})
}

// GetTicket fetches a single ticket.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.tickets.GetByID(ctx, ticketID)
}

// ListTickets returns the actor's role-scoped tickets, newest first,
// optionally narrowed to one status.
func (s *TicketService) ListTickets(ctx context.Context, actor domain.Actor, filter ListFilter) ([]domain.Ticket, error) {
	if filter.Status != "" && !domain.IsValidStatus(filter.Status) {
		return nil, errorutil.NewValidationError("unknown status", map[string]any{"status": string(filter.Status)})
	}
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, err
	}
	scoped := projection.ForRole(tickets, actor)
	return projection.FilterStatus(scoped, filter.Status), nil
}

// Counts tallies the actor's role-scoped tickets per status.
func (s *TicketService) Counts(ctx context.Context, actor domain.Actor) (map[domain.TicketStatus]int, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, err
	}
	return projection.CountByStatus(projection.ForRole(tickets, actor)), nil
}

// LegalActions enumerates the workflow actions the actor may attempt on the
// ticket in its current status.
func (s *TicketService) LegalActions(ctx context.Context, actor domain.Actor, ticketID string) ([]workflow.Action, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return workflow.LegalActions(ticket.Status, actor.Role), nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func eventActor(actor domain.Actor) events.Actor {
	return events.Actor{Name: actor.Name, Role: actor.Role}
}
