package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-tracker/internal/api/dto"
	"github.com/spec-kit/maintenance-tracker/internal/auth"
	"github.com/spec-kit/maintenance-tracker/internal/domain"
	"github.com/spec-kit/maintenance-tracker/internal/projection"
	"github.com/spec-kit/maintenance-tracker/internal/repository"
	"github.com/spec-kit/maintenance-tracker/internal/service"
	"github.com/spec-kit/maintenance-tracker/internal/workflow"
	"github.com/spec-kit/maintenance-tracker/pkg/errorutil"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("session required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.CreateTicket(c.Context(), actor, service.TicketCreateInput{
		Issue:         req.Issue,
		Description:   req.Description,
		Category:      domain.TicketCategory(req.Category),
		EvidenceImage: req.EvidenceImage,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("session required")
	}
	filter := service.ListFilter{Status: domain.TicketStatus(c.Query("status"))}
	tickets, err := h.service.ListTickets(c.Context(), actor, filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("session required")
	}
	ticket, err := h.service.GetTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	actions := workflow.LegalActions(ticket.Status, actor.Role)
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, actions)})
}

// PatchTicket PATCH /tickets/:id.
func (h *TicketsHandler) PatchTicket(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("session required")
	}
	var req dto.PatchTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.PatchTicket(c.Context(), actor, c.Params("id"), repository.TicketPatchInput{
		Issue:         req.Issue,
		Description:   req.Description,
		EvidenceImage: req.EvidenceImage,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Transition POST /tickets/:id/transitions.
func (h *TicketsHandler) Transition(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("session required")
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Transition(c.Context(), actor, c.Params("id"), workflow.Action(req.Action), workflow.Payload{
		Assignee:   req.Assignee,
		ProofImage: req.ProofImage,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListActions GET /tickets/:id/actions.
func (h *TicketsHandler) ListActions(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("session required")
	}
	actions, err := h.service.LegalActions(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": actionStrings(actions)})
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:               ticket.ID,
		Issue:            ticket.Issue,
		Description:      ticket.Description,
		Category:         string(ticket.Category),
		Status:           ticket.Status,
		TeacherName:      ticket.TeacherName,
		AssignedTo:       ticket.AssignedTo,
		EvidenceImage:    ticket.EvidenceImage,
		ProofImage:       ticket.ProofImage,
		LastUpdated:      ticket.LastUpdated,
		TimelinePosition: projection.TimelinePosition(ticket.Status),
	}
}

func ticketDetail(ticket *domain.Ticket, actions []workflow.Action) dto.TicketDetailResponse {
	return dto.TicketDetailResponse{
		TicketResponse: ticketResponse(ticket),
		LegalActions:   actionStrings(actions),
	}
}

func actionStrings(actions []workflow.Action) []string {
	out := make([]string, 0, len(actions))
	for _, action := range actions {
		out = append(out, string(action))
	}
	return out
}
