package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-tracker/internal/api/dto"
	"github.com/spec-kit/maintenance-tracker/internal/auth"
	"github.com/spec-kit/maintenance-tracker/internal/service"
	"github.com/spec-kit/maintenance-tracker/pkg/errorutil"
)

// StatsHandler serves dashboard aggregates.
type StatsHandler struct {
	service *service.TicketService
}

// NewStatsHandler constructs handler.
func NewStatsHandler(ticketService *service.TicketService) *StatsHandler {
	return &StatsHandler{service: ticketService}
}

// Counts GET /tickets/stats.
func (h *StatsHandler) Counts(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("session required")
	}
	counts, err := h.service.Counts(c.Context(), actor)
	if err != nil {
		return err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return c.JSON(fiber.Map{"data": dto.StatsResponse{Counts: counts, Total: total}})
}
