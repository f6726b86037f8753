package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-tracker/internal/api/dto"
	"github.com/spec-kit/maintenance-tracker/internal/auth"
	"github.com/spec-kit/maintenance-tracker/internal/domain"
	"github.com/spec-kit/maintenance-tracker/pkg/errorutil"
)

// SessionHandler issues session tokens for a self-selected role.
type SessionHandler struct {
	tokens *auth.TokenManager
}

// NewSessionHandler constructs handler.
func NewSessionHandler(tokens *auth.TokenManager) *SessionHandler {
	return &SessionHandler{tokens: tokens}
}

// Create POST /session.
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	name := strings.TrimSpace(req.Name)
	role := domain.Role(strings.ToUpper(strings.TrimSpace(req.Role)))
	if name == "" {
		return errorutil.NewValidationError("name required", map[string]any{"field": "name"})
	}
	if !domain.IsValidRole(role) {
		return errorutil.NewValidationError("unknown role", map[string]any{"role": req.Role})
	}

	token, expiresAt, err := h.tokens.IssueSession(name, role)
	if err != nil {
		return errorutil.NewInternalError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.SessionResponse{
		Token:     token,
		Name:      name,
		Role:      string(role),
		ExpiresAt: expiresAt,
	}})
}
