package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-portal/internal/api/dto"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/service"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

// AuditHandler exposes the forensic trail to operators.
type AuditHandler struct {
	audit *service.AuditTrail
}

// NewAuditHandler constructs handler.
func NewAuditHandler(audit *service.AuditTrail) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// ByActor handles GET /admin/audit/actor/:id.
func (h *AuditHandler) ByActor(c *fiber.Ctx) error {
	entries, err := h.audit.ListByActor(c.UserContext(), c.Params("id"),
		c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewAuditEntryResponses(entries)})
}

// ByTarget handles GET /admin/audit/target/:type/:id.
func (h *AuditHandler) ByTarget(c *fiber.Ctx) error {
	targetType := domain.AuditTargetType(c.Params("type"))
	switch targetType {
	case domain.AuditTargetTicket, domain.AuditTargetAccount:
	default:
		return apperrors.NewValidationError("invalid target type", map[string]any{"type": c.Params("type")})
	}

	entries, err := h.audit.ListByTarget(c.UserContext(), targetType, c.Params("id"),
		c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewAuditEntryResponses(entries)})
}
