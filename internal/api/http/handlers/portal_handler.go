package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-portal/internal/api/dto"
	"github.com/spec-kit/helpdesk-portal/internal/auth"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/repository"
	"github.com/spec-kit/helpdesk-portal/internal/service"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

// PortalHandler exposes the department self-service surface. All routes run
// behind RequireAuthenticated plus RequireRole(department), and the workflow
// layer scopes every read to the caller's own department.
type PortalHandler struct {
	workflow *service.WorkflowService
}

// NewPortalHandler constructs handler.
func NewPortalHandler(workflow *service.WorkflowService) *PortalHandler {
	return &PortalHandler{workflow: workflow}
}

// Create handles POST /portal/tickets. Priority and department in the
// payload are ignored for department actors.
func (h *PortalHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewLoginRequired()
	}

	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details := dto.Check(req); details != nil {
		return apperrors.NewValidationError("invalid payload", details)
	}

	ticket, err := h.workflow.CreateTicket(c.UserContext(), principal.Account, service.TicketInput{
		Title:        req.Title,
		Description:  req.Description,
		ReporterName: req.ReporterName,
	}, c.IP())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// List handles GET /portal/tickets.
func (h *PortalHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewLoginRequired()
	}

	filter := repository.TicketFilter{
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}
	if status := c.Query("status"); status != "" {
		filter.Statuses = []domain.TicketStatus{domain.TicketStatus(status)}
	}

	tickets, err := h.workflow.ListTickets(c.UserContext(), principal.Account, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// Get handles GET /portal/tickets/:id.
func (h *PortalHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewLoginRequired()
	}

	ticket, err := h.workflow.GetTicket(c.UserContext(), principal.Account, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// UpdateStatus handles POST /portal/tickets/:id/status. Department actors
// may only move a ticket into waiting_on_admin or closed.
func (h *PortalHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewLoginRequired()
	}

	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details := dto.Check(req); details != nil {
		return apperrors.NewValidationError("invalid payload", details)
	}

	ticket, err := h.workflow.UpdateStatus(c.UserContext(), principal.Account, c.Params("id"),
		domain.TicketStatus(req.Status), c.IP())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// AddComment handles POST /portal/tickets/:id/comments. The comment is
// always public, and commenting on an own open ticket moves it to
// waiting_on_admin.
func (h *PortalHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewLoginRequired()
	}

	var req dto.AddCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details := dto.Check(req); details != nil {
		return apperrors.NewValidationError("invalid payload", details)
	}

	comment, ticket, err := h.workflow.AddComment(c.UserContext(), principal.Account, c.Params("id"),
		req.Content, domain.CommentVisibilityPublic, c.IP())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"comment": dto.NewCommentResponses([]domain.Comment{*comment})[0],
		"ticket":  dto.NewTicketResponse(ticket),
	}})
}

// ListComments handles GET /portal/tickets/:id/comments. Internal notes are
// excluded by the query itself, never by post-filtering.
func (h *PortalHandler) ListComments(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewLoginRequired()
	}

	if _, err := h.workflow.GetTicket(c.UserContext(), principal.Account, c.Params("id")); err != nil {
		return err
	}
	comments, err := h.workflow.ListComments(c.UserContext(), c.Params("id"), principal.Account.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCommentResponses(comments)})
}
