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

// TicketsHandler exposes the admin console's ticket operations plus the
// public submission endpoint.
type TicketsHandler struct {
	workflow *service.WorkflowService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(workflow *service.WorkflowService) *TicketsHandler {
	return &TicketsHandler{workflow: workflow}
}

// SubmitPublic handles POST /tickets (unauthenticated submission).
func (h *TicketsHandler) SubmitPublic(c *fiber.Ctx) error {
	var req dto.PublicTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details := dto.Check(req); details != nil {
		return apperrors.NewValidationError("invalid payload", details)
	}

	ticket, err := h.workflow.CreatePublicTicket(c.UserContext(), service.TicketInput{
		Title:        req.Title,
		Description:  req.Description,
		ReporterName: req.ReporterName,
		Department:   req.Department,
	}, c.IP())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Create handles POST /admin/tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
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
		Department:   req.Department,
		Priority:     domain.TicketPriority(req.Priority),
	}, c.IP())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// List handles GET /admin/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
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
	if priority := c.Query("priority"); priority != "" {
		filter.Priorities = []domain.TicketPriority{domain.TicketPriority(priority)}
	}
	if search := c.Query("q"); search != "" {
		filter.SearchTerm = &search
	}

	tickets, err := h.workflow.ListTickets(c.UserContext(), principal.Account, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// Get handles GET /admin/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
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

// Update handles PATCH /admin/tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewLoginRequired()
	}

	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details := dto.Check(req); details != nil {
		return apperrors.NewValidationError("invalid payload", details)
	}

	changes := service.TicketChanges{Unassign: req.Unassign, AssignedTo: req.AssignedTo}
	if req.Status != nil {
		status := domain.TicketStatus(*req.Status)
		changes.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TicketPriority(*req.Priority)
		changes.Priority = &priority
	}

	ticket, err := h.workflow.UpdateTicket(c.UserContext(), principal.Account, c.Params("id"), changes, c.IP())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// AddComment handles POST /admin/tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
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
		req.Content, domain.CommentVisibility(req.Visibility), c.IP())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"comment": dto.NewCommentResponses([]domain.Comment{*comment})[0],
		"ticket":  dto.NewTicketResponse(ticket),
	}})
}

// ListComments handles GET /admin/tickets/:id/comments.
func (h *TicketsHandler) ListComments(c *fiber.Ctx) error {
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
