package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-portal/internal/api/dto"
	"github.com/spec-kit/helpdesk-portal/internal/auth"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/service"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

// AccountsHandler exposes super-admin account administration.
type AccountsHandler struct {
	accounts *service.AccountService
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(accountService *service.AccountService) *AccountsHandler {
	return &AccountsHandler{accounts: accountService}
}

// Create handles POST /admin/accounts.
func (h *AccountsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewLoginRequired()
	}

	var req dto.CreateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details := dto.Check(req); details != nil {
		return apperrors.NewValidationError("invalid payload", details)
	}

	account, err := h.accounts.CreateAccount(c.UserContext(), principal.Account, service.AccountInput{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		Role:       domain.Role(req.Role),
		Department: req.Department,
	}, c.IP())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAccountResponse(account)})
}

// ChangeRole handles PUT /admin/accounts/:id/role.
func (h *AccountsHandler) ChangeRole(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewLoginRequired()
	}

	var req dto.ChangeRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details := dto.Check(req); details != nil {
		return apperrors.NewValidationError("invalid payload", details)
	}

	if err := h.accounts.ChangeRole(c.UserContext(), principal.Account, c.Params("id"),
		domain.Role(req.Role), req.Department, c.IP()); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ChangeStatus handles PUT /admin/accounts/:id/status.
func (h *AccountsHandler) ChangeStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewLoginRequired()
	}

	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details := dto.Check(req); details != nil {
		return apperrors.NewValidationError("invalid payload", details)
	}

	if err := h.accounts.ChangeStatus(c.UserContext(), principal.Account, c.Params("id"),
		domain.AccountStatus(req.Status), c.IP()); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ResetPassword handles POST /admin/accounts/:id/password-reset.
func (h *AccountsHandler) ResetPassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewLoginRequired()
	}

	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details := dto.Check(req); details != nil {
		return apperrors.NewValidationError("invalid payload", details)
	}

	if err := h.accounts.ResetPassword(c.UserContext(), principal.Account, c.Params("id"),
		req.Password, c.IP()); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
