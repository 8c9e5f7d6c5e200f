package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// CreateAccountRequest payload for provisioning accounts.
type CreateAccountRequest struct {
	Username   string  `json:"username" validate:"required,max=64"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=8"`
	Role       string  `json:"role" validate:"required,oneof=admin super_admin department"`
	Department *string `json:"department"`
}

// ChangeRoleRequest payload.
type ChangeRoleRequest struct {
	Role       string  `json:"role" validate:"required,oneof=admin super_admin department"`
	Department *string `json:"department"`
}

// ChangeStatusRequest payload.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive deleted"`
}

// ResetPasswordRequest payload.
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

// AccountResponse maps an account for rendering; password material is never
// included.
type AccountResponse struct {
	ID          string               `json:"id"`
	Username    string               `json:"username"`
	Email       string               `json:"email"`
	Role        domain.Role          `json:"role"`
	Department  *string              `json:"department,omitempty"`
	Status      domain.AccountStatus `json:"status"`
	LastLoginAt *time.Time           `json:"last_login_at,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

// NewAccountResponse converts a domain account.
func NewAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:          account.ID,
		Username:    account.Username,
		Email:       account.Email,
		Role:        account.Role,
		Department:  account.Department,
		Status:      account.Status,
		LastLoginAt: account.LastLoginAt,
		CreatedAt:   account.CreatedAt,
	}
}

// AuditEntryResponse maps an audit entry for operator queries.
type AuditEntryResponse struct {
	ID         string                 `json:"id"`
	ActorID    *string                `json:"actor_id,omitempty"`
	Action     domain.AuditAction     `json:"action"`
	TargetType domain.AuditTargetType `json:"target_type"`
	TargetID   string                 `json:"target_id"`
	Details    map[string]any         `json:"details,omitempty"`
	IP         string                 `json:"ip"`
	CreatedAt  time.Time              `json:"created_at"`
}

// NewAuditEntryResponses converts a slice.
func NewAuditEntryResponses(entries []domain.AuditEntry) []AuditEntryResponse {
	result := make([]AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		result = append(result, AuditEntryResponse{
			ID:         entry.ID,
			ActorID:    entry.ActorID,
			Action:     entry.Action,
			TargetType: entry.TargetType,
			TargetID:   entry.TargetID,
			Details:    entry.Details,
			IP:         entry.IP,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return result
}
