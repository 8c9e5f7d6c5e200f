package service

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/auth"
	"github.com/spec-kit/helpdesk-portal/internal/config"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

// AccountService covers the administrative account lifecycle: creation, role
// changes, status changes and password resets. Every mutation is audited in
// the same transaction, and mutations that change what an account may do also
// destroy its live sessions.
type AccountService struct {
	accounts   repository.AccountRepository
	audit      *AuditTrail
	sessions   SessionManager
	tx         repository.TxRunner
	bcryptCost int
	logger     *zap.Logger
}

// AccountDependencies bundles requirements for the account service.
type AccountDependencies struct {
	AccountRepo repository.AccountRepository
	Audit       *AuditTrail
	Sessions    SessionManager
	Tx          repository.TxRunner
}

// NewAccountService builds the service.
func NewAccountService(cfg config.AuthConfig, deps AccountDependencies, logger *zap.Logger) *AccountService {
	return &AccountService{
		accounts:   deps.AccountRepo,
		audit:      deps.Audit,
		sessions:   deps.Sessions,
		tx:         deps.Tx,
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
	}
}

// AccountInput describes an account creation payload.
type AccountInput struct {
	Username   string
	Email      string
	Password   string
	Role       domain.Role
	Department *string
}

// CreateAccount provisions a new account.
func (s *AccountService) CreateAccount(ctx context.Context, actor *domain.Account, input AccountInput, ip string) (*domain.Account, error) {
	if err := validateAccountInput(input); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	account := &domain.Account{
		Username:     strings.TrimSpace(input.Username),
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: hash,
		Role:         input.Role,
		Department:   input.Department,
		Status:       domain.AccountStatusActive,
	}

	actorID := actor.ID
	err = s.tx.InTx(ctx, func(db repository.DB) error {
		if err := s.accounts.WithDB(db).Create(ctx, account); err != nil {
			return err
		}
		return s.audit.Record(ctx, db, &actorID, domain.AuditAccountCreate, domain.AuditTargetAccount, account.ID,
			map[string]any{"username": account.Username, "role": account.Role}, ip)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return account, nil
}

// ChangeRole moves an account to a new role. Department affiliation must be
// present exactly when the new role is department. All of the target's live
// sessions are destroyed so the next request carries the new role.
func (s *AccountService) ChangeRole(ctx context.Context, actor *domain.Account, targetID string, role domain.Role, department *string, ip string) error {
	if _, err := domain.ParseRole(string(role)); err != nil {
		return apperrors.NewValidationError("invalid role", map[string]any{"role": role})
	}
	if err := validateDepartmentForRole(role, department); err != nil {
		return err
	}

	target, err := s.getTarget(ctx, targetID)
	if err != nil {
		return err
	}
	if target.Status == domain.AccountStatusDeleted {
		return apperrors.NewConflictingState("account is deleted", nil)
	}

	actorID := actor.ID
	err = s.tx.InTx(ctx, func(db repository.DB) error {
		if err := s.accounts.WithDB(db).UpdateRole(ctx, targetID, role, department); err != nil {
			return err
		}
		return s.audit.Record(ctx, db, &actorID, domain.AuditAccountRoleChange, domain.AuditTargetAccount, targetID,
			map[string]any{"old_role": target.Role, "new_role": role}, ip)
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	if err := s.sessions.DestroyAccount(ctx, targetID); err != nil {
		s.logger.Warn("failed to destroy sessions after role change",
			zap.String("account_id", targetID), zap.Error(err))
	}
	return nil
}

// ChangeStatus activates, deactivates or deletes an account. Deleted is
// terminal; the row is kept for the audit trail.
func (s *AccountService) ChangeStatus(ctx context.Context, actor *domain.Account, targetID string, status domain.AccountStatus, ip string) error {
	switch status {
	case domain.AccountStatusActive, domain.AccountStatusInactive, domain.AccountStatusDeleted:
	default:
		return apperrors.NewValidationError("invalid status", map[string]any{"status": status})
	}

	target, err := s.getTarget(ctx, targetID)
	if err != nil {
		return err
	}
	if target.Status == domain.AccountStatusDeleted {
		return apperrors.NewConflictingState("account is deleted", nil)
	}

	actorID := actor.ID
	err = s.tx.InTx(ctx, func(db repository.DB) error {
		if err := s.accounts.WithDB(db).UpdateStatus(ctx, targetID, status); err != nil {
			return err
		}
		return s.audit.Record(ctx, db, &actorID, domain.AuditAccountStatusChange, domain.AuditTargetAccount, targetID,
			map[string]any{"old_status": target.Status, "new_status": status}, ip)
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	if status != domain.AccountStatusActive {
		if err := s.sessions.DestroyAccount(ctx, targetID); err != nil {
			s.logger.Warn("failed to destroy sessions after status change",
				zap.String("account_id", targetID), zap.Error(err))
		}
	}
	return nil
}

// ResetPassword sets a new password and destroys the target's sessions.
func (s *AccountService) ResetPassword(ctx context.Context, actor *domain.Account, targetID, newPassword, ip string) error {
	if len(newPassword) < 8 {
		return apperrors.NewValidationError("password too short", map[string]any{"password": "minimum 8 characters"})
	}

	target, err := s.getTarget(ctx, targetID)
	if err != nil {
		return err
	}
	if target.Status == domain.AccountStatusDeleted {
		return apperrors.NewConflictingState("account is deleted", nil)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}

	actorID := actor.ID
	err = s.tx.InTx(ctx, func(db repository.DB) error {
		if err := s.accounts.WithDB(db).UpdatePassword(ctx, targetID, hash); err != nil {
			return err
		}
		return s.audit.Record(ctx, db, &actorID, domain.AuditAccountPasswordReset, domain.AuditTargetAccount, targetID, nil, ip)
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	if err := s.sessions.DestroyAccount(ctx, targetID); err != nil {
		s.logger.Warn("failed to destroy sessions after password reset",
			zap.String("account_id", targetID), zap.Error(err))
	}
	return nil
}

func (s *AccountService) getTarget(ctx context.Context, targetID string) (*domain.Account, error) {
	target, err := s.accounts.GetByID(ctx, targetID)
	if err == pgx.ErrNoRows {
		return nil, apperrors.NewNotFound("account", nil)
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return target, nil
}

func validateAccountInput(input AccountInput) error {
	details := map[string]any{}
	if strings.TrimSpace(input.Username) == "" {
		details["username"] = "required"
	}
	if strings.TrimSpace(input.Email) == "" {
		details["email"] = "required"
	}
	if len(input.Password) < 8 {
		details["password"] = "minimum 8 characters"
	}
	if _, err := domain.ParseRole(string(input.Role)); err != nil {
		details["role"] = "invalid"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid account payload", details)
	}
	return validateDepartmentForRole(input.Role, input.Department)
}

// validateDepartmentForRole enforces the department-affiliation invariant:
// required for the department role, forbidden otherwise.
func validateDepartmentForRole(role domain.Role, department *string) error {
	hasDept := department != nil && strings.TrimSpace(*department) != ""
	if role == domain.RoleDepartment && !hasDept {
		return apperrors.NewValidationError("department required for department role",
			map[string]any{"department": "required"})
	}
	if role != domain.RoleDepartment && hasDept {
		return apperrors.NewValidationError("department not allowed for this role",
			map[string]any{"department": "forbidden"})
	}
	return nil
}
