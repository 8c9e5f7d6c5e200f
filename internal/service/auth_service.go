package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/auth"
	"github.com/spec-kit/helpdesk-portal/internal/config"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

// SessionManager is the session-store surface the services need.
type SessionManager interface {
	Create(ctx context.Context, principal domain.SessionPrincipal) (string, error)
	Destroy(ctx context.Context, sid string) error
	DestroyAccount(ctx context.Context, accountID string) error
}

// AuthService verifies credentials and issues sessions. Every rejection path
// surfaces the identical error so callers cannot distinguish unknown user,
// wrong password, locked or inactive account.
type AuthService struct {
	accounts         repository.AccountRepository
	audit            *AuditTrail
	sessions         SessionManager
	codec            *auth.TokenCodec
	bcryptCost       int
	lockoutThreshold int
	logger           *zap.Logger
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	AccountRepo repository.AccountRepository
	Audit       *AuditTrail
	Sessions    SessionManager
	Codec       *auth.TokenCodec
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies, logger *zap.Logger) *AuthService {
	return &AuthService{
		accounts:         deps.AccountRepo,
		audit:            deps.Audit,
		sessions:         deps.Sessions,
		codec:            deps.Codec,
		bcryptCost:       cfg.BcryptCost,
		lockoutThreshold: cfg.LockoutThreshold,
		logger:           logger,
	}
}

// Login authenticates and opens a session. The returned principal carries no
// password material.
func (s *AuthService) Login(ctx context.Context, username, password, ip string) (*domain.SessionPrincipal, string, time.Time, error) {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err == pgx.ErrNoRows {
		// Burn a bcrypt comparison so an unknown username costs the same
		// wall-clock time as a wrong password.
		_ = auth.ComparePlaceholder(password)
		return nil, "", time.Time{}, apperrors.NewAuthenticationRejected()
	}
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	if account.Locked(s.lockoutThreshold) {
		// The real hash is never consulted for a locked account.
		_ = auth.ComparePlaceholder(password)
		s.logger.Warn("login refused for locked account", zap.String("username", username))
		return nil, "", time.Time{}, apperrors.NewAuthenticationRejected()
	}

	if account.Status != domain.AccountStatusActive {
		_ = auth.ComparePlaceholder(password)
		s.logger.Warn("login refused for non-active account",
			zap.String("username", username),
			zap.String("status", string(account.Status)))
		return nil, "", time.Time{}, apperrors.NewAuthenticationRejected()
	}

	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		if incErr := s.accounts.IncrementLoginAttempts(ctx, username); incErr != nil {
			return nil, "", time.Time{}, apperrors.MapError(incErr)
		}
		return nil, "", time.Time{}, apperrors.NewAuthenticationRejected()
	}

	if err := s.accounts.ResetLoginAttempts(ctx, account.ID); err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := s.accounts.UpdateLastLogin(ctx, account.ID); err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	actorID := account.ID
	if err := s.audit.Record(ctx, nil, &actorID, domain.AuditUserLogin, domain.AuditTargetAccount, account.ID, nil, ip); err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	principal := domain.SessionPrincipal{
		AccountID: account.ID,
		Username:  account.Username,
		Email:     account.Email,
		Role:      account.Role,
	}

	sid, err := s.sessions.Create(ctx, principal)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	token, expiresAt, err := s.codec.Issue(sid)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	return &principal, token, expiresAt, nil
}

// Logout destroys the session server-side.
func (s *AuthService) Logout(ctx context.Context, principal *auth.Principal, ip string) error {
	if err := s.sessions.Destroy(ctx, principal.SessionID); err != nil {
		return apperrors.MapError(err)
	}
	actorID := principal.Account.ID
	return s.audit.Record(ctx, nil, &actorID, domain.AuditUserLogout, domain.AuditTargetAccount, actorID, nil, ip)
}
