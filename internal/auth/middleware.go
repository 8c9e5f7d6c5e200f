package auth

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

const principalKey = "auth_principal"

// Sessions is the session-store surface the gate needs.
type Sessions interface {
	Get(ctx context.Context, sid string) (*domain.SessionPrincipal, error)
	Destroy(ctx context.Context, sid string) error
}

// Principal is the authenticated caller for one request. Account is the live
// row fetched during this request, never a cached copy, so Role and Status
// reflect any mid-session downgrade or deactivation.
type Principal struct {
	Account   *domain.Account
	SessionID string
}

// Gate enforces per-request authorization. Every protected request
// re-validates the account against the store; the session payload alone is
// never trusted.
type Gate struct {
	sessions   Sessions
	codec      *TokenCodec
	accounts   repository.AccountRepository
	cookieName string
	logger     *zap.Logger
}

// NewGate constructs the middleware chain.
func NewGate(sessions Sessions, codec *TokenCodec, accounts repository.AccountRepository, cookieName string, logger *zap.Logger) *Gate {
	return &Gate{sessions: sessions, codec: codec, accounts: accounts, cookieName: cookieName, logger: logger}
}

// RequireAuthenticated denies requests without a live, active session. When
// the backing account has gone missing or inactive the session is destroyed
// server-side before the denial, closing the window where a deactivated
// account still holds a usable session elsewhere.
func (g *Gate) RequireAuthenticated(c *fiber.Ctx) error {
	cookie := c.Cookies(g.cookieName)
	if cookie == "" {
		return apperrors.NewLoginRequired()
	}

	sid, err := g.codec.Parse(cookie)
	if err != nil {
		g.clearCookie(c)
		return apperrors.NewLoginRequired()
	}

	principal, err := g.sessions.Get(c.UserContext(), sid)
	if err == ErrSessionNotFound {
		g.clearCookie(c)
		return apperrors.NewLoginRequired()
	}
	if err != nil {
		return apperrors.MapError(err)
	}

	account, err := g.accounts.GetByID(c.UserContext(), principal.AccountID)
	if err == pgx.ErrNoRows {
		g.invalidate(c, sid)
		return apperrors.NewLoginRequired()
	}
	if err != nil {
		return apperrors.MapError(err)
	}
	if account.Status != domain.AccountStatusActive {
		g.logger.Info("destroying session for non-active account",
			zap.String("account_id", account.ID),
			zap.String("status", string(account.Status)))
		g.invalidate(c, sid)
		return apperrors.NewLoginRequired()
	}

	c.Locals(principalKey, &Principal{Account: account, SessionID: sid})
	return c.Next()
}

// RequireRole allows only the listed roles. It assumes RequireAuthenticated
// already ran; the role it checks comes from that live fetch.
func (g *Gate) RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewLoginRequired()
		}
		if _, exists := allowedSet[principal.Account.Role]; !exists {
			return apperrors.NewAuthorizationDenied()
		}
		return c.Next()
	}
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

func (g *Gate) invalidate(c *fiber.Ctx, sid string) {
	if err := g.sessions.Destroy(c.UserContext(), sid); err != nil {
		g.logger.Warn("failed to destroy session", zap.Error(err))
	}
	g.clearCookie(c)
}

func (g *Gate) clearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     g.cookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
}
