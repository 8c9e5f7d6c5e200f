package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-portal/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-portal/internal/auth"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Tickets  *handlers.TicketsHandler
	Portal   *handlers.PortalHandler
	Accounts *handlers.AccountsHandler
	Audit    *handlers.AuditHandler
	Gate     *auth.Gate
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)
	app.Post("/auth/logout", cfg.Gate.RequireAuthenticated, cfg.Auth.Logout)

	// Public submission needs no session.
	app.Post("/tickets", cfg.Tickets.SubmitPublic)

	adminOnly := cfg.Gate.RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin)
	superAdminOnly := cfg.Gate.RequireRole(domain.RoleSuperAdmin)

	admin := app.Group("/admin", cfg.Gate.RequireAuthenticated, adminOnly)
	admin.Get("/tickets", cfg.Tickets.List)
	admin.Post("/tickets", cfg.Tickets.Create)
	admin.Get("/tickets/:id", cfg.Tickets.Get)
	admin.Patch("/tickets/:id", cfg.Tickets.Update)
	admin.Get("/tickets/:id/comments", cfg.Tickets.ListComments)
	admin.Post("/tickets/:id/comments", cfg.Tickets.AddComment)

	admin.Get("/audit/actor/:id", cfg.Audit.ByActor)
	admin.Get("/audit/target/:type/:id", cfg.Audit.ByTarget)

	admin.Post("/accounts", superAdminOnly, cfg.Accounts.Create)
	admin.Put("/accounts/:id/role", superAdminOnly, cfg.Accounts.ChangeRole)
	admin.Put("/accounts/:id/status", superAdminOnly, cfg.Accounts.ChangeStatus)
	admin.Post("/accounts/:id/password-reset", superAdminOnly, cfg.Accounts.ResetPassword)

	portal := app.Group("/portal", cfg.Gate.RequireAuthenticated, cfg.Gate.RequireRole(domain.RoleDepartment))
	portal.Get("/tickets", cfg.Portal.List)
	portal.Post("/tickets", cfg.Portal.Create)
	portal.Get("/tickets/:id", cfg.Portal.Get)
	portal.Post("/tickets/:id/status", cfg.Portal.UpdateStatus)
	portal.Get("/tickets/:id/comments", cfg.Portal.ListComments)
	portal.Post("/tickets/:id/comments", cfg.Portal.AddComment)
}
