package server

import (
	"github.com/labstack/echo/v4"

	"backoffice/internal/config"
	"backoffice/internal/handler"
	"backoffice/internal/middleware"
)

// ウィザードサービスのルート
func RegisterRoutes(e *echo.Echo, cfg config.Config, wizardH *handler.OrderWizardHandler, auditH *handler.AuditLogHandler) {
	e.GET("/healthz", handler.Healthz)

	g := e.Group("/admin/order-wizards")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.AdminRoleGuard())
	wizardH.RegisterRoutes(g)

	audit := e.Group("/admin/audit-logs")
	audit.Use(middleware.AuthJWT(cfg))
	audit.Use(middleware.AdminRoleGuard())
	auditH.RegisterRoutes(audit)
}
