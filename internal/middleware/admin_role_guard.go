package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

const RoleAdmin = "ADMIN"

// AuthJWTの後ろで使う。許可したroleだけ通す。
func RoleGuard(allowed ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxUserRoleKey).(string)
			if role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			if !slices.Contains(allowed, role) {
				return c.JSON(http.StatusForbidden, errorJSON("admin only"))
			}
			return next(c)
		}
	}
}

// ウィザードと監査ログは管理者だけ
func AdminRoleGuard() echo.MiddlewareFunc {
	return RoleGuard(RoleAdmin)
}
