package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/velora-dev/auth-core/internal/core/domain"
)

// RBAC lets only the given roles through. Auth must run earlier on the
// chain so the role context key is populated; an absent role is rejected.
func RBAC(allowed ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextRole).(string)
			if err := domain.RequireRole(domain.Role(role), allowed...); err != nil {
				return err
			}
			return next(c)
		}
	}
}
