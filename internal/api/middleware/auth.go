package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/velora-dev/auth-core/internal/api/cookie"
	"github.com/velora-dev/auth-core/internal/api/metrics"
	"github.com/velora-dev/auth-core/internal/core/domain"
	"github.com/velora-dev/auth-core/internal/core/ports"
)

// Context keys populated for downstream handlers.
const (
	ContextUser = "user"
	ContextRole = "role"
)

// Auth authenticates the request from its token cookies, falling back to a
// bearer header for non-browser clients. When the access token no longer
// validates but the refresh token does, a renewed access token is written
// back as a cookie and the request proceeds.
func Auth(auth ports.AuthService, policy *cookie.Policy, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			access := policy.TokenFromRequest(c)
			refresh := policy.TokenFromCookie(c, cookie.RefreshCookie)

			user, renewed, err := auth.Authenticate(c.Request().Context(), access, refresh)
			if err != nil {
				return err
			}

			if renewed != nil {
				if err := policy.SetAccessCookie(c, renewed.Token, renewed.ExpiresAt); err != nil {
					log.Debug().
						Str("origin", policy.OriginFromRequest(c)).
						Msg("silent refresh rejected, origin not allowed")
					return domain.ErrUnauthorized
				}
				metrics.TokenRefreshTotal.WithLabelValues("silent").Inc()
				metrics.TokensIssuedTotal.WithLabelValues("access").Inc()
			}

			c.Set(ContextUser, user)
			c.Set(ContextRole, string(user.Role))
			return next(c)
		}
	}
}
