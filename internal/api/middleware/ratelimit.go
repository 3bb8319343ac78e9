package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/velora-dev/auth-core/internal/api/metrics"
	"github.com/velora-dev/auth-core/internal/infrastructure/config"
)

// LoginRateStore counts hits for a client key within the current window.
type LoginRateStore interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int64, reset time.Duration, err error)
}

// LoginRateLimit caps login attempts per client IP using fixed windows.
// When the store is unavailable the request is allowed through.
func LoginRateLimit(cfg config.RateLimitConfig, store LoginRateStore, log zerolog.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || store == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			count, reset, err := store.Hit(c.Request().Context(), c.RealIP(), cfg.Window)
			if err != nil {
				log.Warn().Err(err).Msg("rate limit store unavailable, allowing request")
				return next(c)
			}

			remaining := int64(cfg.Attempts) - count
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Attempts))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(cfg.Attempts) {
				retry := int(math.Ceil(reset.Seconds()))
				if retry < 1 {
					retry = 1
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(retry))
				metrics.LoginAttemptsTotal.WithLabelValues("rate_limited").Inc()
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many login attempts")
			}
			return next(c)
		}
	}
}
