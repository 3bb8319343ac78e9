package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/velora-dev/auth-core/internal/api/middleware"
	"github.com/velora-dev/auth-core/internal/core/domain"
)

// currentUser extracts the authenticated user injected by the Auth
// middleware. Its presence proves the middleware ran; a protected route that
// reaches a handler without it is miswired and fails with a bare 401.
func currentUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get(middleware.ContextUser).(*domain.User)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return user, nil
}
