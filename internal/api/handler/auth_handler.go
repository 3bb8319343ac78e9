package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/velora-dev/auth-core/internal/api/cookie"
	"github.com/velora-dev/auth-core/internal/api/metrics"
	"github.com/velora-dev/auth-core/internal/core/domain"
	"github.com/velora-dev/auth-core/internal/core/ports"
)

// AuthHandler handles the session lifecycle and self-service endpoints.
type AuthHandler struct {
	auth   ports.AuthService
	users  ports.UserService
	policy *cookie.Policy
	audit  AuditRecorder
}

func NewAuthHandler(auth ports.AuthService, users ports.UserService, policy *cookie.Policy, audit AuditRecorder) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, policy: policy, audit: audit}
}

// Login authenticates a user, sets both token cookies, and returns the
// access token in the body for bearer clients.
//
// @Summary      Login with username and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, pair, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
			recordAudit(h.audit, c, domain.AuditLoginFailed, nil, "", map[string]any{
				"username": req.Username,
			})
		}
		return err
	}

	if err := h.policy.SetAuthCookies(c, pair); err != nil {
		return err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("access").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("refresh").Inc()
	recordAudit(h.audit, c, domain.AuditLoginSuccess, user, "", nil)

	return c.JSON(http.StatusOK, loginResponse{
		AccessToken: pair.AccessToken,
		ExpiresIn:   expiresIn(pair.AccessExpiresAt),
		User:        toUserResponse(user),
	})
}

// Register creates a new user account. Admin only.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      registerRequest  true  "New account details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	caller, err := currentUser(c)
	if err != nil {
		return err
	}

	user, err := h.users.Register(c.Request().Context(), caller, toRegisterInput(req))
	if err != nil {
		return err
	}

	metrics.UsersCreatedTotal.WithLabelValues(string(user.Role)).Inc()
	recordAudit(h.audit, c, domain.AuditUserCreated, caller, user.ID.String(), nil)

	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// Me returns the authenticated user's own record.
//
// @Summary      Get the current user
// @Tags         auth
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateMe applies a self-service profile update. Username, role, and the
// active flag are not part of the request shape and cannot be changed here.
//
// @Summary      Update the current user's profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      updateProfileRequest  true  "Profile fields to change"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/me [put]
func (h *AuthHandler) UpdateMe(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	caller, err := currentUser(c)
	if err != nil {
		return err
	}

	updated, err := h.users.UpdateProfile(c.Request().Context(), caller, toProfileInput(req))
	if err != nil {
		return err
	}

	recordAudit(h.audit, c, domain.AuditProfileUpdated, updated, "", nil)
	return c.JSON(http.StatusOK, toUserResponse(updated))
}

// Logout clears both token cookies and revokes the refresh token when one is
// present. It deliberately sits outside the Auth middleware: a browser with
// expired tokens must still be able to log out.
//
// @Summary      Logout and clear auth cookies
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	refresh := h.policy.TokenFromCookie(c, cookie.RefreshCookie)
	h.auth.Logout(c.Request().Context(), refresh)
	h.policy.ClearAuthCookies(c)

	recordAudit(h.audit, c, domain.AuditLogout, nil, "", nil)
	return c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
}

// Refresh exchanges the refresh token for a new access token and re-sets the
// access cookie. The token is read from the cookie, falling back to the body.
//
// @Summary      Refresh the access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  false  "Refresh token when no cookie is held"
// @Success      200   {object}  refreshResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	refresh := h.policy.TokenFromCookie(c, cookie.RefreshCookie)
	if refresh == "" {
		var req refreshRequest
		if err := c.Bind(&req); err == nil {
			refresh = req.RefreshToken
		}
	}
	if refresh == "" {
		return domain.ErrUnauthorized
	}

	user, renewed, err := h.auth.Refresh(c.Request().Context(), refresh)
	if err != nil {
		return err
	}

	if err := h.policy.SetAccessCookie(c, renewed.Token, renewed.ExpiresAt); err != nil {
		return err
	}

	metrics.TokenRefreshTotal.WithLabelValues("endpoint").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("access").Inc()
	recordAudit(h.audit, c, domain.AuditRefresh, user, "", nil)

	return c.JSON(http.StatusOK, refreshResponse{
		AccessToken: renewed.Token,
		ExpiresIn:   expiresIn(renewed.ExpiresAt),
	})
}
