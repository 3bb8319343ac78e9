package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/velora-dev/auth-core/internal/core/domain"
	"github.com/velora-dev/auth-core/internal/core/ports"
)

// UserHandler handles the admin-only user administration endpoints.
type UserHandler struct {
	users ports.UserService
	audit AuditRecorder
}

func NewUserHandler(users ports.UserService, audit AuditRecorder) *UserHandler {
	return &UserHandler{users: users, audit: audit}
}

// List handles GET /users with page/limit query parameters.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     CookieAuth
// @Param        page   query     int  false  "Page number (1-based)"
// @Param        limit  query     int  false  "Page size, capped at 100"
// @Success      200    {object}  listUsersResponse
// @Failure      401    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.users.List(c.Request().Context(), caller, page, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toListResponse(result))
}

// Update handles PUT /users/:id with a partial update body.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var req updateUserRequest
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

	updated, err := h.users.Update(c.Request().Context(), caller, id, toUpdateInput(req))
	if err != nil {
		return err
	}

	recordAudit(h.audit, c, domain.AuditUserUpdated, caller, id.String(), nil)
	return c.JSON(http.StatusOK, toUserResponse(updated))
}

// Delete handles DELETE /users/:id. Hard delete; deactivating via Update is
// the usual path.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Security     CookieAuth
// @Param        id  path  string  true  "User ID"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	caller, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.users.Delete(c.Request().Context(), caller, id); err != nil {
		return err
	}

	recordAudit(h.audit, c, domain.AuditUserDeleted, caller, id.String(), nil)
	return c.JSON(http.StatusOK, messageResponse{Message: "user deleted"})
}
