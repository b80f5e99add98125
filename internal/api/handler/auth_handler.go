package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/habitdesk/habitdesk-api/internal/api/metrics"
	"github.com/habitdesk/habitdesk-api/internal/core/domain"
	"github.com/habitdesk/habitdesk-api/internal/core/ports"
)

// AuthHandler handles registration, login, and the role RPCs.
type AuthHandler struct {
	authService ports.AuthService
	roleService ports.RoleService
}

func NewAuthHandler(authService ports.AuthService, roleService ports.RoleService) *AuthHandler {
	return &AuthHandler{authService: authService, roleService: roleService}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Description  Creates an account seeded with the patient role.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, err := h.authService.Register(c.Request().Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(http.StatusCreated, authResponse{User: newUserResponse(user)})
}

// Login authenticates a user and returns a JWT.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		status := http.StatusUnauthorized
		if err == domain.ErrUserNotFound {
			status = http.StatusNotFound
		}
		return c.JSON(status, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, authResponse{Token: token, User: newUserResponse(user)})
}

// SetUserRole assigns a role to a target user. Admin only; the target's
// outstanding sessions are revoked on success.
//
// @Summary      Set a user's role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      setUserRoleRequest  true  "Target uid and role"
// @Success      200   {object}  setUserRoleResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/roles/set [post]
func (h *AuthHandler) SetUserRole(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req setUserRoleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := h.roleService.SetUserRole(c.Request().Context(), caller, req.UID, req.Role); err != nil {
		return jsonError(c, err)
	}

	metrics.RoleChangesTotal.WithLabelValues(req.Role).Inc()
	metrics.SessionsRevokedTotal.Inc()
	return c.JSON(http.StatusOK, setUserRoleResponse{UID: req.UID, Role: req.Role})
}

// EnsureDefaultRole returns the caller's role, assigning patient when none
// is set. Idempotent.
//
// @Summary      Ensure the caller has a role
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ensureDefaultRoleResponse
// @Failure      401  {object}  map[string]string
// @Router       /v1/roles/ensure-default [post]
func (h *AuthHandler) EnsureDefaultRole(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	role, err := h.roleService.EnsureDefaultRole(c.Request().Context(), caller)
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(http.StatusOK, ensureDefaultRoleResponse{Role: role})
}
