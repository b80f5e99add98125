package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/habitdesk/habitdesk-api/internal/api/metrics"
	"github.com/habitdesk/habitdesk-api/internal/core/domain"
	"github.com/habitdesk/habitdesk-api/internal/core/ports"
)

// InviteHandler handles invite administration and the claim endpoint.
type InviteHandler struct {
	service ports.InviteService
}

func NewInviteHandler(service ports.InviteService) *InviteHandler {
	return &InviteHandler{service: service}
}

// Create mints a new single-use therapist invite. Admin only.
//
// @Summary      Create a therapist invite
// @Tags         invites
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createInviteRequest  true  "Invite details"
// @Success      201   {object}  inviteResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /v1/invites [post]
func (h *InviteHandler) Create(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req createInviteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	invite, err := h.service.Create(c.Request().Context(), caller, ports.CreateInviteInput{
		RestrictedEmail:   req.RestrictedEmail,
		GrantedSubTypes:   req.GrantedSubTypes,
		LicenseValidUntil: req.LicenseValidUntil,
		ContractRef:       req.ContractRef,
	})
	if err != nil {
		return jsonError(c, err)
	}

	metrics.InvitesCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, newInviteResponse(invite))
}

// List returns invites, optionally filtered by status. Admin only.
//
// @Summary      List invites
// @Tags         invites
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by status (pending/used/revoked)"
// @Success      200     {object}  listInvitesResponse
// @Failure      403     {object}  map[string]string
// @Router       /v1/invites [get]
func (h *InviteHandler) List(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	invites, err := h.service.List(c.Request().Context(), caller, domain.InviteStatus(c.QueryParam("status")))
	if err != nil {
		return jsonError(c, err)
	}

	out := make([]*inviteResponse, 0, len(invites))
	for _, i := range invites {
		out = append(out, newInviteResponse(i))
	}
	return c.JSON(http.StatusOK, listInvitesResponse{Invites: out})
}

// Revoke moves a pending invite to revoked. Admin only.
//
// @Summary      Revoke an invite
// @Tags         invites
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Invite ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /v1/invites/{id}/revoke [post]
func (h *InviteHandler) Revoke(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	if err := h.service.Revoke(c.Request().Context(), caller, c.Param("id")); err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Restore moves a revoked invite back to pending. Admin only; used
// invites stay used.
//
// @Summary      Restore a revoked invite
// @Tags         invites
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Invite ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /v1/invites/{id}/restore [post]
func (h *InviteHandler) Restore(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	if err := h.service.Restore(c.Request().Context(), caller, c.Param("id")); err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete removes an invite entirely. Admin only.
//
// @Summary      Delete an invite
// @Tags         invites
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Invite ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/invites/{id} [delete]
func (h *InviteHandler) Delete(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), caller, c.Param("id")); err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Claim converts a one-time invite code into the therapist role for the
// caller. The response reflects the granted profile; the caller must
// re-login to mint a token carrying the new claims.
//
// @Summary      Claim a therapist invite
// @Tags         invites
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      claimInviteRequest  true  "Invite code"
// @Success      200   {object}  claimInviteResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /v1/invites/claim [post]
func (h *InviteHandler) Claim(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req claimInviteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	result, err := h.service.Claim(c.Request().Context(), ports.ClaimInviteInput{
		Caller:      caller,
		Code:        req.Code,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		metrics.InviteClaimsTotal.WithLabelValues(claimResult(err)).Inc()
		return jsonError(c, err)
	}

	metrics.InviteClaimsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, claimInviteResponse{
		InviteID:          result.InviteID,
		Role:              domain.RoleTherapist,
		TherapistTypes:    result.TherapistTypes,
		LicenseValidUntil: result.LicenseValidUntil,
		ContractRef:       result.ContractRef,
	})
}

// claimResult labels a failed claim for metrics.
func claimResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInviteNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInviteUsed), errors.Is(err, domain.ErrInviteNotClaimable):
		return "used"
	case errors.Is(err, domain.ErrInviteRevoked):
		return "revoked"
	case errors.Is(err, domain.ErrInviteEmailMismatch):
		return "email_mismatch"
	default:
		return "error"
	}
}
