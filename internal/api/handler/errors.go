package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/habitdesk/habitdesk-api/internal/core/domain"
)

// errorStatus maps domain sentinel errors to HTTP status codes. Conflict
// covers invites that are no longer claimable, including a lost race, so
// retrying with the same code keeps returning the same answer.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrPermissionDenied),
		errors.Is(err, domain.ErrSubTypeNotGranted),
		errors.Is(err, domain.ErrInviteEmailMismatch):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrInviteCodeRequired),
		errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownTaskType),
		errors.Is(err, domain.ErrInvalidTaskConfig):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrInviteNotFound),
		errors.Is(err, domain.ErrTherapistTypeNotFound),
		errors.Is(err, domain.ErrTaskTemplateNotFound),
		errors.Is(err, domain.ErrProgramTemplateNotFound),
		errors.Is(err, domain.ErrPatientNotFound),
		errors.Is(err, domain.ErrProgramNotFound),
		errors.Is(err, domain.ErrTaskNotFound),
		errors.Is(err, domain.ErrAssignmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUserExists),
		errors.Is(err, domain.ErrTherapistTypeExists),
		errors.Is(err, domain.ErrInviteUsed),
		errors.Is(err, domain.ErrInviteRevoked),
		errors.Is(err, domain.ErrInviteNotClaimable),
		errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// jsonError writes the mapped status with the error message. Internal
// errors are masked so storage details never reach the client.
func jsonError(c echo.Context, err error) error {
	status := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	return c.JSON(status, map[string]string{"error": msg})
}
