package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/habitdesk/habitdesk-api/internal/core/ports"
)

// ctxCaller builds the Caller from the claims injected by the Auth
// middleware. Presence of uid proves the middleware ran; without it the
// route was wired without Auth and the request must not proceed.
func ctxCaller(c echo.Context) (ports.Caller, error) {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return ports.Caller{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	email, _ := c.Get("email").(string)
	role, _ := c.Get("role").(string)
	types, _ := c.Get("therapist_types").([]string)

	return ports.Caller{
		UID:            uid,
		Email:          email,
		Role:           role,
		TherapistTypes: types,
	}, nil
}
