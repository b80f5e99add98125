package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/habitdesk/habitdesk-api/internal/api/metrics"
)

// EpochChecker exposes the current claims epoch for a user. Tokens minted
// under an older epoch are rejected.
type EpochChecker interface {
	Epoch(ctx context.Context, uid string) (int64, error)
}

// Auth validates the JWT, checks its claims epoch against the session
// store, and injects the verified claims into context.
func Auth(jwtSecret string, sessions EpochChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				metrics.TokensRejectedTotal.WithLabelValues("invalid").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			uid, _ := claims["uid"].(string)
			if uid == "" {
				metrics.TokensRejectedTotal.WithLabelValues("invalid").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing subject")
			}

			// epoch is a JSON number; missing reads as 0.
			tokenEpoch, _ := claims["epoch"].(float64)
			if sessions != nil {
				current, err := sessions.Epoch(c.Request().Context(), uid)
				if err != nil {
					return echo.NewHTTPError(http.StatusServiceUnavailable, "session store unavailable")
				}
				if int64(tokenEpoch) < current {
					metrics.TokensRejectedTotal.WithLabelValues("stale_epoch").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "token revoked")
				}
			}

			c.Set("uid", uid)
			c.Set("email", claims["email"])
			c.Set("role", claims["role"])
			c.Set("therapist_types", therapistTypes(claims))

			return next(c)
		}
	}
}

// therapistTypes converts the JSON-decoded claim into a string slice.
func therapistTypes(claims jwt.MapClaims) []string {
	raw, ok := claims["therapist_types"].([]interface{})
	if !ok {
		return nil
	}
	types := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			types = append(types, s)
		}
	}
	return types
}
