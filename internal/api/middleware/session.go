package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ahorrat/weekly-planner/internal/core/domain"
)

// SessionLookup resolves a session id to its stored record.
type SessionLookup interface {
	Session(ctx context.Context, sessionID string) (*domain.Session, error)
}

// Session must run after Auth. A valid token whose session was signed out
// or expired is rejected, so logout takes effect before the token expires.
func Session(lookup SessionLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid, _ := c.Get(KeySessionID).(string)
			if sid == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			sess, err := lookup.Session(c.Request().Context(), sid)
			if errors.Is(err, domain.ErrSessionNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, "session expired or signed out")
			}
			if err != nil {
				return err
			}

			c.Set(KeySession, sess)
			return next(c)
		}
	}
}
