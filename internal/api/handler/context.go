package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ahorrat/weekly-planner/internal/api/middleware"
	"github.com/ahorrat/weekly-planner/internal/core/domain"
)

// ctxSession returns the session loaded by the Session middleware. Its
// absence means the route was mounted without auth, so reject with 401.
func ctxSession(c echo.Context) (*domain.Session, error) {
	sess, _ := c.Get(middleware.KeySession).(*domain.Session)
	if sess == nil || sess.ID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return sess, nil
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// bindAndValidate decodes the JSON body into req and runs the validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
