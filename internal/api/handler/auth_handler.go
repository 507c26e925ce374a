package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ahorrat/weekly-planner/internal/api/metrics"
	"github.com/ahorrat/weekly-planner/internal/core/domain"
	"github.com/ahorrat/weekly-planner/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func signedIn(res *ports.AuthResult) {
	metrics.SessionEventsTotal.WithLabelValues(string(domain.SignedIn), string(res.Session.Mode)).Inc()
}

// Register creates an account and signs it in straight away.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Email and password"
// @Success      201   {object}  ports.AuthResult
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.SignUp(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	signedIn(res)
	return c.JSON(http.StatusCreated, res)
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Login credentials"
// @Success      200   {object}  ports.AuthResult
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	res, err := h.authService.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	signedIn(res)
	return c.JSON(http.StatusOK, res)
}

// Guest provisions a throwaway account whose planner lives in memory only.
//
// @Summary      Sign in as guest
// @Tags         auth
// @Produce      json
// @Success      201  {object}  ports.AuthResult
// @Failure      500  {object}  errorResponse
// @Router       /auth/guest [post]
func (h *AuthHandler) Guest(c echo.Context) error {
	res, err := h.authService.SignInGuest(c.Request().Context())
	if err != nil {
		return err
	}
	signedIn(res)
	return c.JSON(http.StatusCreated, res)
}

// Session returns the caller's current session.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Session
// @Failure      401  {object}  errorResponse
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sess)
}

// Logout ends the session; a guest's planner is discarded with it.
//
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.authService.SignOut(c.Request().Context(), sess.ID); err != nil {
		return err
	}
	metrics.SessionEventsTotal.WithLabelValues(string(domain.SignedOut), string(sess.Mode)).Inc()
	return c.NoContent(http.StatusNoContent)
}
