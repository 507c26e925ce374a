package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ahorrat/weekly-planner/internal/api/metrics"
	"github.com/ahorrat/weekly-planner/internal/core/domain"
	"github.com/ahorrat/weekly-planner/internal/core/planner"
)

// Workspaces hands out the workspace of a signed-in session.
type Workspaces interface {
	Workspace(ctx context.Context, sess *domain.Session) (*planner.Workspace, error)
}

// PlannerHandler exposes the workspace mutations and derived views.
type PlannerHandler struct {
	workspaces Workspaces
}

func NewPlannerHandler(workspaces Workspaces) *PlannerHandler {
	return &PlannerHandler{workspaces: workspaces}
}

func (h *PlannerHandler) workspace(c echo.Context) (*planner.Workspace, error) {
	sess, err := ctxSession(c)
	if err != nil {
		return nil, err
	}
	return h.workspaces.Workspace(c.Request().Context(), sess)
}

// mutate runs fn against the caller's workspace and records its outcome.
func (h *PlannerHandler) mutate(c echo.Context, entity, op string, fn func(ctx context.Context, ws *planner.Workspace) error) error {
	ws, err := h.workspace(c)
	if err != nil {
		return err
	}

	mode := string(ws.Mode())
	start := time.Now()
	err = fn(c.Request().Context(), ws)
	metrics.MutationDuration.WithLabelValues(entity, op, mode).Observe(time.Since(start).Seconds())
	metrics.MutationsTotal.WithLabelValues(entity, op, mode, outcome(err)).Inc()
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case domain.IsNotFound(err):
		return "not_found"
	case errors.Is(err, domain.ErrRemote):
		return "remote_error"
	default:
		return "error"
	}
}

// ── Views ─────────────────────────────────────────────────────────────────────

// Planner returns every entity of the workspace plus the advisories.
//
// @Summary      Planner snapshot
// @Tags         planner
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  plannerResponse
// @Failure      401  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /v1/planner [get]
func (h *PlannerHandler) Planner(c echo.Context) error {
	ws, err := h.workspace(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPlannerResponse(ws.Mode(), ws.Snapshot()))
}

// Week returns the seven-day grid.
//
// @Summary      Weekly grid
// @Tags         planner
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.WeekView
// @Failure      401  {object}  errorResponse
// @Router       /v1/week [get]
func (h *PlannerHandler) Week(c echo.Context) error {
	ws, err := h.workspace(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ws.Snapshot().Week())
}

// Day returns the activities of one day ordered by time.
//
// @Summary      Activities on a day
// @Tags         planner
// @Produce      json
// @Security     BearerAuth
// @Param        day  path      string  true  "Day name (Monday..Sunday or Lunes..Domingo)"
// @Success      200  {object}  dayResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/week/{day} [get]
func (h *PlannerHandler) Day(c echo.Context) error {
	day, ok := domain.ParseDay(c.Param("day"))
	if !ok {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "unknown day")
	}
	ws, err := h.workspace(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dayResponse{Day: day, Activities: ws.Snapshot().ActivitiesOn(day)})
}

// Advisories lists roles without objectives and objectives without activities.
//
// @Summary      Planner advisories
// @Tags         planner
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  planner.Advisories
// @Router       /v1/advisories [get]
func (h *PlannerHandler) Advisories(c echo.Context) error {
	ws, err := h.workspace(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ws.Snapshot().Advisories())
}

// ── Roles ─────────────────────────────────────────────────────────────────────

// CreateRole handles POST /v1/roles.
//
// @Summary      Add a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      roleRequest  true  "Role"
// @Success      201   {object}  domain.Role
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/roles [post]
func (h *PlannerHandler) CreateRole(c echo.Context) error {
	var req roleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	var role domain.Role
	if err := h.mutate(c, "role", "add", func(ctx context.Context, ws *planner.Workspace) (err error) {
		role, err = ws.AddRole(ctx, toRoleInput(req))
		return err
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, role)
}

// UpdateRole handles PUT /v1/roles/:id.
//
// @Summary      Edit a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int          true  "Role id"
// @Param        body  body      roleRequest  true  "Role"
// @Success      200   {object}  domain.Role
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/roles/{id} [put]
func (h *PlannerHandler) UpdateRole(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req roleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	var role domain.Role
	if err := h.mutate(c, "role", "edit", func(ctx context.Context, ws *planner.Workspace) (err error) {
		role, err = ws.EditRole(ctx, id, toRoleInput(req))
		return err
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, role)
}

// DeleteRole handles DELETE /v1/roles/:id. Objectives and activities of the
// role go with it.
//
// @Summary      Delete a role
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Role id"
// @Success      200  {object}  deleteResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/roles/{id} [delete]
func (h *PlannerHandler) DeleteRole(c echo.Context) error {
	return h.remove(c, "role", func(ctx context.Context, ws *planner.Workspace, id int64) (planner.Cascade, error) {
		return ws.DeleteRole(ctx, id)
	})
}

// ── Objectives ────────────────────────────────────────────────────────────────

// CreateObjective handles POST /v1/objectives.
//
// @Summary      Add an objective
// @Tags         objectives
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      objectiveRequest  true  "Objective"
// @Success      201   {object}  domain.Objective
// @Failure      422   {object}  errorResponse
// @Router       /v1/objectives [post]
func (h *PlannerHandler) CreateObjective(c echo.Context) error {
	var req objectiveRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	var obj domain.Objective
	if err := h.mutate(c, "objective", "add", func(ctx context.Context, ws *planner.Workspace) (err error) {
		obj, err = ws.AddObjective(ctx, toObjectiveInput(req))
		return err
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, obj)
}

// UpdateObjective handles PUT /v1/objectives/:id.
//
// @Summary      Edit an objective
// @Tags         objectives
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int               true  "Objective id"
// @Param        body  body      objectiveRequest  true  "Objective"
// @Success      200   {object}  domain.Objective
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/objectives/{id} [put]
func (h *PlannerHandler) UpdateObjective(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req objectiveRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	var obj domain.Objective
	if err := h.mutate(c, "objective", "edit", func(ctx context.Context, ws *planner.Workspace) (err error) {
		obj, err = ws.EditObjective(ctx, id, toObjectiveInput(req))
		return err
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, obj)
}

// DeleteObjective handles DELETE /v1/objectives/:id.
//
// @Summary      Delete an objective
// @Tags         objectives
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Objective id"
// @Success      200  {object}  deleteResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/objectives/{id} [delete]
func (h *PlannerHandler) DeleteObjective(c echo.Context) error {
	return h.remove(c, "objective", func(ctx context.Context, ws *planner.Workspace, id int64) (planner.Cascade, error) {
		return ws.DeleteObjective(ctx, id)
	})
}

// ── Activities ────────────────────────────────────────────────────────────────

// CreateActivity handles POST /v1/activities.
//
// @Summary      Schedule an activity
// @Tags         activities
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      activityRequest  true  "Activity"
// @Success      201   {object}  domain.Activity
// @Failure      422   {object}  errorResponse
// @Router       /v1/activities [post]
func (h *PlannerHandler) CreateActivity(c echo.Context) error {
	var req activityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	var act domain.Activity
	if err := h.mutate(c, "activity", "add", func(ctx context.Context, ws *planner.Workspace) (err error) {
		act, err = ws.AddActivity(ctx, toActivityInput(req))
		return err
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, act)
}

// UpdateActivity handles PUT /v1/activities/:id.
//
// @Summary      Edit an activity
// @Tags         activities
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int              true  "Activity id"
// @Param        body  body      activityRequest  true  "Activity"
// @Success      200   {object}  domain.Activity
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/activities/{id} [put]
func (h *PlannerHandler) UpdateActivity(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req activityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	var act domain.Activity
	if err := h.mutate(c, "activity", "edit", func(ctx context.Context, ws *planner.Workspace) (err error) {
		act, err = ws.EditActivity(ctx, id, toActivityInput(req))
		return err
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, act)
}

// ToggleActivity handles POST /v1/activities/:id/toggle.
//
// @Summary      Toggle completed
// @Tags         activities
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Activity id"
// @Success      200  {object}  domain.Activity
// @Failure      404  {object}  errorResponse
// @Router       /v1/activities/{id}/toggle [post]
func (h *PlannerHandler) ToggleActivity(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var act domain.Activity
	if err := h.mutate(c, "activity", "toggle", func(ctx context.Context, ws *planner.Workspace) (err error) {
		act, err = ws.ToggleActivity(ctx, id)
		return err
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, act)
}

// DeleteActivity handles DELETE /v1/activities/:id.
//
// @Summary      Delete an activity
// @Tags         activities
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Activity id"
// @Success      200  {object}  deleteResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/activities/{id} [delete]
func (h *PlannerHandler) DeleteActivity(c echo.Context) error {
	return h.remove(c, "activity", func(ctx context.Context, ws *planner.Workspace, id int64) (planner.Cascade, error) {
		return ws.DeleteActivity(ctx, id)
	})
}

func (h *PlannerHandler) remove(c echo.Context, entity string, del func(context.Context, *planner.Workspace, int64) (planner.Cascade, error)) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var cascade planner.Cascade
	if err := h.mutate(c, entity, "delete", func(ctx context.Context, ws *planner.Workspace) (err error) {
		cascade, err = del(ctx, ws, id)
		return err
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deleteResponse{Deleted: cascade})
}
