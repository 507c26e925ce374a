package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ahorrat/weekly-planner/internal/api/metrics"
	"github.com/ahorrat/weekly-planner/internal/core/domain"
	"github.com/ahorrat/weekly-planner/internal/core/planner"
)

// HeaderArchiveURL carries the presigned link of an archived export.
const HeaderArchiveURL = "X-Archive-URL"

// WeekExporter produces the weekly document of a workspace.
type WeekExporter interface {
	Export(ctx context.Context, sessionID string, ws *planner.Workspace) (*domain.Artifact, error)
}

type ExportHandler struct {
	workspaces Workspaces
	exporter   WeekExporter
}

func NewExportHandler(workspaces Workspaces, exporter WeekExporter) *ExportHandler {
	return &ExportHandler{workspaces: workspaces, exporter: exporter}
}

// PDF handles GET /v1/export/pdf. The document is fully rendered before the
// first byte is written, so a failure never yields a truncated file.
//
// @Summary      Export the week as PDF
// @Tags         export
// @Produce      application/pdf
// @Security     BearerAuth
// @Success      200  {file}    binary
// @Failure      401  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /v1/export/pdf [get]
func (h *ExportHandler) PDF(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	ws, err := h.workspaces.Workspace(c.Request().Context(), sess)
	if err != nil {
		return err
	}

	start := time.Now()
	art, err := h.exporter.Export(c.Request().Context(), sess.ID, ws)
	metrics.ExportDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ExportsTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.ExportsTotal.WithLabelValues("ok").Inc()

	if art.URL != "" {
		c.Response().Header().Set(HeaderArchiveURL, art.URL)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", art.Filename))
	return c.Blob(http.StatusOK, art.ContentType, art.Data)
}
