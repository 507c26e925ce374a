package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ahorrat/weekly-planner/internal/core/domain"
	"github.com/ahorrat/weekly-planner/internal/core/planner"
	"github.com/ahorrat/weekly-planner/internal/core/ports"
)

const (
	ExportFilename    = "weekly-plan.pdf"
	ExportContentType = "application/pdf"
)

// ExportService turns the current week of a workspace into a PDF.
type ExportService struct {
	exporter ports.Exporter
	archive  ports.ArtifactStore // optional
	title    string
	log      zerolog.Logger
	now      func() time.Time
}

func NewExportService(exporter ports.Exporter, archive ports.ArtifactStore, title string, log zerolog.Logger) *ExportService {
	if title == "" {
		title = "AhorraT - Weekly Plan"
	}
	return &ExportService{exporter: exporter, archive: archive, title: title, log: log, now: time.Now}
}

// Export renders the week from the workspace's current snapshot. The body is
// complete before it is returned; on failure nothing is returned.
func (s *ExportService) Export(ctx context.Context, sessionID string, ws *planner.Workspace) (*domain.Artifact, error) {
	generatedAt := s.now().UTC()
	doc := domain.Document{
		Title:       s.title,
		GeneratedAt: generatedAt,
		Week:        ws.Snapshot().Week(),
	}

	data, err := s.exporter.Export(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExportFailed, err)
	}

	artifact := &domain.Artifact{
		Filename:    ExportFilename,
		ContentType: ExportContentType,
		Data:        data,
	}

	// Archiving is best effort; the download still succeeds without it.
	if s.archive != nil {
		key := fmt.Sprintf("exports/%s/%s-%s", sessionID, generatedAt.Format("20060102T150405Z"), ExportFilename)
		url, err := s.archive.Put(ctx, key, ExportContentType, bytes.NewReader(data))
		if err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("failed to archive export")
		} else {
			artifact.URL = url
		}
	}

	s.log.Info().
		Str("session_id", sessionID).
		Int("activities", doc.Week.Total()).
		Int("bytes", len(data)).
		Msg("week exported")
	return artifact, nil
}
