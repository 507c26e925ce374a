package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/ahorrat/weekly-planner/internal/core/domain"
	"github.com/ahorrat/weekly-planner/internal/core/planner"
)

type stubWeekExporter struct {
	art *domain.Artifact
	err error
	sid string
}

func (s *stubWeekExporter) Export(_ context.Context, sid string, _ *planner.Workspace) (*domain.Artifact, error) {
	s.sid = sid
	return s.art, s.err
}

func TestExportHandler_PDF(t *testing.T) {
	exp := &stubWeekExporter{art: &domain.Artifact{
		Filename:    "weekly-plan.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.7"),
		URL:         "https://bucket.test/exports/s1/plan.pdf",
	}}
	h := NewExportHandler(newGuestWorkspaces(), exp)

	rec, err := call(t, h.PDF, http.MethodGet, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != "%PDF-1.7" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="weekly-plan.pdf"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if rec.Header().Get(HeaderArchiveURL) == "" {
		t.Fatalf("expected archive url header")
	}
	if exp.sid != "s1" {
		t.Fatalf("expected export for session s1, got %q", exp.sid)
	}
}

func TestExportHandler_FailureWritesNothing(t *testing.T) {
	h := NewExportHandler(newGuestWorkspaces(), &stubWeekExporter{err: domain.ErrExportFailed})

	rec, err := call(t, h.PDF, http.MethodGet, "")
	if !errors.Is(err, domain.ErrExportFailed) {
		t.Fatalf("expected ErrExportFailed, got %v", err)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("no body may be written on failure")
	}
}
