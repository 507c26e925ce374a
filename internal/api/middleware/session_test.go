package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ahorrat/weekly-planner/internal/core/domain"
)

type stubLookup struct {
	sessions map[string]*domain.Session
	err      error
}

func (s stubLookup) Session(_ context.Context, id string) (*domain.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	return nil, domain.ErrSessionNotFound
}

func runSession(t *testing.T, lookup SessionLookup, sid string, next echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	if sid != "" {
		c.Set(KeySessionID, sid)
	}
	err := Session(lookup)(next)(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, err
}

func TestSession_LoadsIntoContext(t *testing.T) {
	want := &domain.Session{ID: "s1", Mode: domain.ModeGuest}
	called := false
	rec, _ := runSession(t, stubLookup{sessions: map[string]*domain.Session{"s1": want}}, "s1", func(c echo.Context) error {
		called = true
		if c.Get(KeySession) != want {
			t.Fatalf("session not set")
		}
		return c.NoContent(http.StatusOK)
	})
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected next to run with 200, got %d", rec.Code)
	}
}

func TestSession_SignedOutRejected(t *testing.T) {
	rec, _ := runSession(t, stubLookup{}, "gone", func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSession_MissingClaim(t *testing.T) {
	rec, _ := runSession(t, stubLookup{}, "", func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSession_StoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("redis down")
	_, err := runSession(t, stubLookup{err: storeErr}, "s1", func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error to reach the error handler, got %v", err)
	}
}
