package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ahorrat/weekly-planner/internal/api/middleware"
	"github.com/ahorrat/weekly-planner/internal/core/domain"
	"github.com/ahorrat/weekly-planner/internal/core/ports"
)

type stubAuthService struct {
	signUpFn  func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	signInFn  func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	signOutFn func(ctx context.Context, sessionID string) error
}

func (s *stubAuthService) SignUp(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.signUpFn(ctx, email, password)
}

func (s *stubAuthService) SignIn(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.signInFn(ctx, email, password)
}

func (s *stubAuthService) SignInGuest(context.Context) (*ports.AuthResult, error) {
	return result("guest_1@guest.ahorrat.app", domain.ModeGuest), nil
}

func (s *stubAuthService) Session(context.Context, string) (*domain.Session, error) {
	return nil, domain.ErrSessionNotFound
}

func (s *stubAuthService) SignOut(ctx context.Context, sessionID string) error {
	return s.signOutFn(ctx, sessionID)
}

func (s *stubAuthService) Subscribe(ports.SessionListener) {}

func result(email string, mode domain.SessionMode) *ports.AuthResult {
	return &ports.AuthResult{
		Token:   "tok",
		Session: &domain.Session{ID: "s1", UserID: "u1", Email: email, Mode: mode},
		User:    &domain.User{ID: "u1", Email: email, IsGuest: mode == domain.ModeGuest},
	}
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		signUpFn: func(_ context.Context, email, password string) (*ports.AuthResult, error) {
			if email != "alice@example.com" || password != "secret1" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return result(email, domain.ModeUser), nil
		},
	}
	handler := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/register", `{"email":"alice@example.com","password":"secret1"}`), rec)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "tok" {
		t.Fatalf("expected token in response: %+v", resp)
	}
	sess, ok := resp["session"].(map[string]any)
	if !ok || sess["mode"] != "user" {
		t.Fatalf("unexpected session payload: %+v", resp["session"])
	}
	if user, _ := resp["user"].(map[string]any); user["password_hash"] != nil {
		t.Fatalf("password hash must never be serialised")
	}
}

func TestAuthHandler_Register_Invalid(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{
		signUpFn: func(context.Context, string, string) (*ports.AuthResult, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/register", `{"email":"not-an-email","password":"x"}`), rec)

	err := handler.Register(c)
	if err == nil || !strings.Contains(err.Error(), "email must be a valid email") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{
		signUpFn: func(context.Context, string, string) (*ports.AuthResult, error) {
			return nil, domain.ErrUserExists
		},
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/register", `{"email":"bob@example.com","password":"secret1"}`), rec)

	if err := handler.Register(c); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{
		signInFn: func(context.Context, string, string) (*ports.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/login", `{"email":"bob@example.com","password":"nope"}`), rec)

	if err := handler.Login(c); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_BadPayload(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/login", `{`), rec)

	err := handler.Login(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Guest(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/guest", nil), rec)

	if err := handler.Guest(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated || !strings.Contains(rec.Body.String(), `"mode":"guest"`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newEcho()
	var signedOut string
	handler := NewAuthHandler(&stubAuthService{
		signOutFn: func(_ context.Context, sid string) error {
			signedOut = sid
			return nil
		},
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/logout", nil), rec)
	c.Set(middleware.KeySession, &domain.Session{ID: "s9", Mode: domain.ModeGuest})

	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || signedOut != "s9" {
		t.Fatalf("expected 204 and sign-out of s9, got %d %q", rec.Code, signedOut)
	}
}

func TestAuthHandler_SessionWithoutMiddleware(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/session", nil), rec)

	err := handler.Session(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}
