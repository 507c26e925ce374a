package ports

import (
	"context"

	"github.com/ahorrat/weekly-planner/internal/core/domain"
)

// AuthResult is what a successful sign-in hands back to the client.
type AuthResult struct {
	Token   string          `json:"token"`
	Session *domain.Session `json:"session"`
	User    *domain.User    `json:"user"`
}

// SessionListener is notified of every sign-in and sign-out.
type SessionListener func(ctx context.Context, ev domain.SessionEvent)

type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)
	SignInGuest(ctx context.Context) (*AuthResult, error)
	Session(ctx context.Context, sessionID string) (*domain.Session, error)
	SignOut(ctx context.Context, sessionID string) error
	Subscribe(l SessionListener)
}
