package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ahorrat/weekly-planner/internal/core/domain"
	"github.com/ahorrat/weekly-planner/internal/core/ports"
)

const guestEmailDomain = "guest.ahorrat.app"

// AuthService implements sign-up, sign-in and the session lifecycle.
// Tokens carry the session id; the session record itself lives in the
// session store so sign-out revokes the token immediately.
type AuthService struct {
	repo      ports.AuthRepository
	sessions  ports.SessionStore
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
	now       func() time.Time

	mu        sync.RWMutex
	listeners []ports.SessionListener
}

func NewAuthService(repo ports.AuthRepository, sessions ports.SessionStore, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		repo:      repo,
		sessions:  sessions,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
		now:       time.Now,
	}
}

// Subscribe registers l for every future sign-in and sign-out.
func (s *AuthService) Subscribe(l ports.SessionListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *AuthService) notify(ctx context.Context, ev domain.SessionEvent) {
	s.mu.RLock()
	listeners := append([]ports.SessionListener(nil), s.listeners...)
	s.mu.RUnlock()
	for _, l := range listeners {
		l(ctx, ev)
	}
}

// SignUp creates the account and signs it in straight away.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if _, err := s.createUser(ctx, email, password, false); err != nil {
		return nil, err
	}
	return s.SignIn(ctx, email, password)
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	mode := domain.ModeUser
	if user.IsGuest {
		mode = domain.ModeGuest
	}
	return s.openSession(ctx, user, mode)
}

// SignInGuest provisions a throwaway account and opens a guest session for
// it. Guest sessions keep their planner data in memory only.
func (s *AuthService) SignInGuest(ctx context.Context) (*ports.AuthResult, error) {
	email := fmt.Sprintf("guest_%d_%s@%s", s.now().UnixMilli(), uuid.NewString()[:8], guestEmailDomain)
	user, err := s.createUser(ctx, email, uuid.NewString(), true)
	if err != nil {
		return nil, err
	}
	return s.openSession(ctx, user, domain.ModeGuest)
}

func (s *AuthService) Session(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, domain.ErrSessionNotFound
	}
	return s.sessions.Get(ctx, sessionID)
}

// SignOut deletes the session and tells subscribers to drop its state.
func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}

	s.log.Info().Str("session_id", sess.ID).Str("mode", string(sess.Mode)).Msg("signed out")
	s.notify(ctx, domain.SessionEvent{Kind: domain.SignedOut, Session: *sess})
	return nil
}

func (s *AuthService) createUser(ctx context.Context, email, password string, guest bool) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	return s.repo.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		IsGuest:      guest,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (s *AuthService) openSession(ctx context.Context, user *domain.User, mode domain.SessionMode) (*ports.AuthResult, error) {
	now := s.now().UTC()
	sess := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		Mode:      mode,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokenTTL),
	}
	if err := s.sessions.Save(ctx, sess, s.tokenTTL); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	token, err := s.generateToken(sess)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("session_id", sess.ID).Str("mode", string(mode)).Msg("signed in")
	s.notify(ctx, domain.SessionEvent{Kind: domain.SignedIn, Session: *sess})
	return &ports.AuthResult{Token: token, Session: sess, User: user}, nil
}

func (s *AuthService) generateToken(sess *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"sub":   sess.UserID,
		"sid":   sess.ID,
		"email": sess.Email,
		"mode":  string(sess.Mode),
		"exp":   sess.ExpiresAt.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
