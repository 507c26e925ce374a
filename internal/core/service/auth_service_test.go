package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ahorrat/weekly-planner/internal/core/domain"
)

type stubAuthRepo struct {
	users map[string]*domain.User
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubAuthRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	copy := cloneUser(user)
	if copy.ID == "" {
		copy.ID = "u-" + user.Email
	}
	r.users[copy.Email] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubAuthRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := r.users[email]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

type stubSessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	saveErr  error
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]domain.Session)}
}

func (s *stubSessionStore) Save(_ context.Context, sess *domain.Session, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.sessions[sess.ID] = *sess
	return nil
}

func (s *stubSessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *stubSessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func newAuth() (*AuthService, *stubAuthRepo, *stubSessionStore) {
	repo := newStubAuthRepo()
	store := newStubSessionStore()
	return NewAuthService(repo, store, "secret", time.Hour, zerolog.Nop()), repo, store
}

func TestAuthService_SignUp_SignsIn(t *testing.T) {
	svc, repo, store := newAuth()

	res, err := svc.SignUp(context.Background(), " Alice@Example.com ", "pass123")
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if res.Token == "" || res.Session == nil {
		t.Fatalf("expected a signed-in result, got %+v", res)
	}
	if res.Session.Mode != domain.ModeUser {
		t.Fatalf("expected user mode, got %s", res.Session.Mode)
	}

	stored := repo.users["alice@example.com"]
	if stored == nil {
		t.Fatalf("expected user stored under normalised email")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if _, ok := store.sessions[res.Session.ID]; !ok {
		t.Fatalf("session not saved")
	}
}

func TestAuthService_SignUp_Validation(t *testing.T) {
	svc, _, _ := newAuth()

	if _, err := svc.SignUp(context.Background(), "", "pass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.SignUp(context.Background(), "bob@example.com", ""); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_SignUp_Duplicate(t *testing.T) {
	svc, _, _ := newAuth()

	_, _ = svc.SignUp(context.Background(), "bob@example.com", "pass")
	if _, err := svc.SignUp(context.Background(), "bob@example.com", "pass2"); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_SignIn_TokenClaims(t *testing.T) {
	svc, _, _ := newAuth()
	if _, err := svc.SignUp(context.Background(), "carol@example.com", "s3cret"); err != nil {
		t.Fatalf("sign up failed: %v", err)
	}

	res, err := svc.SignIn(context.Background(), "carol@example.com", "s3cret")
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(res.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["sid"] != res.Session.ID {
		t.Fatalf("expected sid %s, got %v", res.Session.ID, claims["sid"])
	}
	if claims["mode"] != string(domain.ModeUser) {
		t.Fatalf("expected mode claim user, got %v", claims["mode"])
	}
}

func TestAuthService_SignIn_InvalidPassword(t *testing.T) {
	svc, _, _ := newAuth()
	_, _ = svc.SignUp(context.Background(), "dave@example.com", "goodpass")

	if _, err := svc.SignIn(context.Background(), "dave@example.com", "badpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_SignIn_UnknownUser(t *testing.T) {
	svc, _, _ := newAuth()

	if _, err := svc.SignIn(context.Background(), "nobody@example.com", "pass"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_SignInGuest(t *testing.T) {
	svc, repo, _ := newAuth()

	res, err := svc.SignInGuest(context.Background())
	if err != nil {
		t.Fatalf("guest sign in failed: %v", err)
	}
	if !res.Session.IsGuest() {
		t.Fatalf("expected guest session, got %s", res.Session.Mode)
	}
	if !strings.HasPrefix(res.User.Email, "guest_") || !strings.HasSuffix(res.User.Email, "@"+guestEmailDomain) {
		t.Fatalf("unexpected guest email %q", res.User.Email)
	}
	if !repo.users[res.User.Email].IsGuest {
		t.Fatalf("guest account not flagged")
	}
}

func TestAuthService_SignOut_NotifiesAndRevokes(t *testing.T) {
	svc, _, store := newAuth()

	var events []domain.SessionEvent
	svc.Subscribe(func(_ context.Context, ev domain.SessionEvent) {
		events = append(events, ev)
	})

	res, err := svc.SignInGuest(context.Background())
	if err != nil {
		t.Fatalf("guest sign in failed: %v", err)
	}
	if err := svc.SignOut(context.Background(), res.Session.ID); err != nil {
		t.Fatalf("sign out failed: %v", err)
	}

	if len(events) != 2 || events[0].Kind != domain.SignedIn || events[1].Kind != domain.SignedOut {
		t.Fatalf("unexpected events: %+v", events)
	}
	if _, ok := store.sessions[res.Session.ID]; ok {
		t.Fatalf("session still stored after sign out")
	}
	if _, err := svc.Session(context.Background(), res.Session.ID); err != domain.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := svc.SignOut(context.Background(), res.Session.ID); err != domain.ErrSessionNotFound {
		t.Fatalf("expected second sign out to report ErrSessionNotFound, got %v", err)
	}
}

func TestAuthService_SessionStoreFailure(t *testing.T) {
	svc, _, store := newAuth()
	store.saveErr = errors.New("redis down")

	if _, err := svc.SignInGuest(context.Background()); err == nil || !errors.Is(err, store.saveErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}
