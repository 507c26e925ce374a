package domain

import "time"

// SessionMode distinguishes a guest session, whose data lives only in memory,
// from an authenticated one backed by the remote store.
type SessionMode string

const (
	ModeGuest SessionMode = "guest"
	ModeUser  SessionMode = "user"
)

// User models an account known to the auth collaborator.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsGuest      bool      `json:"is_guest"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session is the signed-in state of one client. Its Mode is the persisted
// flag that selects the workspace backend; it disappears on sign-out.
type Session struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Email     string      `json:"email"`
	Mode      SessionMode `json:"mode"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// IsGuest reports whether the session keeps its entities in memory only.
func (s Session) IsGuest() bool {
	return s.Mode == ModeGuest
}

// SessionEventKind names an auth state change.
type SessionEventKind string

const (
	SignedIn  SessionEventKind = "SIGNED_IN"
	SignedOut SessionEventKind = "SIGNED_OUT"
)

// SessionEvent is delivered to subscribers of the auth service.
type SessionEvent struct {
	Kind    SessionEventKind
	Session Session
}
