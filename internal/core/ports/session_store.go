package ports

import (
	"context"
	"time"

	"github.com/ahorrat/weekly-planner/internal/core/domain"
)

// SessionStore persists live sessions. A missing or expired session yields
// domain.ErrSessionNotFound.
type SessionStore interface {
	Save(ctx context.Context, s *domain.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}
