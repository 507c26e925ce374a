package planner

import (
	"context"
	"sync"
	"time"

	"github.com/ahorrat/weekly-planner/internal/core/domain"
)

// idClock hands out millisecond timestamps, bumped by one whenever two
// calls land in the same millisecond so ids stay unique within a session.
type idClock struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

func (c *idClock) next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.now().UnixMilli()
	if id <= c.last {
		id = c.last + 1
	}
	c.last = id
	return id
}

// GuestBackend confirms every write locally. Nothing leaves the process and
// everything is lost when the session ends.
type GuestBackend struct {
	ownerID string
	ids     *idClock
	now     func() time.Time
}

// NewGuestBackend returns a backend for a guest session. A nil clock means time.Now.
func NewGuestBackend(ownerID string, clock func() time.Time) *GuestBackend {
	if clock == nil {
		clock = time.Now
	}
	return &GuestBackend{
		ownerID: ownerID,
		ids:     &idClock{now: clock},
		now:     clock,
	}
}

func (g *GuestBackend) Mode() domain.SessionMode { return domain.ModeGuest }

// Load always starts a guest with empty collections.
func (g *GuestBackend) Load(context.Context) ([]domain.Role, []domain.Objective, []domain.Activity, error) {
	return nil, nil, nil, nil
}

func (g *GuestBackend) CreateRole(_ context.Context, r domain.Role) (domain.Role, error) {
	r.ID = g.ids.next()
	r.OwnerID = g.ownerID
	r.CreatedAt = g.now().UTC()
	return r, nil
}

func (g *GuestBackend) UpdateRole(_ context.Context, r domain.Role) (domain.Role, error) {
	return r, nil
}

func (g *GuestBackend) DeleteRole(context.Context, int64) error { return nil }

func (g *GuestBackend) CreateObjective(_ context.Context, o domain.Objective) (domain.Objective, error) {
	o.ID = g.ids.next()
	o.CreatedAt = g.now().UTC()
	return o, nil
}

func (g *GuestBackend) UpdateObjective(_ context.Context, o domain.Objective) (domain.Objective, error) {
	return o, nil
}

func (g *GuestBackend) DeleteObjective(context.Context, int64) error { return nil }

func (g *GuestBackend) CreateActivity(_ context.Context, a domain.Activity) (domain.Activity, error) {
	a.ID = g.ids.next()
	a.Completed = false
	a.CreatedAt = g.now().UTC()
	return a, nil
}

func (g *GuestBackend) UpdateActivity(_ context.Context, a domain.Activity) (domain.Activity, error) {
	return a, nil
}

func (g *GuestBackend) SetCompleted(_ context.Context, a domain.Activity, completed bool) (domain.Activity, error) {
	a.Completed = completed
	return a, nil
}

func (g *GuestBackend) DeleteActivity(context.Context, int64) error { return nil }
