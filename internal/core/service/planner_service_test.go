package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ahorrat/weekly-planner/internal/core/domain"
	"github.com/ahorrat/weekly-planner/internal/core/planner"
)

// countingRepo fails the test if a guest session ever reaches it.
type countingRepo struct {
	calls atomic.Int32
	err   error
	id    atomic.Int64
}

func (r *countingRepo) ListRoles(context.Context, string) ([]domain.Role, error) {
	r.calls.Add(1)
	return []domain.Role{{ID: 1, Name: "Worker"}}, r.err
}

func (r *countingRepo) ListObjectives(context.Context, string) ([]domain.Objective, error) {
	r.calls.Add(1)
	return nil, r.err
}

func (r *countingRepo) ListActivities(context.Context, string) ([]domain.Activity, error) {
	r.calls.Add(1)
	return nil, r.err
}

func (r *countingRepo) InsertRole(_ context.Context, owner string, role domain.Role) (domain.Role, error) {
	r.calls.Add(1)
	role.ID = r.id.Add(1) + 100
	role.OwnerID = owner
	return role, r.err
}

func (r *countingRepo) UpdateRole(_ context.Context, _ string, role domain.Role) (domain.Role, error) {
	r.calls.Add(1)
	return role, r.err
}

func (r *countingRepo) DeleteRole(context.Context, string, int64) error {
	r.calls.Add(1)
	return r.err
}

func (r *countingRepo) InsertObjective(_ context.Context, _ string, o domain.Objective) (domain.Objective, error) {
	r.calls.Add(1)
	o.ID = r.id.Add(1) + 100
	return o, r.err
}

func (r *countingRepo) UpdateObjective(_ context.Context, _ string, o domain.Objective) (domain.Objective, error) {
	r.calls.Add(1)
	return o, r.err
}

func (r *countingRepo) DeleteObjective(context.Context, string, int64) error {
	r.calls.Add(1)
	return r.err
}

func (r *countingRepo) InsertActivity(_ context.Context, _ string, a domain.Activity) (domain.Activity, error) {
	r.calls.Add(1)
	a.ID = r.id.Add(1) + 100
	return a, r.err
}

func (r *countingRepo) UpdateActivity(_ context.Context, _ string, a domain.Activity) (domain.Activity, error) {
	r.calls.Add(1)
	return a, r.err
}

func (r *countingRepo) SetActivityCompleted(_ context.Context, _ string, id int64, completed bool) (domain.Activity, error) {
	r.calls.Add(1)
	return domain.Activity{ID: id, Completed: completed}, r.err
}

func (r *countingRepo) DeleteActivity(context.Context, string, int64) error {
	r.calls.Add(1)
	return r.err
}

func TestPlannerService_GuestNeverReachesRepository(t *testing.T) {
	repo := &countingRepo{}
	svc := NewPlannerService(repo, zerolog.Nop())
	ctx := context.Background()

	ws, err := svc.Workspace(ctx, &domain.Session{ID: "s1", UserID: "g1", Mode: domain.ModeGuest})
	if err != nil {
		t.Fatalf("open workspace: %v", err)
	}

	role, err := ws.AddRole(ctx, planner.RoleInput{Name: "Student"})
	if err != nil {
		t.Fatalf("add role: %v", err)
	}
	obj, err := ws.AddObjective(ctx, planner.ObjectiveInput{RoleID: role.ID, Description: "Pass exam", Priority: 1})
	if err != nil {
		t.Fatalf("add objective: %v", err)
	}
	act, err := ws.AddActivity(ctx, planner.ActivityInput{ObjectiveID: obj.ID, Description: "Study", Day: "Monday", Time: "18:00"})
	if err != nil {
		t.Fatalf("add activity: %v", err)
	}
	if _, err := ws.ToggleActivity(ctx, act.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := ws.DeleteRole(ctx, role.ID); err != nil {
		t.Fatalf("delete role: %v", err)
	}

	if n := repo.calls.Load(); n != 0 {
		t.Fatalf("guest session made %d repository calls", n)
	}
}

func TestPlannerService_UserLoadsFromRepository(t *testing.T) {
	repo := &countingRepo{}
	svc := NewPlannerService(repo, zerolog.Nop())

	ws, err := svc.Workspace(context.Background(), &domain.Session{ID: "s1", UserID: "u1", Mode: domain.ModeUser})
	if err != nil {
		t.Fatalf("open workspace: %v", err)
	}
	if ws.Mode() != domain.ModeUser {
		t.Fatalf("expected user mode, got %s", ws.Mode())
	}
	if got := ws.Snapshot().RoleName(1); got != "Worker" {
		t.Fatalf("expected loaded role, got %q", got)
	}
	if n := repo.calls.Load(); n != 3 {
		t.Fatalf("expected 3 list calls, got %d", n)
	}
}

func TestPlannerService_ConcurrentOpenSharesWorkspace(t *testing.T) {
	repo := &countingRepo{}
	svc := NewPlannerService(repo, zerolog.Nop())
	sess := &domain.Session{ID: "s1", UserID: "u1", Mode: domain.ModeUser}

	var wg sync.WaitGroup
	got := make([]*planner.Workspace, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ws, err := svc.Workspace(context.Background(), sess)
			if err != nil {
				t.Errorf("open workspace: %v", err)
				return
			}
			got[i] = ws
		}(i)
	}
	wg.Wait()

	for _, ws := range got {
		if ws != got[0] {
			t.Fatalf("expected one shared workspace")
		}
	}
	if svc.Open() != 1 {
		t.Fatalf("expected 1 open workspace, got %d", svc.Open())
	}
}

func TestPlannerService_LoadFailureIsNotCached(t *testing.T) {
	repo := &countingRepo{err: errors.New("unreachable")}
	svc := NewPlannerService(repo, zerolog.Nop())
	sess := &domain.Session{ID: "s1", UserID: "u1", Mode: domain.ModeUser}

	if _, err := svc.Workspace(context.Background(), sess); !errors.Is(err, domain.ErrRemote) {
		t.Fatalf("expected ErrRemote, got %v", err)
	}
	if svc.Open() != 0 {
		t.Fatalf("failed load must not register a workspace")
	}

	repo.err = nil
	if _, err := svc.Workspace(context.Background(), sess); err != nil {
		t.Fatalf("retry should succeed: %v", err)
	}
}

func TestPlannerService_SignOutClearsWorkspace(t *testing.T) {
	auth, _, _ := newAuth()
	svc := NewPlannerService(&countingRepo{}, zerolog.Nop())
	auth.Subscribe(svc.HandleSessionEvent)
	ctx := context.Background()

	res, err := auth.SignInGuest(ctx)
	if err != nil {
		t.Fatalf("guest sign in: %v", err)
	}
	if svc.Open() != 1 {
		t.Fatalf("expected workspace opened on sign in")
	}

	ws, err := svc.Workspace(ctx, res.Session)
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	if _, err := ws.AddRole(ctx, planner.RoleInput{Name: "Student"}); err != nil {
		t.Fatalf("add role: %v", err)
	}

	if err := auth.SignOut(ctx, res.Session.ID); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if svc.Open() != 0 {
		t.Fatalf("expected workspace closed on sign out")
	}
	if len(ws.Snapshot().Roles) != 0 {
		t.Fatalf("guest data must be discarded on sign out")
	}
}

// gatedRepo blocks ListRoles until release is closed.
type gatedRepo struct {
	countingRepo
	entered chan struct{}
	release chan struct{}
}

func (r *gatedRepo) ListRoles(ctx context.Context, owner string) ([]domain.Role, error) {
	close(r.entered)
	<-r.release
	return r.countingRepo.ListRoles(ctx, owner)
}

func TestPlannerService_CloseDuringLoadDiscardsWorkspace(t *testing.T) {
	repo := &gatedRepo{entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewPlannerService(repo, zerolog.Nop())
	sess := &domain.Session{ID: "s1", UserID: "u1", Mode: domain.ModeUser}

	errCh := make(chan error, 1)
	go func() {
		_, err := svc.Workspace(context.Background(), sess)
		errCh <- err
	}()

	<-repo.entered
	svc.Close("s1")
	close(repo.release)

	if err := <-errCh; !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if svc.Open() != 0 {
		t.Fatalf("signed-out session kept a workspace: %d open", svc.Open())
	}
}

func TestPlannerService_ExpiredSessionsAreSwept(t *testing.T) {
	svc := NewPlannerService(&countingRepo{}, zerolog.Nop())
	now := time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)
	svc.clock = func() time.Time { return now }
	ctx := context.Background()

	short := &domain.Session{ID: "short", UserID: "g1", Mode: domain.ModeGuest, ExpiresAt: now.Add(time.Hour)}
	long := &domain.Session{ID: "long", UserID: "g2", Mode: domain.ModeGuest, ExpiresAt: now.Add(48 * time.Hour)}
	for _, sess := range []*domain.Session{short, long} {
		if _, err := svc.Workspace(ctx, sess); err != nil {
			t.Fatalf("open %s: %v", sess.ID, err)
		}
	}

	now = now.Add(2 * time.Hour)
	if n := svc.Sweep(); n != 1 {
		t.Fatalf("expected 1 swept workspace, got %d", n)
	}
	if svc.Open() != 1 {
		t.Fatalf("expected 1 open workspace, got %d", svc.Open())
	}
}

func TestPlannerService_ExpiredWorkspaceIsReopened(t *testing.T) {
	svc := NewPlannerService(&countingRepo{}, zerolog.Nop())
	now := time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)
	svc.clock = func() time.Time { return now }
	ctx := context.Background()
	sess := &domain.Session{ID: "s1", UserID: "g1", Mode: domain.ModeGuest, ExpiresAt: now.Add(time.Minute)}

	first, err := svc.Workspace(ctx, sess)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	now = now.Add(time.Hour)
	sess.ExpiresAt = now.Add(time.Hour)
	second, err := svc.Workspace(ctx, sess)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if first == second {
		t.Fatalf("expired workspace must not be reused")
	}
}
