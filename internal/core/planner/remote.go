package planner

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ahorrat/weekly-planner/internal/core/domain"
	"github.com/ahorrat/weekly-planner/internal/core/ports"
)

// RemoteBackend confirms writes against the remote tables of one user.
type RemoteBackend struct {
	repo    ports.PlannerRepository
	ownerID string
}

func NewRemoteBackend(repo ports.PlannerRepository, ownerID string) *RemoteBackend {
	return &RemoteBackend{repo: repo, ownerID: ownerID}
}

func (b *RemoteBackend) Mode() domain.SessionMode { return domain.ModeUser }

// Load fetches the three tables concurrently. Any failure fails the whole load.
func (b *RemoteBackend) Load(ctx context.Context) ([]domain.Role, []domain.Objective, []domain.Activity, error) {
	var (
		roles      []domain.Role
		objectives []domain.Objective
		activities []domain.Activity
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roles, err = b.repo.ListRoles(gctx, b.ownerID)
		return remoteErr("list roles", err)
	})
	g.Go(func() error {
		var err error
		objectives, err = b.repo.ListObjectives(gctx, b.ownerID)
		return remoteErr("list objectives", err)
	})
	g.Go(func() error {
		var err error
		activities, err = b.repo.ListActivities(gctx, b.ownerID)
		return remoteErr("list activities", err)
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return roles, objectives, activities, nil
}

func (b *RemoteBackend) CreateRole(ctx context.Context, r domain.Role) (domain.Role, error) {
	r.OwnerID = b.ownerID
	out, err := b.repo.InsertRole(ctx, b.ownerID, r)
	return out, remoteErr("insert role", err)
}

func (b *RemoteBackend) UpdateRole(ctx context.Context, r domain.Role) (domain.Role, error) {
	out, err := b.repo.UpdateRole(ctx, b.ownerID, r)
	return out, remoteErr("update role", err)
}

func (b *RemoteBackend) DeleteRole(ctx context.Context, id int64) error {
	return remoteErr("delete role", b.repo.DeleteRole(ctx, b.ownerID, id))
}

func (b *RemoteBackend) CreateObjective(ctx context.Context, o domain.Objective) (domain.Objective, error) {
	out, err := b.repo.InsertObjective(ctx, b.ownerID, o)
	return out, remoteErr("insert objective", err)
}

func (b *RemoteBackend) UpdateObjective(ctx context.Context, o domain.Objective) (domain.Objective, error) {
	out, err := b.repo.UpdateObjective(ctx, b.ownerID, o)
	return out, remoteErr("update objective", err)
}

func (b *RemoteBackend) DeleteObjective(ctx context.Context, id int64) error {
	return remoteErr("delete objective", b.repo.DeleteObjective(ctx, b.ownerID, id))
}

func (b *RemoteBackend) CreateActivity(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	a.Completed = false
	out, err := b.repo.InsertActivity(ctx, b.ownerID, a)
	return out, remoteErr("insert activity", err)
}

func (b *RemoteBackend) UpdateActivity(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	out, err := b.repo.UpdateActivity(ctx, b.ownerID, a)
	return out, remoteErr("update activity", err)
}

func (b *RemoteBackend) SetCompleted(ctx context.Context, a domain.Activity, completed bool) (domain.Activity, error) {
	out, err := b.repo.SetActivityCompleted(ctx, b.ownerID, a.ID, completed)
	return out, remoteErr("toggle activity", err)
}

func (b *RemoteBackend) DeleteActivity(ctx context.Context, id int64) error {
	return remoteErr("delete activity", b.repo.DeleteActivity(ctx, b.ownerID, id))
}

// remoteErr tags repository failures with domain.ErrRemote. Not-found errors
// keep their own identity so the caller can still answer 404.
func remoteErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsNotFound(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrRemote, err)
}
