package ports

import (
	"context"

	"github.com/ahorrat/weekly-planner/internal/core/domain"
)

// PlannerRepository is the remote store behind authenticated workspaces.
// Every call is scoped to the owning user. Inserts and updates return the
// row as stored, with the id assigned by the store. Deletes cascade.
//
// List methods return roles by creation time, objectives by priority and
// activities by time of day.
type PlannerRepository interface {
	ListRoles(ctx context.Context, ownerID string) ([]domain.Role, error)
	ListObjectives(ctx context.Context, ownerID string) ([]domain.Objective, error)
	ListActivities(ctx context.Context, ownerID string) ([]domain.Activity, error)

	InsertRole(ctx context.Context, ownerID string, r domain.Role) (domain.Role, error)
	UpdateRole(ctx context.Context, ownerID string, r domain.Role) (domain.Role, error)
	DeleteRole(ctx context.Context, ownerID string, id int64) error

	InsertObjective(ctx context.Context, ownerID string, o domain.Objective) (domain.Objective, error)
	UpdateObjective(ctx context.Context, ownerID string, o domain.Objective) (domain.Objective, error)
	DeleteObjective(ctx context.Context, ownerID string, id int64) error

	InsertActivity(ctx context.Context, ownerID string, a domain.Activity) (domain.Activity, error)
	UpdateActivity(ctx context.Context, ownerID string, a domain.Activity) (domain.Activity, error)
	SetActivityCompleted(ctx context.Context, ownerID string, id int64, completed bool) (domain.Activity, error)
	DeleteActivity(ctx context.Context, ownerID string, id int64) error
}
