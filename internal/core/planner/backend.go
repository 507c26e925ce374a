package planner

import (
	"context"

	"github.com/ahorrat/weekly-planner/internal/core/domain"
)

// Backend is where a workspace confirms its writes. It is picked once when
// the workspace opens and never changes for the life of the session.
//
// Every method returns the entity as the backend accepted it; the workspace
// stores exactly that value.
type Backend interface {
	Mode() domain.SessionMode
	Load(ctx context.Context) (roles []domain.Role, objectives []domain.Objective, activities []domain.Activity, err error)

	CreateRole(ctx context.Context, r domain.Role) (domain.Role, error)
	UpdateRole(ctx context.Context, r domain.Role) (domain.Role, error)
	DeleteRole(ctx context.Context, id int64) error

	CreateObjective(ctx context.Context, o domain.Objective) (domain.Objective, error)
	UpdateObjective(ctx context.Context, o domain.Objective) (domain.Objective, error)
	DeleteObjective(ctx context.Context, id int64) error

	CreateActivity(ctx context.Context, a domain.Activity) (domain.Activity, error)
	UpdateActivity(ctx context.Context, a domain.Activity) (domain.Activity, error)
	SetCompleted(ctx context.Context, a domain.Activity, completed bool) (domain.Activity, error)
	DeleteActivity(ctx context.Context, id int64) error
}
