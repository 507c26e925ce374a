package planner

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ahorrat/weekly-planner/internal/core/domain"
)

// RoleInput carries the editable fields of a role.
type RoleInput struct {
	Name string
}

// ObjectiveInput carries the editable fields of an objective.
type ObjectiveInput struct {
	RoleID      int64
	Description string
	Priority    domain.Priority
}

// ActivityInput carries the editable fields of an activity. Day and Time are
// parsed leniently and stored in canonical form.
type ActivityInput struct {
	ObjectiveID int64
	Description string
	Day         string
	Time        string
}

// Workspace is the planner state of one session. Every mutation runs in four
// steps: validate, check the target and parent exist, confirm with the
// backend, then apply the confirmed value to the store. A failure at any step
// leaves the store as it was.
//
// Mutations are serialised per workspace. Reads go to the store directly and
// never see a write the backend has not confirmed.
type Workspace struct {
	mu      sync.Mutex
	store   *Store
	backend Backend
}

func NewWorkspace(backend Backend) *Workspace {
	return &Workspace{store: NewStore(), backend: backend}
}

func (w *Workspace) Mode() domain.SessionMode {
	return w.backend.Mode()
}

// Load replaces the store with whatever the backend holds.
func (w *Workspace) Load(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	roles, objectives, activities, err := w.backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("load workspace: %w", err)
	}
	w.store.Replace(roles, objectives, activities)
	return nil
}

// Clear drops all local state. Called on sign-out.
func (w *Workspace) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.store.Clear()
}

func (w *Workspace) Snapshot() Snapshot {
	return w.store.Snapshot()
}

// ── Roles ─────────────────────────────────────────────────────────────────────

func (w *Workspace) AddRole(ctx context.Context, in RoleInput) (domain.Role, error) {
	name, err := required(in.Name, "role name")
	if err != nil {
		return domain.Role{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	created, err := w.backend.CreateRole(ctx, domain.Role{Name: name})
	if err != nil {
		return domain.Role{}, err
	}
	w.store.AppendRole(created)
	return created, nil
}

func (w *Workspace) EditRole(ctx context.Context, id int64, in RoleInput) (domain.Role, error) {
	name, err := required(in.Name, "role name")
	if err != nil {
		return domain.Role{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	current, ok := w.store.Role(id)
	if !ok {
		return domain.Role{}, domain.ErrRoleNotFound
	}
	current.Name = name

	updated, err := w.backend.UpdateRole(ctx, current)
	if err != nil {
		return domain.Role{}, err
	}
	w.store.ReplaceRole(updated)
	return updated, nil
}

// DeleteRole removes the role, its objectives and their activities. A remote
// store that no longer has the row confirms the delete; the local copy goes too.
func (w *Workspace) DeleteRole(ctx context.Context, id int64) (Cascade, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.store.Role(id); !ok {
		return Cascade{}, domain.ErrRoleNotFound
	}
	if err := w.backend.DeleteRole(ctx, id); err != nil && !domain.IsNotFound(err) {
		return Cascade{}, err
	}
	c, _ := w.store.RemoveRole(id)
	return c, nil
}

// ── Objectives ────────────────────────────────────────────────────────────────

func (w *Workspace) AddObjective(ctx context.Context, in ObjectiveInput) (domain.Objective, error) {
	o, err := validateObjective(in)
	if err != nil {
		return domain.Objective{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.store.Role(o.RoleID); !ok {
		return domain.Objective{}, fmt.Errorf("%w: role %d does not exist", domain.ErrValidation, o.RoleID)
	}

	created, err := w.backend.CreateObjective(ctx, o)
	if err != nil {
		return domain.Objective{}, err
	}
	w.store.AppendObjective(created)
	return created, nil
}

func (w *Workspace) EditObjective(ctx context.Context, id int64, in ObjectiveInput) (domain.Objective, error) {
	o, err := validateObjective(in)
	if err != nil {
		return domain.Objective{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	current, ok := w.store.Objective(id)
	if !ok {
		return domain.Objective{}, domain.ErrObjectiveNotFound
	}
	if _, ok := w.store.Role(o.RoleID); !ok {
		return domain.Objective{}, fmt.Errorf("%w: role %d does not exist", domain.ErrValidation, o.RoleID)
	}
	current.RoleID = o.RoleID
	current.Description = o.Description
	current.Priority = o.Priority

	updated, err := w.backend.UpdateObjective(ctx, current)
	if err != nil {
		return domain.Objective{}, err
	}
	w.store.ReplaceObjective(updated)
	return updated, nil
}

// DeleteObjective removes the objective and its activities.
func (w *Workspace) DeleteObjective(ctx context.Context, id int64) (Cascade, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.store.Objective(id); !ok {
		return Cascade{}, domain.ErrObjectiveNotFound
	}
	if err := w.backend.DeleteObjective(ctx, id); err != nil && !domain.IsNotFound(err) {
		return Cascade{}, err
	}
	c, _ := w.store.RemoveObjective(id)
	return c, nil
}

// ── Activities ────────────────────────────────────────────────────────────────

func (w *Workspace) AddActivity(ctx context.Context, in ActivityInput) (domain.Activity, error) {
	a, err := validateActivity(in)
	if err != nil {
		return domain.Activity{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.store.Objective(a.ObjectiveID); !ok {
		return domain.Activity{}, fmt.Errorf("%w: objective %d does not exist", domain.ErrValidation, a.ObjectiveID)
	}

	created, err := w.backend.CreateActivity(ctx, a)
	if err != nil {
		return domain.Activity{}, err
	}
	w.store.AppendActivity(created)
	return created, nil
}

// EditActivity replaces every editable field. The completed flag is kept.
func (w *Workspace) EditActivity(ctx context.Context, id int64, in ActivityInput) (domain.Activity, error) {
	a, err := validateActivity(in)
	if err != nil {
		return domain.Activity{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	current, ok := w.store.Activity(id)
	if !ok {
		return domain.Activity{}, domain.ErrActivityNotFound
	}
	if _, ok := w.store.Objective(a.ObjectiveID); !ok {
		return domain.Activity{}, fmt.Errorf("%w: objective %d does not exist", domain.ErrValidation, a.ObjectiveID)
	}
	current.ObjectiveID = a.ObjectiveID
	current.Description = a.Description
	current.Day = a.Day
	current.Time = a.Time

	updated, err := w.backend.UpdateActivity(ctx, current)
	if err != nil {
		return domain.Activity{}, err
	}
	w.store.ReplaceActivity(updated)
	return updated, nil
}

// ToggleActivity flips the completed flag. Two toggles restore the original value.
func (w *Workspace) ToggleActivity(ctx context.Context, id int64) (domain.Activity, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	current, ok := w.store.Activity(id)
	if !ok {
		return domain.Activity{}, domain.ErrActivityNotFound
	}

	updated, err := w.backend.SetCompleted(ctx, current, !current.Completed)
	if err != nil {
		return domain.Activity{}, err
	}
	w.store.ReplaceActivity(updated)
	return updated, nil
}

func (w *Workspace) DeleteActivity(ctx context.Context, id int64) (Cascade, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.store.Activity(id); !ok {
		return Cascade{}, domain.ErrActivityNotFound
	}
	if err := w.backend.DeleteActivity(ctx, id); err != nil && !domain.IsNotFound(err) {
		return Cascade{}, err
	}
	c, _ := w.store.RemoveActivity(id)
	return c, nil
}

// ── Validation ────────────────────────────────────────────────────────────────

func required(s, field string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: %s must not be empty", domain.ErrValidation, field)
	}
	return s, nil
}

func validateObjective(in ObjectiveInput) (domain.Objective, error) {
	if in.RoleID == 0 {
		return domain.Objective{}, fmt.Errorf("%w: select a role", domain.ErrValidation)
	}
	desc, err := required(in.Description, "objective description")
	if err != nil {
		return domain.Objective{}, err
	}
	if !in.Priority.Valid() {
		return domain.Objective{}, fmt.Errorf("%w: priority must be 1, 2 or 3", domain.ErrValidation)
	}
	return domain.Objective{RoleID: in.RoleID, Description: desc, Priority: in.Priority}, nil
}

func validateActivity(in ActivityInput) (domain.Activity, error) {
	if in.ObjectiveID == 0 {
		return domain.Activity{}, fmt.Errorf("%w: select an objective", domain.ErrValidation)
	}
	desc, err := required(in.Description, "activity description")
	if err != nil {
		return domain.Activity{}, err
	}
	day, ok := domain.ParseDay(in.Day)
	if !ok {
		return domain.Activity{}, fmt.Errorf("%w: unknown day %q", domain.ErrValidation, in.Day)
	}
	slot, ok := domain.ParseTimeSlot(in.Time)
	if !ok {
		return domain.Activity{}, fmt.Errorf("%w: time must be an hourly slot between 06:00 and 22:00", domain.ErrValidation)
	}
	return domain.Activity{ObjectiveID: in.ObjectiveID, Description: desc, Day: day, Time: slot}, nil
}
