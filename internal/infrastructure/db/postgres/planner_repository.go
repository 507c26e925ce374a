package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ahorrat/weekly-planner/internal/core/domain"
)

const activityColumns = `id, objetivo_id, descripcion, dia, hora, completada, created_at`

// Objectives and activities have no owner column; ownership is resolved
// through the parent role. param is the placeholder bound to the owner id.
func ownedObjectives(param string) string {
	return `SELECT o.id FROM objetivos o JOIN roles r ON r.id = o.rol_id WHERE r.usuario_id = ` + param
}

func ownedActivities(param string) string {
	return `SELECT a.id FROM actividades a
		JOIN objetivos o ON o.id = a.objetivo_id
		JOIN roles r ON r.id = o.rol_id
		WHERE r.usuario_id = ` + param
}

type PlannerRepository struct {
	db *sql.DB
}

func NewPlannerRepository(db *sql.DB) *PlannerRepository {
	return &PlannerRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRole(s scanner) (domain.Role, error) {
	var r domain.Role
	err := s.Scan(&r.ID, &r.OwnerID, &r.Name, &r.CreatedAt)
	r.CreatedAt = r.CreatedAt.UTC()
	return r, err
}

func scanObjective(s scanner) (domain.Objective, error) {
	var (
		o        domain.Objective
		priority int
	)
	err := s.Scan(&o.ID, &o.RoleID, &o.Description, &priority, &o.CreatedAt)
	o.Priority = domain.Priority(priority)
	o.CreatedAt = o.CreatedAt.UTC()
	return o, err
}

func scanActivity(s scanner) (domain.Activity, error) {
	var (
		a   domain.Activity
		day string
	)
	err := s.Scan(&a.ID, &a.ObjectiveID, &a.Description, &day, &a.Time, &a.Completed, &a.CreatedAt)
	a.Day = domain.Day(day)
	if parsed, ok := domain.ParseDay(day); ok {
		a.Day = parsed
	}
	if parsed, ok := domain.ParseTimeSlot(a.Time); ok {
		a.Time = parsed
	}
	a.CreatedAt = a.CreatedAt.UTC()
	return a, err
}

func queryAll[T any](ctx context.Context, db *sql.DB, scan func(scanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// notFound maps sql.ErrNoRows to the entity's sentinel.
func notFound(err, sentinel error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (r *PlannerRepository) ListRoles(ctx context.Context, ownerID string) ([]domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	out, err := queryAll(ctx, r.db, scanRole,
		`SELECT id, usuario_id, nombre, created_at FROM roles WHERE usuario_id = $1 ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return out, nil
}

func (r *PlannerRepository) ListObjectives(ctx context.Context, ownerID string) ([]domain.Objective, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	out, err := queryAll(ctx, r.db, scanObjective,
		`SELECT id, rol_id, descripcion, prioridad, created_at FROM objetivos
		 WHERE id IN (`+ownedObjectives("$1")+`) ORDER BY prioridad, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list objectives: %w", err)
	}
	return out, nil
}

func (r *PlannerRepository) ListActivities(ctx context.Context, ownerID string) ([]domain.Activity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	out, err := queryAll(ctx, r.db, scanActivity,
		`SELECT `+activityColumns+` FROM actividades WHERE id IN (`+ownedActivities("$1")+`) ORDER BY hora, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return out, nil
}

// ── Roles ─────────────────────────────────────────────────────────────────────

func (r *PlannerRepository) InsertRole(ctx context.Context, ownerID string, role domain.Role) (domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	out, err := scanRole(r.db.QueryRowContext(ctx,
		`INSERT INTO roles (usuario_id, nombre) VALUES ($1, $2) RETURNING id, usuario_id, nombre, created_at`,
		ownerID, role.Name))
	if err != nil {
		return domain.Role{}, fmt.Errorf("insert role: %w", err)
	}
	return out, nil
}

func (r *PlannerRepository) UpdateRole(ctx context.Context, ownerID string, role domain.Role) (domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	out, err := scanRole(r.db.QueryRowContext(ctx,
		`UPDATE roles SET nombre = $3 WHERE id = $1 AND usuario_id = $2 RETURNING id, usuario_id, nombre, created_at`,
		role.ID, ownerID, role.Name))
	if err != nil {
		return domain.Role{}, notFound(err, domain.ErrRoleNotFound, "update role")
	}
	return out, nil
}

// DeleteRole relies on ON DELETE CASCADE for objectives and activities.
func (r *PlannerRepository) DeleteRole(ctx context.Context, ownerID string, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.deleteOne(ctx, `DELETE FROM roles WHERE id = $1 AND usuario_id = $2`, id, ownerID, domain.ErrRoleNotFound, "delete role")
}

func (r *PlannerRepository) deleteOne(ctx context.Context, query string, id int64, ownerID string, sentinel error, op string) error {
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return sentinel
	}
	return nil
}

// ── Objectives ────────────────────────────────────────────────────────────────

func (r *PlannerRepository) InsertObjective(ctx context.Context, ownerID string, o domain.Objective) (domain.Objective, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	out, err := scanObjective(r.db.QueryRowContext(ctx,
		`INSERT INTO objetivos (rol_id, descripcion, prioridad)
		 SELECT id, $3, $4 FROM roles WHERE id = $1 AND usuario_id = $2
		 RETURNING id, rol_id, descripcion, prioridad, created_at`,
		o.RoleID, ownerID, o.Description, int(o.Priority)))
	if err != nil {
		return domain.Objective{}, notFound(err, domain.ErrRoleNotFound, "insert objective")
	}
	return out, nil
}

func (r *PlannerRepository) UpdateObjective(ctx context.Context, ownerID string, o domain.Objective) (domain.Objective, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	out, err := scanObjective(r.db.QueryRowContext(ctx,
		`UPDATE objetivos SET rol_id = $3, descripcion = $4, prioridad = $5
		 WHERE id = $1 AND id IN (`+ownedObjectives("$2")+`)
		 RETURNING id, rol_id, descripcion, prioridad, created_at`,
		o.ID, ownerID, o.RoleID, o.Description, int(o.Priority)))
	if err != nil {
		return domain.Objective{}, notFound(err, domain.ErrObjectiveNotFound, "update objective")
	}
	return out, nil
}

func (r *PlannerRepository) DeleteObjective(ctx context.Context, ownerID string, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.deleteOne(ctx, `DELETE FROM objetivos WHERE id = $1 AND id IN (`+ownedObjectives("$2")+`)`,
		id, ownerID, domain.ErrObjectiveNotFound, "delete objective")
}

// ── Activities ────────────────────────────────────────────────────────────────

func (r *PlannerRepository) InsertActivity(ctx context.Context, ownerID string, a domain.Activity) (domain.Activity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	out, err := scanActivity(r.db.QueryRowContext(ctx,
		`INSERT INTO actividades (objetivo_id, descripcion, dia, hora, completada)
		 SELECT id, $3, $4, $5, FALSE FROM objetivos WHERE id = $1 AND id IN (`+ownedObjectives("$2")+`)
		 RETURNING `+activityColumns,
		a.ObjectiveID, ownerID, a.Description, string(a.Day), a.Time))
	if err != nil {
		return domain.Activity{}, notFound(err, domain.ErrObjectiveNotFound, "insert activity")
	}
	return out, nil
}

func (r *PlannerRepository) UpdateActivity(ctx context.Context, ownerID string, a domain.Activity) (domain.Activity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	out, err := scanActivity(r.db.QueryRowContext(ctx,
		`UPDATE actividades SET objetivo_id = $3, descripcion = $4, dia = $5, hora = $6
		 WHERE id = $1 AND id IN (`+ownedActivities("$2")+`)
		 RETURNING `+activityColumns,
		a.ID, ownerID, a.ObjectiveID, a.Description, string(a.Day), a.Time))
	if err != nil {
		return domain.Activity{}, notFound(err, domain.ErrActivityNotFound, "update activity")
	}
	return out, nil
}

func (r *PlannerRepository) SetActivityCompleted(ctx context.Context, ownerID string, id int64, completed bool) (domain.Activity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	out, err := scanActivity(r.db.QueryRowContext(ctx,
		`UPDATE actividades SET completada = $3
		 WHERE id = $1 AND id IN (`+ownedActivities("$2")+`)
		 RETURNING `+activityColumns,
		id, ownerID, completed))
	if err != nil {
		return domain.Activity{}, notFound(err, domain.ErrActivityNotFound, "toggle activity")
	}
	return out, nil
}

func (r *PlannerRepository) DeleteActivity(ctx context.Context, ownerID string, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.deleteOne(ctx, `DELETE FROM actividades WHERE id = $1 AND id IN (`+ownedActivities("$2")+`)`,
		id, ownerID, domain.ErrActivityNotFound, "delete activity")
}
