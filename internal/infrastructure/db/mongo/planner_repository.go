package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ahorrat/weekly-planner/internal/core/domain"
)

// Collection and field names are the Spanish ones existing data was written with.
const (
	collectionRoles      = "roles"
	collectionObjectives = "objetivos"
	collectionActivities = "actividades"
	collectionCounters   = "counters"
)

// PlannerRepository stores roles, objectives and activities. Ids are int64
// sequences kept in the counters collection so both backends expose the same
// id space.
type PlannerRepository struct {
	roles      *mongo.Collection
	objectives *mongo.Collection
	activities *mongo.Collection
	counters   *mongo.Collection
	now        func() time.Time
}

func NewPlannerRepository(db *mongo.Database) *PlannerRepository {
	return &PlannerRepository{
		roles:      db.Collection(collectionRoles),
		objectives: db.Collection(collectionObjectives),
		activities: db.Collection(collectionActivities),
		counters:   db.Collection(collectionCounters),
		now:        time.Now,
	}
}

type roleDoc struct {
	ID        int64     `bson:"_id"`
	OwnerID   string    `bson:"usuario_id"`
	Name      string    `bson:"nombre"`
	CreatedAt time.Time `bson:"created_at"`
}

type objectiveDoc struct {
	ID          int64     `bson:"_id"`
	OwnerID     string    `bson:"usuario_id"`
	RoleID      int64     `bson:"rol_id"`
	Description string    `bson:"descripcion"`
	Priority    int       `bson:"prioridad"`
	CreatedAt   time.Time `bson:"created_at"`
}

type activityDoc struct {
	ID          int64     `bson:"_id"`
	OwnerID     string    `bson:"usuario_id"`
	ObjectiveID int64     `bson:"objetivo_id"`
	Description string    `bson:"descripcion"`
	Day         string    `bson:"dia"`
	Time        string    `bson:"hora"`
	Completed   bool      `bson:"completada"`
	CreatedAt   time.Time `bson:"created_at"`
}

func (d roleDoc) toDomain() domain.Role {
	return domain.Role{ID: d.ID, OwnerID: d.OwnerID, Name: d.Name, CreatedAt: d.CreatedAt.UTC()}
}

func (d objectiveDoc) toDomain() domain.Objective {
	return domain.Objective{
		ID:          d.ID,
		RoleID:      d.RoleID,
		Description: d.Description,
		Priority:    domain.Priority(d.Priority),
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

func (d activityDoc) toDomain() domain.Activity {
	day := domain.Day(d.Day)
	if parsed, ok := domain.ParseDay(d.Day); ok {
		day = parsed
	}
	slot := d.Time
	if parsed, ok := domain.ParseTimeSlot(d.Time); ok {
		slot = parsed
	}
	return domain.Activity{
		ID:          d.ID,
		ObjectiveID: d.ObjectiveID,
		Description: d.Description,
		Day:         day,
		Time:        slot,
		Completed:   d.Completed,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

// createdAt truncates to the millisecond precision BSON dates keep, so the
// value handed back matches what a later read returns.
func (r *PlannerRepository) createdAt() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

func (r *PlannerRepository) nextID(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return counter.Seq, nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (r *PlannerRepository) ListRoles(ctx context.Context, ownerID string) ([]domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var docs []roleDoc
	if err := findAll(ctx, r.roles, ownerID, bson.D{{Key: "created_at", Value: 1}}, &docs); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	out := make([]domain.Role, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *PlannerRepository) ListObjectives(ctx context.Context, ownerID string) ([]domain.Objective, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var docs []objectiveDoc
	if err := findAll(ctx, r.objectives, ownerID, bson.D{{Key: "prioridad", Value: 1}, {Key: "_id", Value: 1}}, &docs); err != nil {
		return nil, fmt.Errorf("list objectives: %w", err)
	}
	out := make([]domain.Objective, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *PlannerRepository) ListActivities(ctx context.Context, ownerID string) ([]domain.Activity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var docs []activityDoc
	if err := findAll(ctx, r.activities, ownerID, bson.D{{Key: "hora", Value: 1}, {Key: "_id", Value: 1}}, &docs); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	out := make([]domain.Activity, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func findAll(ctx context.Context, coll *mongo.Collection, ownerID string, sort bson.D, out any) error {
	cur, err := coll.Find(ctx, bson.M{"usuario_id": ownerID}, options.Find().SetSort(sort))
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

// ── Roles ─────────────────────────────────────────────────────────────────────

func (r *PlannerRepository) InsertRole(ctx context.Context, ownerID string, role domain.Role) (domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.nextID(ctx, collectionRoles)
	if err != nil {
		return domain.Role{}, err
	}
	doc := roleDoc{ID: id, OwnerID: ownerID, Name: role.Name, CreatedAt: r.createdAt()}
	if _, err := r.roles.InsertOne(ctx, doc); err != nil {
		return domain.Role{}, fmt.Errorf("insert role: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *PlannerRepository) UpdateRole(ctx context.Context, ownerID string, role domain.Role) (domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc roleDoc
	err := r.roles.FindOneAndUpdate(ctx,
		bson.M{"_id": role.ID, "usuario_id": ownerID},
		bson.M{"$set": bson.M{"nombre": role.Name}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Role{}, domain.ErrRoleNotFound
		}
		return domain.Role{}, fmt.Errorf("update role: %w", err)
	}
	return doc.toDomain(), nil
}

// DeleteRole removes the role's activities, then its objectives, then the
// role itself. A failure part way leaves the role in place, so the call can
// be retried without orphaning children.
func (r *PlannerRepository) DeleteRole(ctx context.Context, ownerID string, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var children []objectiveDoc
	if err := findAllWhere(ctx, r.objectives, bson.M{"rol_id": id, "usuario_id": ownerID}, &children); err != nil {
		return fmt.Errorf("delete role: find objectives: %w", err)
	}
	ids := make([]int64, 0, len(children))
	for _, o := range children {
		ids = append(ids, o.ID)
	}
	if len(ids) > 0 {
		if _, err := r.activities.DeleteMany(ctx, bson.M{"objetivo_id": bson.M{"$in": ids}, "usuario_id": ownerID}); err != nil {
			return fmt.Errorf("delete role: activities: %w", err)
		}
	}
	if _, err := r.objectives.DeleteMany(ctx, bson.M{"rol_id": id, "usuario_id": ownerID}); err != nil {
		return fmt.Errorf("delete role: objectives: %w", err)
	}

	res, err := r.roles.DeleteOne(ctx, bson.M{"_id": id, "usuario_id": ownerID})
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrRoleNotFound
	}
	return nil
}

func findAllWhere(ctx context.Context, coll *mongo.Collection, filter bson.M, out any) error {
	cur, err := coll.Find(ctx, filter)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

// ── Objectives ────────────────────────────────────────────────────────────────

func (r *PlannerRepository) InsertObjective(ctx context.Context, ownerID string, o domain.Objective) (domain.Objective, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.nextID(ctx, collectionObjectives)
	if err != nil {
		return domain.Objective{}, err
	}
	doc := objectiveDoc{
		ID:          id,
		OwnerID:     ownerID,
		RoleID:      o.RoleID,
		Description: o.Description,
		Priority:    int(o.Priority),
		CreatedAt:   r.createdAt(),
	}
	if _, err := r.objectives.InsertOne(ctx, doc); err != nil {
		return domain.Objective{}, fmt.Errorf("insert objective: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *PlannerRepository) UpdateObjective(ctx context.Context, ownerID string, o domain.Objective) (domain.Objective, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc objectiveDoc
	err := r.objectives.FindOneAndUpdate(ctx,
		bson.M{"_id": o.ID, "usuario_id": ownerID},
		bson.M{"$set": bson.M{"rol_id": o.RoleID, "descripcion": o.Description, "prioridad": int(o.Priority)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Objective{}, domain.ErrObjectiveNotFound
		}
		return domain.Objective{}, fmt.Errorf("update objective: %w", err)
	}
	return doc.toDomain(), nil
}

// DeleteObjective removes the activities first so a failed call leaves no orphans.
func (r *PlannerRepository) DeleteObjective(ctx context.Context, ownerID string, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.activities.DeleteMany(ctx, bson.M{"objetivo_id": id, "usuario_id": ownerID}); err != nil {
		return fmt.Errorf("delete objective: activities: %w", err)
	}
	res, err := r.objectives.DeleteOne(ctx, bson.M{"_id": id, "usuario_id": ownerID})
	if err != nil {
		return fmt.Errorf("delete objective: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrObjectiveNotFound
	}
	return nil
}

// ── Activities ────────────────────────────────────────────────────────────────

func (r *PlannerRepository) InsertActivity(ctx context.Context, ownerID string, a domain.Activity) (domain.Activity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.nextID(ctx, collectionActivities)
	if err != nil {
		return domain.Activity{}, err
	}
	doc := activityDoc{
		ID:          id,
		OwnerID:     ownerID,
		ObjectiveID: a.ObjectiveID,
		Description: a.Description,
		Day:         string(a.Day),
		Time:        a.Time,
		CreatedAt:   r.createdAt(),
	}
	if _, err := r.activities.InsertOne(ctx, doc); err != nil {
		return domain.Activity{}, fmt.Errorf("insert activity: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *PlannerRepository) UpdateActivity(ctx context.Context, ownerID string, a domain.Activity) (domain.Activity, error) {
	return r.updateActivity(ctx, ownerID, a.ID, bson.M{
		"objetivo_id": a.ObjectiveID,
		"descripcion": a.Description,
		"dia":         string(a.Day),
		"hora":        a.Time,
	})
}

func (r *PlannerRepository) SetActivityCompleted(ctx context.Context, ownerID string, id int64, completed bool) (domain.Activity, error) {
	return r.updateActivity(ctx, ownerID, id, bson.M{"completada": completed})
}

func (r *PlannerRepository) updateActivity(ctx context.Context, ownerID string, id int64, set bson.M) (domain.Activity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc activityDoc
	err := r.activities.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "usuario_id": ownerID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Activity{}, domain.ErrActivityNotFound
		}
		return domain.Activity{}, fmt.Errorf("update activity: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *PlannerRepository) DeleteActivity(ctx context.Context, ownerID string, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.activities.DeleteOne(ctx, bson.M{"_id": id, "usuario_id": ownerID})
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrActivityNotFound
	}
	return nil
}

// EnsureIndexes creates the owner and parent indexes used by every query.
func (r *PlannerRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	plan := map[*mongo.Collection][]mongo.IndexModel{
		r.roles: {
			{Keys: bson.D{{Key: "usuario_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		r.objectives: {
			{Keys: bson.D{{Key: "usuario_id", Value: 1}, {Key: "prioridad", Value: 1}}},
			{Keys: bson.D{{Key: "rol_id", Value: 1}}},
		},
		r.activities: {
			{Keys: bson.D{{Key: "usuario_id", Value: 1}, {Key: "hora", Value: 1}}},
			{Keys: bson.D{{Key: "objetivo_id", Value: 1}}},
		},
	}
	for coll, indexes := range plan {
		if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}
