package mongo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/ahorrat/weekly-planner/internal/core/domain"
)

func deleted(n int) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n})
}

func objectivesCursor(mt *mtest.T, docs ...bson.D) bson.D {
	return mtest.CreateCursorResponse(0, mt.DB.Name()+"."+collectionObjectives, mtest.FirstBatch, docs...)
}

func TestPlannerRepository_DeleteRole(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("children go first", func(mt *mtest.T) {
		repo := NewPlannerRepository(mt.DB)
		mt.AddMockResponses(
			objectivesCursor(mt, bson.D{{Key: "_id", Value: int64(2)}, {Key: "rol_id", Value: int64(1)}, {Key: "usuario_id", Value: "u1"}}),
			deleted(3),
			deleted(1),
			deleted(1),
		)
		if err := repo.DeleteRole(context.Background(), "u1", 1); err != nil {
			t.Fatalf("DeleteRole: %v", err)
		}
	})

	mt.Run("failed child delete keeps the role", func(mt *mtest.T) {
		repo := NewPlannerRepository(mt.DB)
		mt.AddMockResponses(
			objectivesCursor(mt, bson.D{{Key: "_id", Value: int64(2)}, {Key: "rol_id", Value: int64(1)}, {Key: "usuario_id", Value: "u1"}}),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "boom"}),
		)
		err := repo.DeleteRole(context.Background(), "u1", 1)
		if err == nil || domain.IsNotFound(err) {
			t.Fatalf("expected a store error, got %v", err)
		}
		if !strings.Contains(err.Error(), "activities") {
			t.Fatalf("expected the activity delete to fail first, got %v", err)
		}
	})

	mt.Run("absent role", func(mt *mtest.T) {
		repo := NewPlannerRepository(mt.DB)
		mt.AddMockResponses(objectivesCursor(mt), deleted(0), deleted(0))
		if err := repo.DeleteRole(context.Background(), "u1", 9); !errors.Is(err, domain.ErrRoleNotFound) {
			t.Fatalf("expected ErrRoleNotFound, got %v", err)
		}
	})
}

func TestPlannerRepository_DeleteObjective(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("failed activity delete keeps the objective", func(mt *mtest.T) {
		repo := NewPlannerRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "boom"}))
		err := repo.DeleteObjective(context.Background(), "u1", 2)
		if err == nil || !strings.Contains(err.Error(), "activities") {
			t.Fatalf("expected the activity delete to fail first, got %v", err)
		}
	})

	mt.Run("absent objective", func(mt *mtest.T) {
		repo := NewPlannerRepository(mt.DB)
		mt.AddMockResponses(deleted(0), deleted(0))
		if err := repo.DeleteObjective(context.Background(), "u1", 2); !errors.Is(err, domain.ErrObjectiveNotFound) {
			t.Fatalf("expected ErrObjectiveNotFound, got %v", err)
		}
	})
}

func TestActivityDoc_CanonicalisesLegacyValues(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600))

	got := activityDoc{ID: 1, ObjectiveID: 2, Description: "Run", Day: "Sábado", Time: "7:00", CreatedAt: created}.toDomain()
	if got.Day != domain.Saturday || got.Time != "07:00" {
		t.Fatalf("expected Saturday 07:00, got %s %s", got.Day, got.Time)
	}
	if got.CreatedAt.Location() != time.UTC {
		t.Fatalf("created_at must be UTC")
	}

	got = activityDoc{Day: "Monday", Time: "noon"}.toDomain()
	if got.Time != "noon" {
		t.Fatalf("unparseable time must be kept as stored, got %q", got.Time)
	}
}
