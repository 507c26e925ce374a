package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ahorrat/weekly-planner/internal/core/ports"
	"github.com/ahorrat/weekly-planner/internal/infrastructure/db/mongo"
	"github.com/ahorrat/weekly-planner/internal/infrastructure/db/postgres"
	"github.com/ahorrat/weekly-planner/internal/pkg/config"
)

// remote bundles the repositories of the selected REMOTE_DRIVER.
type remote struct {
	name    string
	planner ports.PlannerRepository
	users   ports.AuthRepository
	pinger  ports.Pinger
	// prepare creates indexes or tables; it is idempotent.
	prepare func(ctx context.Context) error
	close   func(ctx context.Context) error
}

func openRemote(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*remote, error) {
	switch cfg.RemoteDriver {
	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN})
		if err != nil {
			return nil, err
		}
		log.Info().Msg("connected to postgres")
		return &remote{
			name:    "postgres",
			planner: postgres.NewPlannerRepository(db),
			users:   postgres.NewAuthRepository(db),
			pinger:  postgres.NewPinger(db),
			prepare: func(ctx context.Context) error { return postgres.Migrate(ctx, db) },
			close:   func(context.Context) error { return db.Close() },
		}, nil

	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
		plannerRepo := mongo.NewPlannerRepository(db)
		authRepo := mongo.NewAuthRepository(db)
		return &remote{
			name:    "mongodb",
			planner: plannerRepo,
			users:   authRepo,
			pinger:  mongo.NewPinger(db),
			prepare: func(ctx context.Context) error {
				if err := authRepo.EnsureIndexes(ctx); err != nil {
					return err
				}
				return plannerRepo.EnsureIndexes(ctx)
			},
			close: client.Disconnect,
		}, nil
	}
	return nil, fmt.Errorf("unknown remote driver %q", cfg.RemoteDriver)
}
