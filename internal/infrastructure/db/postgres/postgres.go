// Package postgres stores planner data in PostgreSQL through the pgx
// database/sql driver. Table and column names are shared with the mongo
// collections (roles, objetivos, actividades).
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const (
	driverName     = "pgx"
	defaultTimeout = 10 * time.Second
)

var sqlOpen = sql.Open

// Config captures the settings for a PostgreSQL connection.
type Config struct {
	DSN     string
	Timeout time.Duration
}

// Connect opens the pool and verifies it with a ping.
func Connect(ctx context.Context, cfg Config) (*sql.DB, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	db, err := sqlOpen(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// schema creates the auth and planner tables. Child rows go with their parent.
const schema = `
CREATE TABLE IF NOT EXISTS usuarios (
	id            BIGSERIAL PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	is_guest      BOOLEAN NOT NULL DEFAULT FALSE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS roles (
	id         BIGSERIAL PRIMARY KEY,
	usuario_id TEXT NOT NULL,
	nombre     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS objetivos (
	id          BIGSERIAL PRIMARY KEY,
	rol_id      BIGINT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
	descripcion TEXT NOT NULL,
	prioridad   SMALLINT NOT NULL CHECK (prioridad BETWEEN 1 AND 3),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS actividades (
	id          BIGSERIAL PRIMARY KEY,
	objetivo_id BIGINT NOT NULL REFERENCES objetivos(id) ON DELETE CASCADE,
	descripcion TEXT NOT NULL,
	dia         TEXT NOT NULL,
	hora        TEXT NOT NULL,
	completada  BOOLEAN NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS roles_usuario_idx ON roles (usuario_id, created_at);
CREATE INDEX IF NOT EXISTS objetivos_rol_idx ON objetivos (rol_id);
CREATE INDEX IF NOT EXISTS actividades_objetivo_idx ON actividades (objetivo_id);
`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, db execer) error {
	for _, stmt := range splitStatements(schema) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute ddl: %w", err)
		}
	}
	return nil
}

func splitStatements(ddl string) []string {
	var out []string
	for _, stmt := range strings.Split(ddl, ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Pinger adapts a pool to the readiness probe.
type Pinger struct {
	db *sql.DB
}

func NewPinger(db *sql.DB) Pinger {
	return Pinger{db: db}
}

func (p Pinger) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}
