package ports

import (
	"context"
	"io"

	"github.com/ahorrat/weekly-planner/internal/core/domain"
)

// Exporter renders a weekly document to a fully buffered file body.
type Exporter interface {
	Export(ctx context.Context, doc domain.Document) ([]byte, error)
}

// ArtifactStore archives finished exports and returns a download URL.
type ArtifactStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// Pinger is a dependency the readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}
