package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bmadhq/platform/pkg/persistence"
	"github.com/bmadhq/platform/pkg/persistence/file"
	"github.com/bmadhq/platform/pkg/persistence/postgresql"
)

// NewPersistence picks the persistence backend from the database URL scheme.
// postgres:// and postgresql:// select PostgreSQL, anything else falls back
// to file storage.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	default:
		return file.NewPersistence(databaseURL), nil
	}
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return provider
}
