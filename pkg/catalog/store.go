// Package catalog holds the loaded framework catalog behind a two-tier cache:
// an in-process snapshot with a freshness window, mirrored best-effort into a
// shared Redis tier for reuse across processes.
package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/bmadhq/platform/pkg/models"
	"github.com/redis/go-redis/v9"
)

const (
	redisCatalogKey  = "bmad:framework:catalog"
	redisLoadedAtKey = "bmad:framework:loaded_at"

	// DefaultFreshness is the in-process staleness window.
	DefaultFreshness = 5 * time.Minute

	// DefaultRedisTTL is the shared-tier expiry.
	DefaultRedisTTL = time.Hour
)

// Loader produces a fresh catalog snapshot.
type Loader interface {
	Load(ctx context.Context) (*models.Catalog, error)
}

// Store owns the in-memory catalog. Snapshots are replaced wholesale under
// the lock, never mutated field by field, so readers cannot observe a
// partially updated catalog. Concurrent cold gets may each trigger an
// independent load; loads are idempotent so this is only an inefficiency.
type Store struct {
	loader    Loader
	cache     redis.UniversalClient // nil disables the shared tier
	logger    *slog.Logger
	freshness time.Duration
	redisTTL  time.Duration
	now       func() time.Time

	mu           sync.RWMutex
	catalog      *models.Catalog
	lastLoadedAt time.Time
}

// NewStore creates a catalog store. The Redis client may be nil, in which
// case only the in-process tier is used.
func NewStore(logger *slog.Logger, loader Loader, cache redis.UniversalClient) *Store {
	return &Store{
		loader:    loader,
		cache:     cache,
		logger:    logger.With("module", "catalog"),
		freshness: DefaultFreshness,
		redisTTL:  DefaultRedisTTL,
		now:       time.Now,
	}
}

// Get returns the current catalog, consulting the in-process tier, then the
// shared tier, then the loader. Shared-tier errors are logged and treated as
// a miss. If a fresh load fails but a stale snapshot exists, the stale
// snapshot is served.
func (s *Store) Get(ctx context.Context) (*models.Catalog, error) {
	s.mu.RLock()
	catalog, loadedAt := s.catalog, s.lastLoadedAt
	s.mu.RUnlock()

	if catalog != nil && s.now().Sub(loadedAt) < s.freshness {
		return catalog, nil
	}

	if cached := s.fromSharedTier(ctx); cached != nil {
		s.install(cached)

		return cached, nil
	}

	fresh, err := s.Refresh(ctx)
	if err != nil {
		if catalog != nil {
			s.logger.WarnContext(ctx, "Catalog reload failed, serving stale snapshot", "error", err)

			return catalog, nil
		}

		return nil, err
	}

	return fresh, nil
}

// Refresh forces a fresh load and repopulates both cache tiers.
func (s *Store) Refresh(ctx context.Context) (*models.Catalog, error) {
	catalog, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	s.install(catalog)
	s.toSharedTier(ctx, catalog)

	return catalog, nil
}

// Invalidate clears the in-process snapshot and the shared-tier keys.
func (s *Store) Invalidate(ctx context.Context) {
	s.mu.Lock()
	s.catalog = nil
	s.lastLoadedAt = time.Time{}
	s.mu.Unlock()

	if s.cache == nil {
		return
	}

	if err := s.cache.Del(ctx, redisCatalogKey, redisLoadedAtKey).Err(); err != nil {
		s.logger.WarnContext(ctx, "Failed to clear shared catalog cache", "error", err)
	}
}

// LastLoadedAt returns when the in-process snapshot was installed, or the
// zero time when no snapshot is held.
func (s *Store) LastLoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastLoadedAt
}

// Health describes the catalog load status for the health endpoint.
type Health struct {
	Status       string     `json:"status"`
	Agents       int        `json:"agents"`
	Templates    int        `json:"templates"`
	Workflows    int        `json:"workflows"`
	LastLoadedAt *time.Time `json:"last_loaded_at,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// HealthCheck reports whether a catalog can currently be served.
func (s *Store) HealthCheck(ctx context.Context) Health {
	catalog, err := s.Get(ctx)
	if err != nil {
		health := Health{Status: "unhealthy", Error: err.Error()}
		if loadedAt := s.LastLoadedAt(); !loadedAt.IsZero() {
			health.LastLoadedAt = &loadedAt
		}

		return health
	}

	loadedAt := s.LastLoadedAt()

	return Health{
		Status:       "healthy",
		Agents:       len(catalog.Agents),
		Templates:    len(catalog.Templates),
		Workflows:    len(catalog.Workflows),
		LastLoadedAt: &loadedAt,
	}
}

func (s *Store) install(catalog *models.Catalog) {
	s.mu.Lock()
	s.catalog = catalog
	s.lastLoadedAt = s.now()
	s.mu.Unlock()
}

func (s *Store) fromSharedTier(ctx context.Context) *models.Catalog {
	if s.cache == nil {
		return nil
	}

	raw, err := s.cache.Get(ctx, redisCatalogKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.WarnContext(ctx, "Shared catalog cache read failed", "error", err)
		}

		return nil
	}

	var catalog models.Catalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		s.logger.WarnContext(ctx, "Shared catalog cache entry not decodable", "error", err)

		return nil
	}

	return &catalog
}

func (s *Store) toSharedTier(ctx context.Context, catalog *models.Catalog) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(catalog)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to encode catalog for shared cache", "error", err)

		return
	}

	if err := s.cache.Set(ctx, redisCatalogKey, raw, s.redisTTL).Err(); err != nil {
		s.logger.WarnContext(ctx, "Failed to write catalog to shared cache", "error", err)

		return
	}

	loadedAt := catalog.LoadedAt.Format(time.RFC3339)
	if err := s.cache.Set(ctx, redisLoadedAtKey, loadedAt, s.redisTTL).Err(); err != nil {
		s.logger.WarnContext(ctx, "Failed to write catalog timestamp to shared cache", "error", err)
	}
}
