package catalog

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/bmadhq/platform/pkg/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLoader struct {
	loads int
	err   error
}

func (l *countingLoader) Load(context.Context) (*models.Catalog, error) {
	l.loads++

	if l.err != nil {
		return nil, l.err
	}

	return &models.Catalog{
		Agents:   []*models.AgentDefinition{{ID: "pm"}},
		LoadedAt: time.Now().UTC(),
	}, nil
}

func newTestStore(loader Loader) (*Store, *time.Time) {
	store := NewStore(slog.Default(), loader, nil)

	current := time.Now().UTC()
	store.now = func() time.Time { return current }

	return store, &current
}

func TestStore_Get_LoadsOnce(t *testing.T) {
	loader := &countingLoader{}
	store, _ := newTestStore(loader)
	ctx := context.Background()

	first, err := store.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := store.Get(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, loader.loads)
}

func TestStore_Get_ReloadsAfterFreshnessWindow(t *testing.T) {
	loader := &countingLoader{}
	store, clock := newTestStore(loader)
	ctx := context.Background()

	_, err := store.Get(ctx)
	require.NoError(t, err)

	// Just inside the window: still the cached snapshot.
	*clock = clock.Add(DefaultFreshness - time.Second)
	_, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, loader.loads)

	// Past the window: a fresh load.
	*clock = clock.Add(2 * time.Second)
	_, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, loader.loads)
}

func TestStore_Get_ServesStaleOnLoadFailure(t *testing.T) {
	loader := &countingLoader{}
	store, clock := newTestStore(loader)
	ctx := context.Background()

	first, err := store.Get(ctx)
	require.NoError(t, err)

	loader.err = errors.New("framework directory unavailable")
	*clock = clock.Add(DefaultFreshness + time.Second)

	stale, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, first, stale)
}

func TestStore_Get_FailsWithoutAnySnapshot(t *testing.T) {
	loader := &countingLoader{err: errors.New("boom")}
	store, _ := newTestStore(loader)

	_, err := store.Get(context.Background())
	require.Error(t, err)
}

func TestStore_Refresh_BypassesFreshSnapshot(t *testing.T) {
	loader := &countingLoader{}
	store, _ := newTestStore(loader)
	ctx := context.Background()

	_, err := store.Get(ctx)
	require.NoError(t, err)

	refreshed, err := store.Refresh(ctx)
	require.NoError(t, err)
	require.NotNil(t, refreshed)
	assert.Equal(t, 2, loader.loads)

	// The refreshed snapshot becomes the served one.
	served, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, refreshed, served)
}

func TestStore_Invalidate_ForcesReload(t *testing.T) {
	loader := &countingLoader{}
	store, _ := newTestStore(loader)
	ctx := context.Background()

	_, err := store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, store.LastLoadedAt().IsZero())

	store.Invalidate(ctx)
	assert.True(t, store.LastLoadedAt().IsZero())

	_, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, loader.loads)
}

func TestStore_RedisUnavailableStillServes(t *testing.T) {
	unreachable := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = unreachable.Close() })

	loader := &countingLoader{}
	store := NewStore(slog.Default(), loader, unreachable)

	current := time.Now().UTC()
	store.now = func() time.Time { return current }

	ctx := context.Background()

	// Cold get: the shared-tier read fails and is treated as a miss, the
	// write back fails and is swallowed.
	cat, err := store.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.Equal(t, 1, loader.loads)

	refreshed, err := store.Refresh(ctx)
	require.NoError(t, err)
	require.NotNil(t, refreshed)
	assert.Equal(t, 2, loader.loads)

	// Past the freshness window the shared tier misses again and the
	// loader takes over.
	current = current.Add(DefaultFreshness + time.Second)
	served, err := store.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, served)
	assert.Equal(t, 3, loader.loads)

	// Clearing the shared tier is best-effort too.
	store.Invalidate(ctx)
	assert.True(t, store.LastLoadedAt().IsZero())
}

func TestStore_HealthCheck(t *testing.T) {
	loader := &countingLoader{}
	store, _ := newTestStore(loader)

	health := store.HealthCheck(context.Background())
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, 1, health.Agents)
	require.NotNil(t, health.LastLoadedAt)

	broken, _ := newTestStore(&countingLoader{err: errors.New("boom")})
	health = broken.HealthCheck(context.Background())
	assert.Equal(t, "unhealthy", health.Status)
	assert.NotEmpty(t, health.Error)
}
