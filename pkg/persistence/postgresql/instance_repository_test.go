package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/bmadhq/platform/pkg/models"
	"github.com/bmadhq/platform/pkg/persistence"
	"github.com/bmadhq/platform/pkg/persistence/postgresql"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var postgresContainer *postgres.PostgresContainer

func dropDB(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"telemetry_events", "workflow_instances", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	require.NoError(t, db.Close())
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	t.Cleanup(cancel)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("platform_test"),
			postgres.WithUsername("platform"),
			postgres.WithPassword("platform"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDB(ctx, t, databaseURL)

	p, err := postgresql.NewPersistence(ctx, slog.Default(), databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() { _ = p.Close(ctx) })

	return p, ctx
}

func newInstance(owner string) *models.WorkflowInstance {
	now := time.Now().UTC().Truncate(time.Microsecond)

	return &models.WorkflowInstance{
		ID:           uuid.New().String(),
		OwnerID:      owner,
		ProjectName:  "Demo Project",
		Type:         models.WorkflowBMadMethod,
		CurrentPhase: "analysis",
		PhaseProgress: map[string]models.PhaseCompletion{
			"analysis": {CompletedAt: now, CompletionCriteria: []string{"brief approved"}},
		},
		ActiveAgents: []string{"analyst", "ux-designer"},
		Context:      map[string]any{"team_size": float64(8)},
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestInstanceRepository_CreateAndGet(t *testing.T) {
	p, ctx := setupTestDB(t)
	repo := p.Instances()

	instance := newInstance("user-1")
	require.NoError(t, repo.Create(ctx, instance))

	stored, err := repo.GetByID(ctx, instance.ID)
	require.NoError(t, err)

	assert.Equal(t, instance.ID, stored.ID)
	assert.Equal(t, instance.OwnerID, stored.OwnerID)
	assert.Equal(t, models.WorkflowBMadMethod, stored.Type)
	assert.Equal(t, "analysis", stored.CurrentPhase)
	assert.Equal(t, instance.ActiveAgents, stored.ActiveAgents)
	assert.Equal(t, instance.Context, stored.Context)
	assert.Equal(t, int64(1), stored.Version)

	completion, ok := stored.PhaseProgress["analysis"]
	require.True(t, ok)
	assert.Equal(t, []string{"brief approved"}, completion.CompletionCriteria)
}

func TestInstanceRepository_GetByID_NotFound(t *testing.T) {
	p, ctx := setupTestDB(t)

	_, err := p.Instances().GetByID(ctx, uuid.New().String())
	require.Error(t, err)
	assert.True(t, persistence.IsInstanceNotFound(err))
}

func TestInstanceRepository_Update_VersionGuard(t *testing.T) {
	p, ctx := setupTestDB(t)
	repo := p.Instances()

	instance := newInstance("user-1")
	require.NoError(t, repo.Create(ctx, instance))

	first, err := repo.GetByID(ctx, instance.ID)
	require.NoError(t, err)

	second, err := repo.GetByID(ctx, instance.ID)
	require.NoError(t, err)

	first.CurrentPhase = "planning"
	first.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	// The concurrent writer still holds version 1 and must be rejected.
	second.CurrentPhase = "planning"
	second.UpdatedAt = time.Now().UTC()
	err = repo.Update(ctx, second)
	require.Error(t, err)
	assert.True(t, persistence.IsStaleInstance(err))

	stored, err := repo.GetByID(ctx, instance.ID)
	require.NoError(t, err)
	assert.Equal(t, "planning", stored.CurrentPhase)
	assert.Equal(t, int64(2), stored.Version)
}

func TestInstanceRepository_Update_Missing(t *testing.T) {
	p, ctx := setupTestDB(t)

	err := p.Instances().Update(ctx, newInstance("user-1"))
	require.Error(t, err)
	assert.True(t, persistence.IsInstanceNotFound(err))
}

func TestInstanceRepository_ListByOwner(t *testing.T) {
	p, ctx := setupTestDB(t)
	repo := p.Instances()

	older := newInstance("user-1")
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, older))

	newer := newInstance("user-1")
	require.NoError(t, repo.Create(ctx, newer))
	require.NoError(t, repo.Create(ctx, newInstance("user-2")))

	instances, err := repo.ListByOwner(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, instances, 2)
	assert.Equal(t, newer.ID, instances[0].ID)
	assert.Equal(t, older.ID, instances[1].ID)
}

func TestTelemetryRepository_Record(t *testing.T) {
	p, ctx := setupTestDB(t)

	err := p.Telemetry().Record(ctx, &models.TelemetryEvent{
		ID:        uuid.New().String(),
		EventType: "start_workflow",
		UserID:    "user-1",
		Data:      map[string]any{"workflow_type": "bmad_method"},
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
}

func TestPersistence_HealthCheck(t *testing.T) {
	p, ctx := setupTestDB(t)

	require.NoError(t, p.HealthCheck(ctx))
}
