package file

import (
	"context"
	"testing"
	"time"

	"github.com/bmadhq/platform/pkg/models"
	"github.com/bmadhq/platform/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInstance(id, owner string) *models.WorkflowInstance {
	now := time.Now().UTC().Truncate(time.Second)

	return &models.WorkflowInstance{
		ID:            id,
		OwnerID:       owner,
		ProjectName:   "Demo Project",
		Type:          models.WorkflowQuickFlow,
		CurrentPhase:  "analysis",
		PhaseProgress: map[string]models.PhaseCompletion{},
		ActiveAgents:  []string{"analyst"},
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestInstanceRepository_CreateAndGet(t *testing.T) {
	repo := NewInstanceRepository(t.TempDir())
	ctx := context.Background()

	instance := testInstance("inst-1", "user-1")
	require.NoError(t, repo.Create(ctx, instance))

	stored, err := repo.GetByID(ctx, "inst-1")
	require.NoError(t, err)
	assert.Equal(t, instance.ID, stored.ID)
	assert.Equal(t, instance.OwnerID, stored.OwnerID)
	assert.Equal(t, "analysis", stored.CurrentPhase)
	assert.Equal(t, int64(1), stored.Version)
}

func TestInstanceRepository_Create_Duplicate(t *testing.T) {
	repo := NewInstanceRepository(t.TempDir())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testInstance("inst-1", "user-1")))

	err := repo.Create(ctx, testInstance("inst-1", "user-1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, persistence.ErrInstanceAlreadyExists)
}

func TestInstanceRepository_GetByID_NotFound(t *testing.T) {
	repo := NewInstanceRepository(t.TempDir())

	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, persistence.IsInstanceNotFound(err))
}

func TestInstanceRepository_Update_IncrementsVersion(t *testing.T) {
	repo := NewInstanceRepository(t.TempDir())
	ctx := context.Background()

	instance := testInstance("inst-1", "user-1")
	require.NoError(t, repo.Create(ctx, instance))

	instance.CurrentPhase = "planning"
	require.NoError(t, repo.Update(ctx, instance))
	assert.Equal(t, int64(2), instance.Version)

	stored, err := repo.GetByID(ctx, "inst-1")
	require.NoError(t, err)
	assert.Equal(t, "planning", stored.CurrentPhase)
	assert.Equal(t, int64(2), stored.Version)
}

func TestInstanceRepository_Update_StaleVersion(t *testing.T) {
	repo := NewInstanceRepository(t.TempDir())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testInstance("inst-1", "user-1")))

	// Two callers read at version 1; the second writer must lose.
	first, err := repo.GetByID(ctx, "inst-1")
	require.NoError(t, err)

	second, err := repo.GetByID(ctx, "inst-1")
	require.NoError(t, err)

	first.CurrentPhase = "planning"
	require.NoError(t, repo.Update(ctx, first))

	second.CurrentPhase = "planning"
	err = repo.Update(ctx, second)
	require.Error(t, err)
	assert.True(t, persistence.IsStaleInstance(err))

	stored, err := repo.GetByID(ctx, "inst-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Version)
}

func TestInstanceRepository_Update_Missing(t *testing.T) {
	repo := NewInstanceRepository(t.TempDir())

	err := repo.Update(context.Background(), testInstance("ghost", "user-1"))
	require.Error(t, err)
	assert.True(t, persistence.IsInstanceNotFound(err))
}

func TestInstanceRepository_ListByOwner(t *testing.T) {
	repo := NewInstanceRepository(t.TempDir())
	ctx := context.Background()

	older := testInstance("inst-old", "user-1")
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, testInstance("inst-new", "user-1")))
	require.NoError(t, repo.Create(ctx, testInstance("inst-other", "user-2")))

	instances, err := repo.ListByOwner(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, instances, 2)

	// Newest first.
	assert.Equal(t, "inst-new", instances[0].ID)
	assert.Equal(t, "inst-old", instances[1].ID)
}

func TestInstanceRepository_ListByOwner_EmptyDirectory(t *testing.T) {
	repo := NewInstanceRepository(t.TempDir())

	instances, err := repo.ListByOwner(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, instances)
}

func TestPersistence_TelemetryRoundTrip(t *testing.T) {
	p := NewPersistence(t.TempDir())
	ctx := context.Background()

	err := p.Telemetry().Record(ctx, &models.TelemetryEvent{
		ID:        "evt-1",
		EventType: "start_workflow",
		UserID:    "user-1",
		Data:      map[string]any{"workflow_type": "quick_flow"},
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	require.NoError(t, p.HealthCheck(ctx))
	require.NoError(t, p.Close(ctx))
}
