package services

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/bmadhq/platform/pkg/catalog"
	"github.com/bmadhq/platform/pkg/framework"
	"github.com/bmadhq/platform/pkg/models"
	"github.com/bmadhq/platform/pkg/persistence"
	"github.com/bmadhq/platform/pkg/persistence/file"
	"github.com/bmadhq/platform/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var builtinAgentIDs = []string{
	"analyst", "ux-designer", "pm", "sm", "architect", "tech-writer", "dev", "tea",
}

func newTestService(t *testing.T) *Instances {
	t.Helper()

	root := t.TempDir()
	agentsDir := filepath.Join(root, "agents")
	require.NoError(t, os.MkdirAll(agentsDir, 0o750))

	// Bare agent files pick up phases, specialist and seniority metadata
	// from the loader defaults.
	for _, id := range builtinAgentIDs {
		require.NoError(t, os.WriteFile(
			filepath.Join(agentsDir, id+".md"),
			[]byte("# "+id+"\n"),
			0o600,
		))
	}

	loader := framework.NewLoader(slog.Default(), root)
	store := catalog.NewStore(slog.Default(), loader, nil)
	reg := registry.NewRegistry(slog.Default(), store)
	p := file.NewPersistence(t.TempDir())

	return NewInstances(slog.Default(), p, reg, store, nil)
}

func startQuickFlow(t *testing.T, svc *Instances, owner string) *models.WorkflowInstance {
	t.Helper()

	result, err := svc.Start(context.Background(), StartRequest{
		WorkflowType: models.WorkflowQuickFlow,
		OwnerID:      owner,
		ProjectName:  "Demo Project",
	})
	require.NoError(t, err)

	return result.Instance
}

func TestInstances_Start(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.Start(context.Background(), StartRequest{
		WorkflowType: models.WorkflowBMadMethod,
		OwnerID:      "user-1",
		ProjectName:  "Big Project",
		Context:      map[string]any{"team_size": 8},
	})
	require.NoError(t, err)

	instance := result.Instance
	assert.NotEmpty(t, instance.ID)
	assert.Equal(t, "user-1", instance.OwnerID)
	assert.Equal(t, models.WorkflowBMadMethod, instance.Type)
	assert.Equal(t, "analysis", instance.CurrentPhase)
	assert.Empty(t, instance.PhaseProgress)
	assert.Equal(t, int64(1), instance.Version)

	// The analysis specialists lead the active agent set.
	require.NotEmpty(t, instance.ActiveAgents)
	assert.LessOrEqual(t, len(instance.ActiveAgents), 3)
	assert.Contains(t, instance.ActiveAgents, "analyst")
	assert.Contains(t, instance.ActiveAgents, "ux-designer")

	assert.Equal(t, models.WorkflowBMadMethod, result.Workflow.Type)
	assert.NotEmpty(t, result.RecommendedAgents)

	// The instance is durably persisted.
	stored, err := svc.FetchByID(context.Background(), instance.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, instance.CurrentPhase, stored.CurrentPhase)
}

func TestInstances_Start_UnknownWorkflowType(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Start(context.Background(), StartRequest{
		WorkflowType: models.WorkflowType("waterfall"),
		OwnerID:      "user-1",
		ProjectName:  "Demo",
	})
	require.Error(t, err)
	assert.True(t, registry.IsWorkflowNotFound(err))
}

func TestInstances_Transition(t *testing.T) {
	svc := newTestService(t)
	instance := startQuickFlow(t, svc, "user-1")

	result, err := svc.Transition(context.Background(), TransitionRequest{
		InstanceID:         instance.ID,
		CallerID:           "user-1",
		NextPhase:          "planning",
		CompletionCriteria: []string{"project brief approved"},
		Notes:              "analysis wrapped up",
	})
	require.NoError(t, err)

	assert.Equal(t, "analysis", result.PreviousPhase)
	assert.Equal(t, "planning", result.CurrentPhase)
	assert.Contains(t, result.ActiveAgents, "pm")

	stored, err := svc.FetchByID(context.Background(), instance.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "planning", stored.CurrentPhase)
	assert.Equal(t, int64(2), stored.Version)

	completion, ok := stored.PhaseProgress["analysis"]
	require.True(t, ok)
	assert.Equal(t, []string{"project brief approved"}, completion.CompletionCriteria)
	assert.Equal(t, "analysis wrapped up", completion.Notes)
	assert.False(t, completion.CompletedAt.IsZero())
}

func TestInstances_Transition_FullLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	instance := startQuickFlow(t, svc, "user-1")

	for _, phase := range []string{"planning", "implementation"} {
		_, err := svc.Transition(ctx, TransitionRequest{
			InstanceID: instance.ID,
			CallerID:   "user-1",
			NextPhase:  phase,
		})
		require.NoError(t, err)
	}

	stored, err := svc.FetchByID(ctx, instance.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "implementation", stored.CurrentPhase)
	assert.Len(t, stored.PhaseProgress, 2)

	// The terminal phase has no outgoing edges.
	_, err = svc.Transition(ctx, TransitionRequest{
		InstanceID: instance.ID,
		CallerID:   "user-1",
		NextPhase:  "analysis",
	})
	require.Error(t, err)
	assert.True(t, IsInvalidTransition(err))
}

func TestInstances_Transition_SkippingPhaseRejected(t *testing.T) {
	svc := newTestService(t)
	instance := startQuickFlow(t, svc, "user-1")

	_, err := svc.Transition(context.Background(), TransitionRequest{
		InstanceID: instance.ID,
		CallerID:   "user-1",
		NextPhase:  "implementation",
	})
	require.Error(t, err)
	assert.True(t, IsInvalidTransition(err))
	assert.Contains(t, err.Error(), `"analysis"`)
	assert.Contains(t, err.Error(), `"implementation"`)

	// The failed transition must not change the instance.
	stored, err := svc.FetchByID(context.Background(), instance.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "analysis", stored.CurrentPhase)
	assert.Equal(t, int64(1), stored.Version)
	assert.Empty(t, stored.PhaseProgress)
}

func TestInstances_Transition_AccessDenied(t *testing.T) {
	svc := newTestService(t)
	instance := startQuickFlow(t, svc, "user-1")

	_, err := svc.Transition(context.Background(), TransitionRequest{
		InstanceID: instance.ID,
		CallerID:   "intruder",
		NextPhase:  "planning",
	})
	require.Error(t, err)
	assert.True(t, IsAccessDenied(err))
}

func TestInstances_Transition_InstanceNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Transition(context.Background(), TransitionRequest{
		InstanceID: "ghost",
		CallerID:   "user-1",
		NextPhase:  "planning",
	})
	require.Error(t, err)
	assert.True(t, persistence.IsInstanceNotFound(err))
}

func TestInstances_Transition_StaleVersionConflict(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	instance := startQuickFlow(t, svc, "user-1")

	// First writer wins.
	_, err := svc.Transition(ctx, TransitionRequest{
		InstanceID: instance.ID,
		CallerID:   "user-1",
		NextPhase:  "planning",
	})
	require.NoError(t, err)

	// A second transition against the already-departed phase is rejected as
	// an invalid move, not silently replayed.
	_, err = svc.Transition(ctx, TransitionRequest{
		InstanceID: instance.ID,
		CallerID:   "user-1",
		NextPhase:  "planning",
	})
	require.Error(t, err)
	assert.True(t, IsInvalidTransition(err))
}

func TestInstances_Recommend(t *testing.T) {
	svc := newTestService(t)

	scored, err := svc.Recommend(context.Background(), "implementation", models.ComplexityHigh, "")
	require.NoError(t, err)
	require.NotEmpty(t, scored)

	// tea is the high-complexity implementation specialist.
	assert.Equal(t, "tea", scored[0].Agent.ID)

	for i := 1; i < len(scored); i++ {
		assert.GreaterOrEqual(t, scored[i-1].Score, scored[i].Score)
	}
}

func TestInstances_Recommend_UnknownPhase(t *testing.T) {
	svc := newTestService(t)

	scored, err := svc.Recommend(context.Background(), "deployment", models.ComplexityMedium, "")
	require.NoError(t, err)
	assert.Empty(t, scored)
}

func TestInstances_FetchByID_AccessDenied(t *testing.T) {
	svc := newTestService(t)
	instance := startQuickFlow(t, svc, "user-1")

	_, err := svc.FetchByID(context.Background(), instance.ID, "user-2")
	require.Error(t, err)
	assert.True(t, IsAccessDenied(err))
}

func TestInstances_ListByOwner(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	startQuickFlow(t, svc, "user-1")
	startQuickFlow(t, svc, "user-1")
	startQuickFlow(t, svc, "user-2")

	mine, err := svc.ListByOwner(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	theirs, err := svc.ListByOwner(ctx, "user-2")
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}

func TestInstances_HealthCheck(t *testing.T) {
	svc := newTestService(t)

	msg, ok := svc.HealthCheck(context.Background())
	assert.True(t, ok)
	assert.NotEmpty(t, msg)
}
