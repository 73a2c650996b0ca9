package registry

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/bmadhq/platform/pkg/catalog"
	"github.com/bmadhq/platform/pkg/framework"
	"github.com/bmadhq/platform/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "agents"), 0o750))

	loader := framework.NewLoader(slog.Default(), root)
	store := catalog.NewStore(slog.Default(), loader, nil)

	return NewRegistry(slog.Default(), store)
}

func TestRegistry_Get(t *testing.T) {
	reg := newTestRegistry(t)

	wf, err := reg.Get(context.Background(), models.WorkflowBMadMethod)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowBMadMethod, wf.Type)
	assert.Equal(t, "analysis", wf.InitialPhase())
}

func TestRegistry_Get_UnknownType(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.Get(context.Background(), models.WorkflowType("waterfall"))
	require.Error(t, err)
	assert.True(t, IsWorkflowNotFound(err))
	assert.Contains(t, err.Error(), "waterfall")
}

func TestRegistry_List(t *testing.T) {
	reg := newTestRegistry(t)

	workflows, err := reg.List(context.Background())
	require.NoError(t, err)
	require.Len(t, workflows, 3)

	types := make([]models.WorkflowType, 0, len(workflows))
	for _, w := range workflows {
		types = append(types, w.Type)
	}

	assert.ElementsMatch(t, models.WorkflowTypes(), types)
}
