package backend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/taskflow/internal/generator"
	"github.com/mesh-intelligence/taskflow/internal/service"
	"github.com/mesh-intelligence/taskflow/pkg/types"
)

var frozen = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

// attach opens a backend and silences latency and faults.
func attach(t *testing.T, cfg types.Config) *Backend {
	t.Helper()
	b := New(Options{Now: func() time.Time { return frozen }})
	require.NoError(t, b.Attach(cfg))
	t.Cleanup(func() { b.Detach() })

	sim, err := b.Config()
	require.NoError(t, err)
	_, err = sim.Update(types.ConfigPatch{DelayMin: ptr(0), DelayMax: ptr(0), ErrorRate: ptr(0.0)})
	require.NoError(t, err)
	return b
}

func TestAttachDetachLifecycle(t *testing.T) {
	b := New(Options{})
	_, err := b.Tasks()
	assert.ErrorIs(t, err, types.ErrDetached)
	assert.False(t, b.Attached())

	require.NoError(t, b.Attach(types.Config{Backend: types.BackendMemory}))
	assert.True(t, b.Attached())
	assert.ErrorIs(t, b.Attach(types.Config{Backend: types.BackendMemory}), types.ErrAlreadyAttached)

	cfg, err := b.StorageConfig()
	require.NoError(t, err)
	assert.Equal(t, types.BackendMemory, cfg.Backend)

	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach(), "detach is idempotent")
	_, err = b.Dataset()
	assert.ErrorIs(t, err, types.ErrDetached)
	_, err = b.Seed(context.Background(), generator.DefaultDatasetOptions())
	assert.ErrorIs(t, err, types.ErrDetached)
}

func TestAttachRejectsBadConfig(t *testing.T) {
	b := New(Options{})
	assert.ErrorIs(t, b.Attach(types.Config{}), types.ErrBackendEmpty)
	assert.ErrorIs(t, b.Attach(types.Config{Backend: "postgres"}), types.ErrBackendUnknown)
	assert.False(t, b.Attached())

	bad := New(Options{Dataset: generator.DatasetOptions{UserCount: -1, Seed: 1}})
	assert.ErrorIs(t, bad.Attach(types.Config{Backend: types.BackendMemory}), generator.ErrInvalidOptions)
}

func TestDefaultDatasetIsLoaded(t *testing.T) {
	ctx := context.Background()
	b := attach(t, types.Config{Backend: types.BackendMemory})
	want := generator.DefaultDatasetOptions()

	users, err := b.Users()
	require.NoError(t, err)
	all, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, want.UserCount)

	tasks, err := b.Tasks()
	require.NoError(t, err)
	list, err := tasks.List(ctx, service.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, list, want.TaskCount)
}

func TestDataSurvivesReattach(t *testing.T) {
	for _, name := range []string{types.BackendSQLite, types.BackendFile} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			cfg := types.Config{Backend: name, DataDir: t.TempDir()}

			b := attach(t, cfg)
			tasks, err := b.Tasks()
			require.NoError(t, err)
			created, err := tasks.Create(ctx, types.Task{Title: "Survive restart", WorkspaceID: "workspace_1"})
			require.NoError(t, err)
			require.NoError(t, b.Detach())

			again := attach(t, cfg)
			tasks, err = again.Tasks()
			require.NoError(t, err)
			got, err := tasks.Get(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, "Survive restart", got.Title)
		})
	}
}

func TestSeedReplacesCollections(t *testing.T) {
	ctx := context.Background()
	b := attach(t, types.Config{Backend: types.BackendMemory})

	opts := generator.DatasetOptions{UserCount: 4, WorkspaceCount: 2, TaskCount: 7, TeamCount: 1, Seed: 99}
	ds, err := b.Seed(ctx, opts)
	require.NoError(t, err)
	assert.Len(t, ds.Tasks, 7)

	tasks, err := b.Tasks()
	require.NoError(t, err)
	list, err := tasks.List(ctx, service.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, ds.Tasks, list)

	teams, err := b.Teams()
	require.NoError(t, err)
	all, err := teams.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	// Reset goes back to the attach-time defaults.
	data, err := b.Dataset()
	require.NoError(t, err)
	require.NoError(t, data.ResetAll(ctx))
	list, err = tasks.List(ctx, service.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, list, generator.DefaultDatasetOptions().TaskCount)
}

func TestLoginAgainstGeneratedUsers(t *testing.T) {
	ctx := context.Background()
	b := attach(t, types.Config{Backend: types.BackendMemory})

	users, err := b.Users()
	require.NoError(t, err)
	all, err := users.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, all)

	auth, err := b.Auth()
	require.NoError(t, err)
	sess, err := auth.Login(ctx, all[0].Email, service.DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, all[0].ID, sess.User.ID)
	assert.True(t, auth.IsAuthenticated())
}
