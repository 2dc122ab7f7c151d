package service

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/taskflow/internal/kv"
	"github.com/mesh-intelligence/taskflow/internal/mock"
	"github.com/mesh-intelligence/taskflow/internal/mockconfig"
	"github.com/mesh-intelligence/taskflow/internal/random"
	"github.com/mesh-intelligence/taskflow/pkg/types"
)

func ptr[T any](v T) *T { return &v }

var epoch = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

// fixture wires every service over one memory storage with no latency and
// no faults.
type fixture struct {
	storage    *kv.Memory
	config     *mockconfig.Store
	clock      *time.Time
	tasks      *TaskService
	users      *UserService
	workspaces *WorkspaceService
	teams      *TeamService
	auth       *AuthService
}

func seedUsers() []types.User {
	return []types.User{
		{ID: "user_1", Email: "ada.lovelace@example.com", FirstName: "Ada", LastName: "Lovelace", Role: types.RoleAdmin, CreatedAt: epoch, UpdatedAt: epoch},
		{ID: "user_2", Email: "grace.hopper@example.com", FirstName: "Grace", LastName: "Hopper", Role: types.RoleMember, CreatedAt: epoch, UpdatedAt: epoch},
		{ID: "user_3", Email: "alan.turing@example.com", FirstName: "Alan", LastName: "Turing", Role: types.RoleViewer, CreatedAt: epoch, UpdatedAt: epoch},
	}
}

func seedWorkspaces() []types.Workspace {
	return []types.Workspace{{
		ID: "workspace_1", Name: "Platform", OwnerID: "user_1",
		Members: []types.WorkspaceMember{
			{UserID: "user_1", Role: types.RoleAdmin, JoinedAt: epoch},
			{UserID: "user_2", Role: types.RoleMember, JoinedAt: epoch},
		},
		CreatedAt: epoch, UpdatedAt: epoch,
	}}
}

func seedTasks() []types.Task {
	past := epoch.Add(-48 * time.Hour)
	future := epoch.Add(72 * time.Hour)
	return []types.Task{
		{ID: "task_1", Title: "Migrate CI runners", Status: types.TaskStatusTodo, Priority: types.TaskPriorityHigh, AssigneeID: "user_2", WorkspaceID: "workspace_1", DueDate: &past, CreatedAt: epoch, UpdatedAt: epoch},
		{ID: "task_2", Title: "Rotate API keys", Description: "Quarterly credential rotation", Status: types.TaskStatusInProgress, Priority: types.TaskPriorityMedium, WorkspaceID: "workspace_1", TeamID: "team_1", DueDate: &future, CreatedAt: epoch, UpdatedAt: epoch},
		{ID: "task_3", Title: "Archive old logs", Status: types.TaskStatusDone, Priority: types.TaskPriorityLow, AssigneeID: "user_1", WorkspaceID: "workspace_2", DueDate: &past, CreatedAt: epoch, UpdatedAt: epoch},
	}
}

func seedTeams() []types.Team {
	return []types.Team{{TeamID: "team_1", Name: "Infra", LeaderID: "user_1", MemberIDs: []string{"user_1", "user_2"}, CreatedAt: epoch}}
}

func counter(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s_new_%d", prefix, n)
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	storage := kv.NewMemory()
	logger := log.New(io.Discard)
	cfg := mockconfig.New(storage, random.New(random.DefaultSeed), logger)
	_, err := cfg.Update(types.ConfigPatch{DelayMin: ptr(0), DelayMax: ptr(0), ErrorRate: ptr(0.0)})
	require.NoError(t, err)

	clock := epoch
	deps := Deps{Config: cfg, Logger: logger, Now: func() time.Time { return clock }}

	users := NewUserService(mock.NewStore(mock.Options[types.User]{
		Key: types.KeyUsers, Defaults: seedUsers(), Storage: storage, Config: cfg, Logger: logger, NewID: counter("user"),
	}), deps)
	f := &fixture{
		storage: storage,
		config:  cfg,
		clock:   &clock,
		users:   users,
		tasks: NewTaskService(mock.NewStore(mock.Options[types.Task]{
			Key: types.KeyTasks, Defaults: seedTasks(), Storage: storage, Config: cfg, Logger: logger, NewID: counter("task"),
		}), deps),
		workspaces: NewWorkspaceService(mock.NewStore(mock.Options[types.Workspace]{
			Key: types.KeyWorkspaces, Defaults: seedWorkspaces(), Storage: storage, Config: cfg, Logger: logger, NewID: counter("workspace"),
		}), users, deps),
		teams: NewTeamService(mock.NewStore(mock.Options[types.Team]{
			Key: types.KeyTeams, Defaults: seedTeams(), Storage: storage, Config: cfg, Logger: logger, NewID: counter("team"),
		}), deps),
		auth: NewAuthService(users, storage, deps),
	}
	return f
}

func ids[T types.Entity[T]](items []T) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.EntityID()
	}
	return out
}

func TestDisabledServiceRefusesEveryOperation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.config.Update(types.ConfigPatch{EnabledServices: map[string]bool{
		types.ServiceTasks: false, types.ServiceUsers: false, types.ServiceWorkspaces: false,
		types.ServiceTeams: false, types.ServiceAuth: false,
	}})
	require.NoError(t, err)

	calls := map[string]func() error{
		"tasks.List":      func() error { _, err := f.tasks.List(ctx, TaskFilter{}); return err },
		"tasks.Delete":    func() error { return f.tasks.Delete(ctx, "task_1") },
		"users.Get":       func() error { _, err := f.users.Get(ctx, "user_1"); return err },
		"workspaces.List": func() error { _, err := f.workspaces.List(ctx); return err },
		"teams.Create":    func() error { _, err := f.teams.Create(ctx, types.Team{Name: "x", LeaderID: "user_1"}); return err },
		"auth.Login":      func() error { _, err := f.auth.Login(ctx, "ada.lovelace@example.com", DemoPassword); return err },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, call(), types.ErrServiceDisabled)
		})
	}

	// Nothing was deleted behind the switch.
	data, ok := f.tasks.Store().StoredData()
	require.True(t, ok)
	assert.Len(t, data, 3)
}

func TestFaultInjectionHitsBeforeStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.config.Update(types.ConfigPatch{ErrorRate: ptr(1.0)})
	require.NoError(t, err)

	err = f.tasks.Delete(ctx, "task_1")
	var mockErr *types.MockError
	require.ErrorAs(t, err, &mockErr)
	assert.Equal(t, types.DefaultFaultCode, mockErr.Code)

	data, _ := f.tasks.Store().StoredData()
	assert.Len(t, data, 3)
}
