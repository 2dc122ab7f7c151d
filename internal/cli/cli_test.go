package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/taskflow/internal/dataset"
	"github.com/mesh-intelligence/taskflow/internal/random"
	"github.com/mesh-intelligence/taskflow/internal/service"
	"github.com/mesh-intelligence/taskflow/pkg/taskflow"
	"github.com/mesh-intelligence/taskflow/pkg/types"
)

// harness runs commands against one config and data directory.
type harness struct {
	t         *testing.T
	configDir string
	dataDir   string
}

// newHarness returns a harness whose backend has no latency and no faults.
func newHarness(t *testing.T) *harness {
	t.Helper()
	root := t.TempDir()
	h := &harness{t: t, configDir: filepath.Join(root, "config"), dataDir: filepath.Join(root, "data")}
	h.mustRun("config", "set", "delayMin=0", "delayMax=0", "errorRate=0")
	return h
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config-dir", h.configDir, "--data-dir", h.dataDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "taskflow %s", strings.Join(args, " "))
	return out
}

// runJSON runs with --json and decodes the output into v.
func (h *harness) runJSON(v any, args ...string) {
	h.t.Helper()
	out := h.mustRun(append([]string{"--json"}, args...)...)
	require.NoError(h.t, json.Unmarshal([]byte(out), v), out)
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("version")
	assert.Contains(t, out, "taskflow v"+taskflow.Version)
	assert.Contains(t, out, modulePath)
}

func TestInitWritesConfigOnce(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("init")
	assert.Contains(t, out, "sqlite backend")

	path := filepath.Join(h.configDir, "config.yaml")
	first, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(first), "backend: sqlite")

	require.NoError(t, os.WriteFile(path, []byte("backend: file\n"), 0o644))
	out = h.mustRun("init")
	assert.Contains(t, out, "file backend", "existing config.yaml is kept")
}

func TestTaskLifecycle(t *testing.T) {
	h := newHarness(t)

	var created types.Task
	h.runJSON(&created, "task", "create", "--title", "Write release notes", "--workspace", "workspace_1", "--priority", "high", "--due", "2030-01-02")
	require.NotEmpty(t, created.ID)
	assert.Equal(t, types.TaskStatusTodo, created.Status)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, "2030-01-02", created.DueDate.Format(dateLayout))

	var got types.Task
	h.runJSON(&got, "task", "get", created.ID)
	assert.Equal(t, created, got)

	var updated types.Task
	h.runJSON(&updated, "task", "update", created.ID, "--description", "for v2", "--clear-due")
	assert.Equal(t, "for v2", updated.Description)
	assert.Equal(t, "Write release notes", updated.Title, "unset flags are left alone")
	assert.Nil(t, updated.DueDate)

	var moved types.Task
	h.runJSON(&moved, "task", "move", created.ID, types.TaskStatusDone)
	assert.Equal(t, types.TaskStatusDone, moved.Status)

	var done []types.Task
	h.runJSON(&done, "task", "list", "--status", types.TaskStatusDone, "--search", "release notes")
	require.Len(t, done, 1)
	assert.Equal(t, created.ID, done[0].ID)

	out := h.mustRun("task", "delete", created.ID)
	assert.Contains(t, out, "deleted "+created.ID)
	_, err := h.run("task", "get", created.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestTaskCommandErrors(t *testing.T) {
	h := newHarness(t)
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"missing title", []string{"task", "create", "--workspace", "workspace_1"}, types.ErrInvalidData},
		{"bad status", []string{"task", "move", "task_1", "blocked"}, types.ErrInvalidData},
		{"bad page", []string{"task", "list", "--page", "1", "--limit", "0"}, types.ErrInvalidPagination},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.run(tt.args...)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, exitUserError, exitCode(err))
		})
	}

	_, err := h.run("task", "create", "--title", "x", "--workspace", "w", "--due", "tomorrow")
	assert.ErrorContains(t, err, "YYYY-MM-DD")
}

func TestTaskListPage(t *testing.T) {
	h := newHarness(t)
	var page types.Page[types.Task]
	h.runJSON(&page, "task", "list", "--page", "2", "--limit", "5")
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Items, 5)
	assert.True(t, page.HasPrev)

	out := h.mustRun("task", "list", "--page", "1", "--limit", "5")
	assert.Contains(t, out, "page 1 of")
	assert.Contains(t, out, "PRIORITY")
}

func TestSeedThenListPeople(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("seed", "--users", "4", "--workspaces", "2", "--tasks", "6", "--teams", "1", "--seed", "7")
	assert.Contains(t, out, "seeded 4 users, 2 workspaces, 1 teams, 6 tasks")

	var users []types.User
	h.runJSON(&users, "user", "list")
	require.Len(t, users, 4)

	var found []types.User
	h.runJSON(&found, "user", "list", "--search", users[0].Email)
	require.NotEmpty(t, found)
	assert.Equal(t, users[0].ID, found[0].ID)

	var workspaces []types.Workspace
	h.runJSON(&workspaces, "workspace", "list")
	assert.Len(t, workspaces, 2)

	var mine []types.Workspace
	h.runJSON(&mine, "workspace", "list", "--user", workspaces[0].OwnerID)
	assert.NotEmpty(t, mine)

	var teams []types.Team
	h.runJSON(&teams, "team", "list")
	assert.Len(t, teams, 1)

	var tasks []types.Task
	h.runJSON(&tasks, "task", "list")
	assert.Len(t, tasks, 6)
}

func TestWorkspaceInvite(t *testing.T) {
	h := newHarness(t)
	var users []types.User
	h.runJSON(&users, "user", "list")

	var workspaces []types.Workspace
	h.runJSON(&workspaces, "workspace", "list")
	ws := workspaces[0]

	var outsider *types.User
	for i := range users {
		if !ws.HasMember(users[i].ID) {
			outsider = &users[i]
			break
		}
	}
	require.NotNil(t, outsider, "default dataset has a user outside the first workspace")

	out := h.mustRun("workspace", "invite", ws.ID, outsider.Email, "--role", types.RoleViewer)
	assert.Contains(t, out, "invited "+outsider.Email)

	_, err := h.run("workspace", "invite", ws.ID, outsider.Email)
	assert.ErrorIs(t, err, types.ErrAlreadyMember)
}

func TestConfigSetAndShow(t *testing.T) {
	h := newHarness(t)
	h.mustRun("config", "set", "errorRate=0", "enableLogging=false", "service.tasks=false")

	var cfg types.SimulationConfig
	h.runJSON(&cfg, "config", "show")
	assert.False(t, cfg.EnableLogging)
	assert.False(t, cfg.EnabledServices[types.ServiceTasks])
	assert.True(t, cfg.EnabledServices[types.ServiceUsers])

	_, err := h.run("task", "list")
	assert.ErrorIs(t, err, types.ErrServiceDisabled)

	out := h.mustRun("config", "show")
	assert.Contains(t, out, "service.tasks")

	_, err = h.run("config", "set", "delayMin=900", "delayMax=10")
	assert.ErrorIs(t, err, types.ErrInvalidConfig)

	h.runJSON(&cfg, "config", "reset")
	assert.Equal(t, types.DefaultSimulationConfig(), cfg)
}

func TestParseConfigPairs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		check   func(t *testing.T, p types.ConfigPatch)
		wantErr string
	}{
		{
			name: "numbers and flags",
			args: []string{"delayMin=5", "delayMax=10", "errorRate=0.25", "persistToLocalStorage=false", "autoGenerateActivity=true"},
			check: func(t *testing.T, p types.ConfigPatch) {
				assert.Equal(t, 5, *p.DelayMin)
				assert.Equal(t, 10, *p.DelayMax)
				assert.Equal(t, 0.25, *p.ErrorRate)
				assert.False(t, *p.PersistToLocalStorage)
				assert.True(t, *p.AutoGenerateActivity)
				assert.Nil(t, p.EnableLogging)
			},
		},
		{
			name: "services",
			args: []string{"service.auth=false", "service.teams=1"},
			check: func(t *testing.T, p types.ConfigPatch) {
				assert.Equal(t, map[string]bool{types.ServiceAuth: false, types.ServiceTeams: true}, p.EnabledServices)
			},
		},
		{name: "no equals", args: []string{"errorRate"}, wantErr: "expected key=value"},
		{name: "unknown key", args: []string{"speed=3"}, wantErr: "unknown config key"},
		{name: "unknown service", args: []string{"service.billing=true"}, wantErr: "unknown service"},
		{name: "not a number", args: []string{"delayMin=soon"}, wantErr: "delayMin"},
		{name: "not a bool", args: []string{"enableLogging=maybe"}, wantErr: "enableLogging"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := parseConfigPairs(tt.args)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}

func TestExportImportStats(t *testing.T) {
	h := newHarness(t)
	file := filepath.Join(t.TempDir(), "export.json")
	h.mustRun("export", "--output", file)

	var doc dataset.Document
	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.NotEmpty(t, doc.Data.Tasks)

	h.mustRun("task", "delete", doc.Data.Tasks[0].ID)

	var res dataset.ImportResult
	h.runJSON(&res, "import", file)
	assert.True(t, res.TasksReplaced)
	assert.Equal(t, len(doc.Data.Tasks), res.Tasks)

	var st dataset.Stats
	h.runJSON(&st, "stats")
	assert.Equal(t, len(doc.Data.Tasks), st.Tasks)
	assert.Len(t, st.TasksByStatus, len(types.TaskStatuses))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"config":{}}`), 0o644))
	_, err = h.run("import", bad)
	assert.ErrorIs(t, err, types.ErrMissingData)

	_, err = h.run("import", filepath.Join(t.TempDir(), "absent.json"))
	assert.Equal(t, exitSysError, exitCode(err))
}

func TestResetRestoresDefaults(t *testing.T) {
	h := newHarness(t)
	var before []types.Task
	h.runJSON(&before, "task", "list")

	h.mustRun("seed", "--tasks", "2", "--users", "3", "--workspaces", "1", "--teams", "1")
	out := h.mustRun("reset")
	assert.Contains(t, out, "reset complete")

	var after []types.Task
	h.runJSON(&after, "task", "list")
	assert.Equal(t, taskTitles(before), taskTitles(after))

	h.mustRun("reset", "--config")
	var cfg types.SimulationConfig
	h.runJSON(&cfg, "config", "show")
	assert.Equal(t, types.DefaultSimulationConfig(), cfg)
}

// taskTitles keys titles by id. Generated dates follow the wall clock, so
// defaults rebuilt by a later run differ only in timestamps.
func taskTitles(tasks []types.Task) map[string]string {
	m := make(map[string]string, len(tasks))
	for _, t := range tasks {
		m[t.ID] = t.Title
	}
	return m
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	var users []types.User
	h.runJSON(&users, "user", "list")
	require.NotEmpty(t, users)

	var sess types.AuthSession
	h.runJSON(&sess, "login", users[0].Email, service.DemoPassword)
	assert.Equal(t, users[0].ID, sess.User.ID)
	assert.NotEmpty(t, sess.Token)

	out := h.mustRun("login", users[0].Email, service.DemoPassword)
	assert.Contains(t, out, "signed in as "+users[0].FullName())

	_, err := h.run("login", users[0].Email, "wrong")
	assert.ErrorIs(t, err, types.ErrInvalidCredentials)
}

func TestLoadSettings(t *testing.T) {
	dir := t.TempDir()
	s, err := loadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, settings{Backend: types.BackendSQLite, Seed: random.DefaultSeed}, s)

	wrote, err := writeSettingsIfMissing(dir, settings{Backend: types.BackendFile, DataDir: "/tmp/tf", Seed: 42})
	require.NoError(t, err)
	assert.True(t, wrote)
	wrote, err = writeSettingsIfMissing(dir, settings{Backend: types.BackendMemory})
	require.NoError(t, err)
	assert.False(t, wrote)

	s, err = loadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, settings{Backend: types.BackendFile, DataDir: "/tmp/tf", Seed: 42}, s)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("backend: [\n"), 0o644))
	_, err = loadSettings(dir)
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitUserError, exitCode(types.ErrNotFound))
	assert.Equal(t, exitSysError, exitCode(sysErr("disk: %w", errors.New("full"))))
}
