package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/taskflow/pkg/types"
)

func TestTaskCreateDefaultsAndValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	got, err := f.tasks.Create(ctx, types.Task{Title: "Write ADR", WorkspaceID: "workspace_1"})
	require.NoError(t, err)
	assert.Equal(t, "task_new_1", got.ID)
	assert.Equal(t, types.TaskStatusTodo, got.Status)
	assert.Equal(t, types.TaskPriorityMedium, got.Priority)
	assert.Equal(t, epoch, got.CreatedAt)
	assert.Equal(t, epoch, got.UpdatedAt)

	tests := []struct {
		name string
		in   types.Task
	}{
		{"no title", types.Task{WorkspaceID: "workspace_1"}},
		{"no workspace", types.Task{Title: "x"}},
		{"bad status", types.Task{Title: "x", WorkspaceID: "workspace_1", Status: "blocked"}},
		{"bad priority", types.Task{Title: "x", WorkspaceID: "workspace_1", Priority: "urgent"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.tasks.Create(ctx, tt.in)
			assert.ErrorIs(t, err, types.ErrInvalidData)
		})
	}
}

func TestTaskUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	*f.clock = epoch.Add(time.Hour)

	due := epoch.Add(240 * time.Hour)
	got, err := f.tasks.Update(ctx, "task_2", TaskPatch{Title: ptr("Rotate all keys"), DueDate: &due, AssigneeID: ptr("user_1")})
	require.NoError(t, err)
	assert.Equal(t, "Rotate all keys", got.Title)
	assert.Equal(t, "Quarterly credential rotation", got.Description)
	assert.Equal(t, "user_1", got.AssigneeID)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))
	assert.Equal(t, epoch.Add(time.Hour), got.UpdatedAt)
	assert.Equal(t, epoch, got.CreatedAt)

	got, err = f.tasks.Update(ctx, "task_2", TaskPatch{ClearDueDate: true})
	require.NoError(t, err)
	assert.Nil(t, got.DueDate)

	_, err = f.tasks.Update(ctx, "task_2", TaskPatch{Priority: ptr("urgent")})
	assert.ErrorIs(t, err, types.ErrInvalidData)
	stored, err := f.tasks.Get(ctx, "task_2")
	require.NoError(t, err)
	assert.Equal(t, types.TaskPriorityMedium, stored.Priority)

	_, err = f.tasks.Update(ctx, "missing", TaskPatch{})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestTaskMoveTask(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	got, err := f.tasks.MoveTask(ctx, "task_1", types.TaskStatusDone)
	require.NoError(t, err)
	assert.Equal(t, types.TaskStatusDone, got.Status)

	_, err = f.tasks.MoveTask(ctx, "task_1", "archived")
	assert.ErrorIs(t, err, types.ErrInvalidData)
}

func TestTaskListFilters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tests := []struct {
		name   string
		filter TaskFilter
		want   []string
	}{
		{"all", TaskFilter{}, []string{"task_1", "task_2", "task_3"}},
		{"status", TaskFilter{Status: types.TaskStatusInProgress}, []string{"task_2"}},
		{"priority", TaskFilter{Priority: types.TaskPriorityHigh}, []string{"task_1"}},
		{"assignee", TaskFilter{AssigneeID: "user_1"}, []string{"task_3"}},
		{"workspace", TaskFilter{WorkspaceID: "workspace_1"}, []string{"task_1", "task_2"}},
		{"team", TaskFilter{TeamID: "team_1"}, []string{"task_2"}},
		{"search description", TaskFilter{Search: "QUARTERLY"}, []string{"task_2"}},
		{"with due date", TaskFilter{HasDueDate: ptr(true)}, []string{"task_1", "task_2", "task_3"}},
		{"without due date", TaskFilter{HasDueDate: ptr(false)}, []string{}},
		{"overdue", TaskFilter{Overdue: true}, []string{"task_1"}},
		{"combined", TaskFilter{WorkspaceID: "workspace_1", Search: "rotate"}, []string{"task_2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.tasks.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestTaskOverdueFollowsClock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	got, err := f.tasks.Overdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"task_1"}, ids(got))

	// A week later task_2 is overdue too; task_3 stays excluded as done.
	*f.clock = epoch.Add(7 * 24 * time.Hour)
	got, err = f.tasks.Overdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"task_1", "task_2"}, ids(got))
}

func TestTaskListPage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	page, err := f.tasks.ListPage(ctx, TaskFilter{WorkspaceID: "workspace_1"}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, []string{"task_1"}, ids(page.Items))
	assert.True(t, page.HasNext)

	_, err = f.tasks.ListPage(ctx, TaskFilter{}, 1, -1)
	assert.ErrorIs(t, err, types.ErrInvalidPagination)
}

func TestTaskDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.tasks.Delete(ctx, "task_1"))
	assert.ErrorIs(t, f.tasks.Delete(ctx, "task_1"), types.ErrNotFound)
}
