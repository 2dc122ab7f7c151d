package service

import (
	"context"
	"time"

	"github.com/mesh-intelligence/taskflow/internal/mock"
	"github.com/mesh-intelligence/taskflow/pkg/types"
)

// TaskFilter narrows List. Zero fields match everything.
type TaskFilter struct {
	Status      string
	Priority    string
	AssigneeID  string
	WorkspaceID string
	TeamID      string
	// Search matches title and description, ignoring case.
	Search string
	// HasDueDate, when set, keeps only tasks with (true) or without (false)
	// a due date.
	HasDueDate *bool
	// Overdue keeps only overdue tasks.
	Overdue bool
}

// TaskPatch lists the fields Update may change. Nil fields are left alone.
// ClearDueDate removes the due date and wins over DueDate.
type TaskPatch struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *string
	AssigneeID   *string
	TeamID       *string
	DueDate      *time.Time
	ClearDueDate bool
}

// TaskService manages the task collection.
type TaskService struct {
	store *mock.Store[types.Task]
	deps  Deps
}

// NewTaskService wraps store.
func NewTaskService(store *mock.Store[types.Task], deps Deps) *TaskService {
	return &TaskService{store: store, deps: deps.withDefaults()}
}

// Store exposes the underlying collection.
func (s *TaskService) Store() *mock.Store[types.Task] { return s.store }

func (s *TaskService) guard() error {
	return guard(s.deps.Config, types.ServiceTasks, s.store.SimulateError)
}

// Create stores a new task. Status defaults to todo and priority to medium;
// title and workspace are required.
func (s *TaskService) Create(ctx context.Context, in types.Task) (types.Task, error) {
	if err := s.guard(); err != nil {
		return types.Task{}, err
	}
	if in.Status == "" {
		in.Status = types.TaskStatusTodo
	}
	if in.Priority == "" {
		in.Priority = types.TaskPriorityMedium
	}
	if err := validateTask(in); err != nil {
		return types.Task{}, err
	}
	now := s.deps.now()
	in.CreatedAt = now
	in.UpdatedAt = now
	return s.store.Create(ctx, in)
}

func validateTask(t types.Task) error {
	if t.Title == "" {
		return invalid("task title is required")
	}
	if t.WorkspaceID == "" {
		return invalid("task workspace is required")
	}
	if !types.ValidTaskStatus(t.Status) {
		return invalid("unknown task status %q", t.Status)
	}
	if !types.ValidTaskPriority(t.Priority) {
		return invalid("unknown task priority %q", t.Priority)
	}
	return nil
}

// Get returns one task.
func (s *TaskService) Get(ctx context.Context, id string) (types.Task, error) {
	if err := s.guard(); err != nil {
		return types.Task{}, err
	}
	return s.store.Get(ctx, id)
}

// Update applies patch and bumps updatedAt.
func (s *TaskService) Update(ctx context.Context, id string, patch TaskPatch) (types.Task, error) {
	if err := s.guard(); err != nil {
		return types.Task{}, err
	}
	now := s.deps.now()
	return s.store.Update(ctx, id, func(t *types.Task) error {
		patch.apply(t)
		if err := validateTask(*t); err != nil {
			return err
		}
		t.UpdatedAt = now
		return nil
	})
}

func (p TaskPatch) apply(t *types.Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.AssigneeID != nil {
		t.AssigneeID = *p.AssigneeID
	}
	if p.TeamID != nil {
		t.TeamID = *p.TeamID
	}
	if p.DueDate != nil {
		due := p.DueDate.UTC()
		t.DueDate = &due
	}
	if p.ClearDueDate {
		t.DueDate = nil
	}
}

// MoveTask changes the status of a task, as dragging a card between board
// columns does.
func (s *TaskService) MoveTask(ctx context.Context, id, status string) (types.Task, error) {
	if !types.ValidTaskStatus(status) {
		return types.Task{}, invalid("unknown task status %q", status)
	}
	return s.Update(ctx, id, TaskPatch{Status: &status})
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// List returns the tasks matching f in stored order.
func (s *TaskService) List(ctx context.Context, f TaskFilter) ([]types.Task, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.store.Filter(ctx, f.matcher(s.deps.Now()))
}

// ListPage is List followed by pagination.
func (s *TaskService) ListPage(ctx context.Context, f TaskFilter, page, limit int) (types.Page[types.Task], error) {
	if page < 1 || limit < 1 {
		return types.Page[types.Task]{}, types.ErrInvalidPagination
	}
	items, err := s.List(ctx, f)
	if err != nil {
		return types.Page[types.Task]{}, err
	}
	return types.Paginate(items, page, limit)
}

// Overdue returns the tasks whose due date has passed and that are not done.
func (s *TaskService) Overdue(ctx context.Context) ([]types.Task, error) {
	return s.List(ctx, TaskFilter{Overdue: true})
}

func taskText(t types.Task) []string { return []string{t.Title, t.Description} }

func (f TaskFilter) matcher(now time.Time) func(types.Task) bool {
	search := mock.Matcher(f.Search, taskText)
	return func(t types.Task) bool {
		switch {
		case f.Status != "" && t.Status != f.Status:
			return false
		case f.Priority != "" && t.Priority != f.Priority:
			return false
		case f.AssigneeID != "" && t.AssigneeID != f.AssigneeID:
			return false
		case f.WorkspaceID != "" && t.WorkspaceID != f.WorkspaceID:
			return false
		case f.TeamID != "" && t.TeamID != f.TeamID:
			return false
		case f.HasDueDate != nil && (t.DueDate != nil) != *f.HasDueDate:
			return false
		case f.Overdue && !t.IsOverdue(now):
			return false
		}
		return search(t)
	}
}
