package types

import "time"

// Task statuses, in board column order.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in-progress"
	TaskStatusDone       = "done"
)

// Task priorities.
const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

// TaskStatuses lists the statuses in board order.
var TaskStatuses = []string{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}

// TaskPriorities lists the priorities from lowest to highest.
var TaskPriorities = []string{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh}

var validTaskStatuses = map[string]bool{
	TaskStatusTodo:       true,
	TaskStatusInProgress: true,
	TaskStatusDone:       true,
}

var validTaskPriorities = map[string]bool{
	TaskPriorityLow:    true,
	TaskPriorityMedium: true,
	TaskPriorityHigh:   true,
}

// ValidTaskStatus reports whether s is a recognized task status.
func ValidTaskStatus(s string) bool { return validTaskStatuses[s] }

// ValidTaskPriority reports whether p is a recognized task priority.
func ValidTaskPriority(p string) bool { return validTaskPriorities[p] }

// Task is a unit of work inside a workspace.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssigneeID  string     `json:"assigneeId,omitempty"`
	WorkspaceID string     `json:"workspaceId"`
	TeamID      string     `json:"teamId,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (t Task) EntityID() string { return t.ID }

func (t Task) WithEntityID(id string) Task {
	t.ID = id
	return t
}

// IsOverdue reports whether the task has a due date before now and is not
// done. Tasks without a due date are never overdue.
func (t Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(now) && t.Status != TaskStatusDone
}
