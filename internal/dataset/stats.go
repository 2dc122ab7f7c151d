package dataset

import (
	"context"

	"github.com/mesh-intelligence/taskflow/pkg/types"
)

// Stats summarises the current collections.
type Stats struct {
	Tasks      int `json:"tasks"`
	Users      int `json:"users"`
	Workspaces int `json:"workspaces"`
	Teams      int `json:"teams"`

	TasksByStatus   map[string]int `json:"tasksByStatus"`
	TasksByPriority map[string]int `json:"tasksByPriority"`

	Overdue     int `json:"overdue"`
	Unassigned  int `json:"unassigned"`
	WithDueDate int `json:"withDueDate"`
	// CompletionRate is done tasks over all tasks, 0 with no tasks.
	CompletionRate float64 `json:"completionRate"`
}

// Stats counts every collection. Every status and priority appears in the
// maps, with zero when unused.
func (m *Manager) Stats(ctx context.Context) (Stats, error) {
	tasks, err := m.stores.Tasks.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	users, err := m.stores.Users.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	workspaces, err := m.stores.Workspaces.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	teams, err := m.stores.Teams.List(ctx)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		Tasks:           len(tasks),
		Users:           len(users),
		Workspaces:      len(workspaces),
		Teams:           len(teams),
		TasksByStatus:   make(map[string]int, len(types.TaskStatuses)),
		TasksByPriority: make(map[string]int, len(types.TaskPriorities)),
	}
	for _, s := range types.TaskStatuses {
		st.TasksByStatus[s] = 0
	}
	for _, p := range types.TaskPriorities {
		st.TasksByPriority[p] = 0
	}

	now := m.now()
	for _, t := range tasks {
		st.TasksByStatus[t.Status]++
		st.TasksByPriority[t.Priority]++
		if t.IsOverdue(now) {
			st.Overdue++
		}
		if t.AssigneeID == "" {
			st.Unassigned++
		}
		if t.DueDate != nil {
			st.WithDueDate++
		}
	}
	if len(tasks) > 0 {
		st.CompletionRate = float64(st.TasksByStatus[types.TaskStatusDone]) / float64(len(tasks))
	}
	return st, nil
}
