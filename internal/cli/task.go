package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskflow/internal/backend"
	"github.com/mesh-intelligence/taskflow/internal/service"
	"github.com/mesh-intelligence/taskflow/pkg/types"
)

var taskHeaders = []string{"ID", "TITLE", "STATUS", "PRIORITY", "ASSIGNEE", "WORKSPACE", "DUE"}

func taskRows(tasks []types.Task) [][]string {
	rows := make([][]string, len(tasks))
	for i, t := range tasks {
		rows[i] = []string{t.ID, t.Title, t.Status, t.Priority, orDash(t.AssigneeID), t.WorkspaceID, formatDate(t.DueDate)}
	}
	return rows
}

func parseDue(s string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --due %q (expected YYYY-MM-DD)", s)
	}
	return d, nil
}

func (a *app) newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	cmd.AddCommand(
		a.newTaskListCmd(),
		a.newTaskGetCmd(),
		a.newTaskCreateCmd(),
		a.newTaskUpdateCmd(),
		a.newTaskMoveCmd(),
		a.newTaskDeleteCmd(),
	)
	return cmd
}

func (a *app) newTaskListCmd() *cobra.Command {
	var (
		f           service.TaskFilter
		page, limit int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks with optional filters",
		Example: `  taskflow task list --status todo --priority high
  taskflow task list --workspace workspace_1 --overdue
  taskflow task list --search report --page 2 --limit 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd, func(ctx context.Context, b *backend.Backend) error {
				tasks, err := b.Tasks()
				if err != nil {
					return err
				}
				if page > 0 {
					p, err := tasks.ListPage(ctx, f, page, limit)
					if err != nil {
						return err
					}
					if err := a.emit(cmd.OutOrStdout(), p, taskHeaders, taskRows(p.Items)); err != nil {
						return err
					}
					if !a.flags.jsonMode {
						fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d (%d tasks)\n", p.Page, p.TotalPages, p.Total)
					}
					return nil
				}
				list, err := tasks.List(ctx, f)
				if err != nil {
					return err
				}
				return a.emit(cmd.OutOrStdout(), list, taskHeaders, taskRows(list))
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.Status, "status", "", "filter by status (todo, in-progress, done)")
	fl.StringVar(&f.Priority, "priority", "", "filter by priority (low, medium, high)")
	fl.StringVar(&f.AssigneeID, "assignee", "", "filter by assignee user ID")
	fl.StringVar(&f.WorkspaceID, "workspace", "", "filter by workspace ID")
	fl.StringVar(&f.TeamID, "team", "", "filter by team ID")
	fl.StringVar(&f.Search, "search", "", "match title or description")
	fl.BoolVar(&f.Overdue, "overdue", false, "only overdue tasks")
	fl.IntVar(&page, "page", 0, "page number, 1-based (0 lists everything)")
	fl.IntVar(&limit, "limit", 10, "page size")
	return cmd
}

func (a *app) newTaskGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd, func(ctx context.Context, b *backend.Backend) error {
				tasks, err := b.Tasks()
				if err != nil {
					return err
				}
				t, err := tasks.Get(ctx, args[0])
				if err != nil {
					return err
				}
				return a.emit(cmd.OutOrStdout(), t, taskHeaders, taskRows([]types.Task{t}))
			})
		},
	}
}

func (a *app) newTaskCreateCmd() *cobra.Command {
	var (
		in  types.Task
		due string
	)
	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a task",
		Example: `  taskflow task create --title "Write report" --workspace workspace_1 --priority high --due 2024-07-01`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if due != "" {
				d, err := parseDue(due)
				if err != nil {
					return err
				}
				in.DueDate = &d
			}
			return a.withBackend(cmd, func(ctx context.Context, b *backend.Backend) error {
				tasks, err := b.Tasks()
				if err != nil {
					return err
				}
				t, err := tasks.Create(ctx, in)
				if err != nil {
					return err
				}
				a.logger.Debug("task created", "id", t.ID)
				return a.emit(cmd.OutOrStdout(), t, taskHeaders, taskRows([]types.Task{t}))
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&in.Title, "title", "", "task title (required)")
	fl.StringVar(&in.WorkspaceID, "workspace", "", "workspace ID (required)")
	fl.StringVar(&in.Description, "description", "", "task description")
	fl.StringVar(&in.Status, "status", "", "initial status (default todo)")
	fl.StringVar(&in.Priority, "priority", "", "priority (default medium)")
	fl.StringVar(&in.AssigneeID, "assignee", "", "assignee user ID")
	fl.StringVar(&in.TeamID, "team", "", "team ID")
	fl.StringVar(&due, "due", "", "due date, YYYY-MM-DD")
	return cmd
}

func (a *app) newTaskUpdateCmd() *cobra.Command {
	var (
		title, description, status, priority, assignee, team, due string
		clearDue                                                  bool
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a task",
		Long:  "Only flags given on the command line are changed. --assignee \"\" unassigns.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fl := cmd.Flags()
			var patch service.TaskPatch
			set := func(name string, dst **string, v *string) {
				if fl.Changed(name) {
					*dst = v
				}
			}
			set("title", &patch.Title, &title)
			set("description", &patch.Description, &description)
			set("status", &patch.Status, &status)
			set("priority", &patch.Priority, &priority)
			set("assignee", &patch.AssigneeID, &assignee)
			set("team", &patch.TeamID, &team)
			if fl.Changed("due") {
				d, err := parseDue(due)
				if err != nil {
					return err
				}
				patch.DueDate = &d
			}
			patch.ClearDueDate = clearDue

			return a.withBackend(cmd, func(ctx context.Context, b *backend.Backend) error {
				tasks, err := b.Tasks()
				if err != nil {
					return err
				}
				t, err := tasks.Update(ctx, args[0], patch)
				if err != nil {
					return err
				}
				return a.emit(cmd.OutOrStdout(), t, taskHeaders, taskRows([]types.Task{t}))
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&title, "title", "", "new title")
	fl.StringVar(&description, "description", "", "new description")
	fl.StringVar(&status, "status", "", "new status")
	fl.StringVar(&priority, "priority", "", "new priority")
	fl.StringVar(&assignee, "assignee", "", "new assignee user ID")
	fl.StringVar(&team, "team", "", "new team ID")
	fl.StringVar(&due, "due", "", "new due date, YYYY-MM-DD")
	fl.BoolVar(&clearDue, "clear-due", false, "remove the due date")
	return cmd
}

func (a *app) newTaskMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "move <id> <status>",
		Short:   "Move a task to another board column",
		Example: "  taskflow task move task_3 in-progress",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd, func(ctx context.Context, b *backend.Backend) error {
				tasks, err := b.Tasks()
				if err != nil {
					return err
				}
				t, err := tasks.MoveTask(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return a.emit(cmd.OutOrStdout(), t, taskHeaders, taskRows([]types.Task{t}))
			})
		},
	}
}

func (a *app) newTaskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd, func(ctx context.Context, b *backend.Backend) error {
				tasks, err := b.Tasks()
				if err != nil {
					return err
				}
				if err := tasks.Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
}
