package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskflow/internal/backend"
	"github.com/mesh-intelligence/taskflow/pkg/types"
)

func (a *app) newUserCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Inspect users"}
	var search string
	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd, func(ctx context.Context, b *backend.Backend) error {
				users, err := b.Users()
				if err != nil {
					return err
				}
				var all []types.User
				if search != "" {
					all, err = users.Search(ctx, search)
				} else {
					all, err = users.List(ctx)
				}
				if err != nil {
					return err
				}
				rows := make([][]string, len(all))
				for i, u := range all {
					rows[i] = []string{u.ID, u.FullName(), u.Email, u.Role}
				}
				return a.emit(cmd.OutOrStdout(), all, []string{"ID", "NAME", "EMAIL", "ROLE"}, rows)
			})
		},
	}
	list.Flags().StringVar(&search, "search", "", "match first name, last name or email")
	cmd.AddCommand(list)
	return cmd
}

func workspaceRows(all []types.Workspace) [][]string {
	rows := make([][]string, len(all))
	for i, w := range all {
		rows[i] = []string{w.ID, w.Name, w.OwnerID, strings.Join(w.MemberIDs(), ",")}
	}
	return rows
}

var workspaceHeaders = []string{"ID", "NAME", "OWNER", "MEMBERS"}

func (a *app) newWorkspaceCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "workspace", Short: "Manage workspaces"}

	var userID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd, func(ctx context.Context, b *backend.Backend) error {
				ws, err := b.Workspaces()
				if err != nil {
					return err
				}
				var all []types.Workspace
				if userID != "" {
					all, err = ws.ListForUser(ctx, userID)
				} else {
					all, err = ws.List(ctx)
				}
				if err != nil {
					return err
				}
				return a.emit(cmd.OutOrStdout(), all, workspaceHeaders, workspaceRows(all))
			})
		},
	}
	list.Flags().StringVar(&userID, "user", "", "only workspaces this user owns or belongs to")

	var role string
	invite := &cobra.Command{
		Use:     "invite <workspace-id> <email>",
		Short:   "Add an existing user to a workspace by email",
		Example: "  taskflow workspace invite workspace_1 someone@example.com --role viewer",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd, func(ctx context.Context, b *backend.Backend) error {
				ws, err := b.Workspaces()
				if err != nil {
					return err
				}
				w, err := ws.InviteMember(ctx, args[0], args[1], role)
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), w)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "invited %s to %s as %s\n", args[1], w.ID, role)
				return nil
			})
		},
	}
	invite.Flags().StringVar(&role, "role", types.RoleMember, "member role (admin, member, viewer)")

	cmd.AddCommand(list, invite)
	return cmd
}

func (a *app) newTeamCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "team", Short: "Inspect teams"}
	var userID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List teams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd, func(ctx context.Context, b *backend.Backend) error {
				teams, err := b.Teams()
				if err != nil {
					return err
				}
				var all []types.Team
				if userID != "" {
					all, err = teams.ListForUser(ctx, userID)
				} else {
					all, err = teams.List(ctx)
				}
				if err != nil {
					return err
				}
				rows := make([][]string, len(all))
				for i, t := range all {
					rows[i] = []string{t.TeamID, t.Name, t.LeaderID, strings.Join(t.MemberIDs, ",")}
				}
				return a.emit(cmd.OutOrStdout(), all, []string{"ID", "NAME", "LEADER", "MEMBERS"}, rows)
			})
		},
	}
	list.Flags().StringVar(&userID, "user", "", "only teams this user belongs to")
	cmd.AddCommand(list)
	return cmd
}
