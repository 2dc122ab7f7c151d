package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskflow/internal/backend"
	"github.com/mesh-intelligence/taskflow/internal/generator"
)

func (a *app) newSeedCmd() *cobra.Command {
	opts := generator.DefaultDatasetOptions()
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace every collection with a freshly generated dataset",
		Long: "Generate users, workspaces, teams and tasks with consistent references and\n" +
			"load them into storage. The same seed always produces the same dataset.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				opts.Seed = a.settings.Seed
			}
			return a.withBackend(cmd, func(ctx context.Context, b *backend.Backend) error {
				ds, err := b.Seed(ctx, opts)
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), ds)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d workspaces, %d teams, %d tasks (seed %d)\n",
					len(ds.Users), len(ds.Workspaces), len(ds.Teams), len(ds.Tasks), opts.Seed)
				return nil
			})
		},
	}
	fl := cmd.Flags()
	fl.IntVar(&opts.UserCount, "users", opts.UserCount, "number of users")
	fl.IntVar(&opts.WorkspaceCount, "workspaces", opts.WorkspaceCount, "number of workspaces")
	fl.IntVar(&opts.TaskCount, "tasks", opts.TaskCount, "number of tasks")
	fl.IntVar(&opts.TeamCount, "teams", opts.TeamCount, "number of teams")
	fl.Int64Var(&opts.Seed, "seed", opts.Seed, "random seed (default from config.yaml)")
	return cmd
}

func (a *app) newExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write tasks and simulation config as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd, func(ctx context.Context, b *backend.Backend) error {
				data, err := b.Dataset()
				if err != nil {
					return err
				}
				raw, err := data.ExportJSON(ctx)
				if err != nil {
					return err
				}
				if output == "" {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), string(raw))
					return err
				}
				if err := os.WriteFile(output, append(raw, '\n'), 0o644); err != nil {
					return sysErr("write export: %w", err)
				}
				a.logger.Debug("export written", "path", output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default stdout)")
	return cmd
}

func (a *app) newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load a document written by export",
		Long: "The config section is merged into the current simulation config and\n" +
			"data.tasks, when present, replaces every task. Use - to read stdin.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				raw []byte
				err error
			)
			if args[0] == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(args[0])
			}
			if err != nil {
				return sysErr("read import: %w", err)
			}
			return a.withBackend(cmd, func(ctx context.Context, b *backend.Backend) error {
				data, err := b.Dataset()
				if err != nil {
					return err
				}
				res, err := data.Import(ctx, raw)
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), res)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d tasks (tasks replaced: %t, config merged: %t)\n",
					res.Tasks, res.TasksReplaced, res.ConfigMerged)
				return nil
			})
		},
	}
}

func (a *app) newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarise the stored collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd, func(ctx context.Context, b *backend.Backend) error {
				data, err := b.Dataset()
				if err != nil {
					return err
				}
				st, err := data.Stats(ctx)
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), st)
				}
				itoa := strconv.Itoa
				rows := [][]string{
					{"tasks", itoa(st.Tasks)},
					{"users", itoa(st.Users)},
					{"workspaces", itoa(st.Workspaces)},
					{"teams", itoa(st.Teams)},
					{"overdue", itoa(st.Overdue)},
					{"unassigned", itoa(st.Unassigned)},
					{"with due date", itoa(st.WithDueDate)},
					{"completion", fmt.Sprintf("%.0f%%", st.CompletionRate*100)},
				}
				return printTable(cmd.OutOrStdout(), []string{"METRIC", "VALUE"}, rows)
			})
		},
	}
}

func (a *app) newResetCmd() *cobra.Command {
	var withConfig bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore every collection to its generated defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd, func(ctx context.Context, b *backend.Backend) error {
				data, err := b.Dataset()
				if err != nil {
					return err
				}
				if err := data.ResetAll(ctx); err != nil {
					return err
				}
				if withConfig {
					sim, err := b.Config()
					if err != nil {
						return err
					}
					if _, err := sim.Reset(); err != nil {
						return err
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), "reset complete")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&withConfig, "config", false, "also restore the default simulation config")
	return cmd
}
