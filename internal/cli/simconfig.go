package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskflow/internal/backend"
	"github.com/mesh-intelligence/taskflow/pkg/types"
)

const servicePrefix = "service."

func (a *app) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the simulation config",
	}
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the simulation config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd, func(ctx context.Context, b *backend.Backend) error {
				sim, err := b.Config()
				if err != nil {
					return err
				}
				return a.printSimConfig(cmd, sim.Get(), sim.Mode().String())
			})
		},
	}
	set := &cobra.Command{
		Use:   "set <key=value>...",
		Short: "Change simulation config values",
		Long: `Keys: delayMin, delayMax, errorRate, persistToLocalStorage, enableLogging,
autoGenerateActivity, and service.<name> for tasks, users, workspaces, teams
and auth. Every pair is applied in one update.`,
		Example: `  taskflow config set delayMin=0 delayMax=0 errorRate=0
  taskflow config set service.auth=false`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := parseConfigPairs(args)
			if err != nil {
				return err
			}
			return a.withBackend(cmd, func(ctx context.Context, b *backend.Backend) error {
				sim, err := b.Config()
				if err != nil {
					return err
				}
				cfg, err := sim.Update(patch)
				if err != nil {
					return err
				}
				return a.printSimConfig(cmd, cfg, sim.Mode().String())
			})
		},
	}
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default simulation config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd, func(ctx context.Context, b *backend.Backend) error {
				sim, err := b.Config()
				if err != nil {
					return err
				}
				cfg, err := sim.Reset()
				if err != nil {
					return err
				}
				return a.printSimConfig(cmd, cfg, sim.Mode().String())
			})
		},
	}
	cmd.AddCommand(show, set, reset)
	return cmd
}

func (a *app) printSimConfig(cmd *cobra.Command, cfg types.SimulationConfig, mode string) error {
	if a.flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), cfg)
	}
	rows := [][]string{
		{"delayMin", strconv.Itoa(cfg.DelayMin)},
		{"delayMax", strconv.Itoa(cfg.DelayMax)},
		{"errorRate", strconv.FormatFloat(cfg.ErrorRate, 'g', -1, 64)},
		{"persistToLocalStorage", strconv.FormatBool(cfg.PersistToLocalStorage)},
		{"enableLogging", strconv.FormatBool(cfg.EnableLogging)},
		{"autoGenerateActivity", strconv.FormatBool(cfg.AutoGenerateActivity)},
	}
	names := make([]string, 0, len(cfg.EnabledServices))
	for name := range cfg.EnabledServices {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		rows = append(rows, []string{servicePrefix + name, strconv.FormatBool(cfg.EnabledServices[name])})
	}
	rows = append(rows, []string{"mode", mode})
	return printTable(cmd.OutOrStdout(), []string{"KEY", "VALUE"}, rows)
}

// parseConfigPairs turns key=value arguments into one patch.
func parseConfigPairs(args []string) (types.ConfigPatch, error) {
	var patch types.ConfigPatch
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return patch, fmt.Errorf("invalid pair %q (expected key=value)", arg)
		}
		if err := setConfigKey(&patch, key, value); err != nil {
			return patch, fmt.Errorf("%s: %w", key, err)
		}
	}
	return patch, nil
}

func setConfigKey(p *types.ConfigPatch, key, value string) error {
	if name, ok := strings.CutPrefix(key, servicePrefix); ok {
		if !slices.Contains(types.StandardServiceNames, name) {
			return fmt.Errorf("unknown service %q", name)
		}
		on, err := cast.ToBoolE(value)
		if err != nil {
			return err
		}
		if p.EnabledServices == nil {
			p.EnabledServices = map[string]bool{}
		}
		p.EnabledServices[name] = on
		return nil
	}

	switch key {
	case "delayMin", "delayMax":
		n, err := cast.ToIntE(value)
		if err != nil {
			return err
		}
		if key == "delayMin" {
			p.DelayMin = &n
		} else {
			p.DelayMax = &n
		}
	case "errorRate":
		f, err := cast.ToFloat64E(value)
		if err != nil {
			return err
		}
		p.ErrorRate = &f
	case "persistToLocalStorage", "enableLogging", "autoGenerateActivity":
		b, err := cast.ToBoolE(value)
		if err != nil {
			return err
		}
		switch key {
		case "persistToLocalStorage":
			p.PersistToLocalStorage = &b
		case "enableLogging":
			p.EnableLogging = &b
		default:
			p.AutoGenerateActivity = &b
		}
	default:
		return fmt.Errorf("unknown config key")
	}
	return nil
}
