package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskflow/internal/backend"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize taskflow storage",
		Long: "Write config.yaml if missing, then attach the storage backend once so the\n" +
			"default dataset and simulation config are stored.",
		RunE: a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, args []string) error {
	cfg, err := a.storageConfig()
	if err != nil {
		return err
	}
	wrote, err := writeSettingsIfMissing(a.settings.ConfigDir, settings{
		Backend: a.settings.Backend,
		DataDir: cfg.DataDir,
		Seed:    a.settings.Seed,
	})
	if err != nil {
		return sysErr("%w", err)
	}
	if wrote {
		a.logger.Debug("wrote config.yaml", "dir", a.settings.ConfigDir)
	}

	err = a.withBackend(cmd, func(ctx context.Context, b *backend.Backend) error { return nil })
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "taskflow initialized (%s backend, data in %s)\n", cfg.Backend, cfg.DataDir)
	return nil
}
