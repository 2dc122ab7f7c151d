package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskflow/pkg/taskflow"
)

const modulePath = "github.com/mesh-intelligence/taskflow"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the taskflow version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "taskflow v%s\nmodule: %s\n", taskflow.Version, modulePath)
			return nil
		},
	}
}
