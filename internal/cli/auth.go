package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskflow/internal/backend"
	"github.com/mesh-intelligence/taskflow/pkg/types"
)

func (a *app) newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "login <email> <password>",
		Short:   "Sign in as a stored user",
		Long:    "Every generated user signs in with the demo password. The session is\nstored while persistence is on.",
		Example: "  taskflow login ada.lovelace@example.com password123",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd, func(ctx context.Context, b *backend.Backend) error {
				auth, err := b.Auth()
				if err != nil {
					return err
				}
				sess, err := auth.Login(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return a.printSession(cmd.OutOrStdout(), sess)
			})
		},
	}
}

func (a *app) printSession(w io.Writer, sess types.AuthSession) error {
	if a.flags.jsonMode {
		return printJSON(w, sess)
	}
	_, err := fmt.Fprintf(w, "signed in as %s <%s>, session expires %s\n",
		sess.User.FullName(), sess.User.Email, sess.ExpiresAt.Format("2006-01-02 15:04 MST"))
	return err
}
