package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/core/domain"
	"github.com/taskpilot/taskpilot/internal/infrastructure/db/sqlstore"
)

func newUserCommand(opts *rootOptions) *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Administer user accounts",
	}
	user.AddCommand(&cobra.Command{
		Use:     "set-role <username> <role>",
		Short:   "Grant or revoke the admin role",
		Example: "  taskpilot user set-role alice admin",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := domain.ParseRole(args[1])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			cfg, log, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			db, err := sqlstore.Connect(ctx, sqlstore.Options{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN})
			if err != nil {
				return err
			}
			defer db.Close()

			if err := sqlstore.NewUserRepository(db).SetRole(ctx, args[0], role); err != nil {
				return fmt.Errorf("set role of %q: %w", args[0], err)
			}
			log.Info().Str("username", args[0]).Str("role", string(role)).Msg("role updated")
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], role)
			return nil
		},
	})
	return user
}
