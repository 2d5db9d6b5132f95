package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/infrastructure/db/sqlstore"
)

func newSchemaCommand(opts *rootOptions) *cobra.Command {
	schema := &cobra.Command{
		Use:   "schema",
		Short: "Manage the relational schema",
	}
	schema.AddCommand(&cobra.Command{
		Use:   "apply",
		Short: "Create missing tables and indexes",
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			if err := sqlstore.ApplySchema(ctx, db); err != nil {
				return err
			}
			log.Info().Str("driver", cfg.Database.Driver).Msg("schema applied")
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	})
	return schema
}
