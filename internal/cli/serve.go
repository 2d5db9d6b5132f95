package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/app"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the notification workers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, log, err := opts.setup(ctx)
			if err != nil {
				return err
			}

			a, err := app.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close(context.WithoutCancel(ctx))

			return a.Run(ctx)
		},
	}
}
