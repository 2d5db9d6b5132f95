// Package cli holds the taskpilot command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/infrastructure/config"
	"github.com/taskpilot/taskpilot/pkg/logger"
)

// loadConfig is swapped in tests.
var loadConfig = config.Load

type rootOptions struct {
	logLevel string
	pretty   bool
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "taskpilot",
		Short:         "Task and project tracking API with automation hooks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override LOG_LEVEL")
	root.PersistentFlags().BoolVar(&opts.pretty, "pretty", false, "human readable logs")

	root.AddCommand(
		newServeCommand(opts),
		newSchemaCommand(opts),
		newUserCommand(opts),
	)
	return root
}

// Execute runs the command tree against ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// setup loads the configuration and initialises the process logger.
func (o *rootOptions) setup(ctx context.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	level := cfg.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	log := logger.Init(logger.Options{
		Level:   level,
		Pretty:  cfg.LogPretty || o.pretty,
		Service: "taskpilot",
	})
	return cfg, log, nil
}
