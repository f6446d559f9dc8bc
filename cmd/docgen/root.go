package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-docgen/internal/config"
	"github.com/goliatone/go-docgen/internal/logging"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "docgen",
		Short:         "Generate API documentation from model and route descriptors",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("log-level", "INFO", "log level (DEBUG, INFO, WARN, ERROR)")
	root.PersistentFlags().String("locale", "en", "locale for generated prose (en, es)")
	root.PersistentFlags().StringP("output", "o", "", "output file (stdout if empty)")

	root.AddCommand(
		newGenerateCmd(),
		newIntrospectCmd(),
		newScaffoldCmd(),
		newRenderersCmd(),
	)
	return root
}

// loadRuntime resolves the configuration for cmd and builds the logger that
// writes to the command's error stream.
func loadRuntime(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
