package main

import (
	"log/slog"

	"github.com/contre95/downsort/src/features/config"
	"github.com/contre95/downsort/src/features/logging"
	"github.com/spf13/cobra"
)

// commandContext carries the persistent flags and the configuration loaded
// from them.
type commandContext struct {
	configPath string
	root       string
	logLevel   string
	manager    *config.Manager
}

func (c *commandContext) ensureConfig() (*config.Manager, error) {
	if c.manager != nil {
		return c.manager, nil
	}
	manager, err := config.Load(c.configPath, config.WithRoot(c.root), config.WithLogLevel(c.logLevel))
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logging.SetupLogger(manager))
	c.manager = manager
	return manager, nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "downsort",
		Short:         "Keep a downloads folder sorted into category folders",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context(), ctx)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configPath, "config", "c", "", "Configuration file path (default "+config.DefaultConfigFile+")")
	flags.StringVarP(&ctx.root, "root", "r", "", "Folder to organize, overrides the config file and DOWNSORT_ROOT")
	flags.StringVar(&ctx.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newScanCommand(ctx))
	rootCmd.AddCommand(newCategoriesCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
