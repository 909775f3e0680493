package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/voyagen/m3ulive/internal/config"
	"github.com/voyagen/m3ulive/internal/logging"
)

// commandContext carries the configuration and logger built once per invocation.
type commandContext struct {
	configPath string
	logLevel   string
	verbose    bool

	cfg     *config.Config
	logger  *logging.Logger
	started time.Time
}

func newRootCommand() *cobra.Command {
	cc := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "m3ulive",
		Short:         "Filter IPTV playlists down to live channels",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cc.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return cc.finish()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cc.configPath, "config", "c", "", "Configuration file path (YAML or TOML); defaults to environment variables")
	rootCmd.PersistentFlags().StringVar(&cc.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&cc.verbose, "verbose", "v", false, "Log every keep/filter decision")

	rootCmd.AddCommand(newFilterCommand(cc))
	rootCmd.AddCommand(newGroupsCommand(cc))
	rootCmd.AddCommand(newCatalogCommand(cc))
	rootCmd.AddCommand(newCategoriesCommand(cc))

	return rootCmd
}

func (cc *commandContext) setup(cmd *cobra.Command) error {
	var err error
	if cc.configPath != "" {
		cc.cfg, err = config.LoadFromFile(cc.configPath)
	} else {
		cc.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	level := cc.cfg.LogLevel
	if cc.logLevel != "" {
		level = cc.logLevel
	}
	if cc.verbose {
		level = "debug"
	}
	opts := logging.Options{Level: level, Console: cmd.ErrOrStderr()}
	if cc.cfg.LogToFile {
		opts.FileDir = cc.cfg.LogDir
		if opts.FileDir == "" {
			opts.FileDir = "."
		}
	}
	cc.logger, err = logging.New(opts)
	if err != nil {
		return err
	}

	cc.started = time.Now()
	cmd.SetContext(cc.logger.WithContext(cmd.Context()))
	cc.logger.Debug().Str("command", cmd.Name()).Msg("starting")
	return nil
}

func (cc *commandContext) finish() error {
	if cc.logger == nil {
		return nil
	}
	cc.logger.Debug().Dur("elapsed", time.Since(cc.started)).Msg("completed")
	return cc.logger.Close()
}
