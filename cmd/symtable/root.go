package main

import (
	"github.com/indigo-web/symtable/settings"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app is shared by the subcommands. It's populated before any of them runs.
type app struct {
	configPath string
	backend    string
	verbose    bool

	settings settings.Settings
	logger   *zap.Logger
}

func newRootCommand() *cobra.Command {
	a := new(app)

	root := &cobra.Command{
		Use:          "symtable",
		Short:        "Symbol table toolkit",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a .toml or .json settings file")
	flags.StringVar(&a.backend, "backend", "", "table backend: hash or list (overrides the config)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log debug messages")

	root.AddCommand(newCountCommand(a), newBenchCommand(a))

	return root
}

func (a *app) init() (err error) {
	a.settings = settings.Default()
	if a.configPath != "" {
		if a.settings, err = settings.Load(a.configPath); err != nil {
			return err
		}
	}

	if a.backend != "" {
		a.settings.Backend = settings.Backend(a.backend)
	}

	a.logger, err = newLogger(a.verbose)
	return err
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}
