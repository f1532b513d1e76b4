// Package cli implements the creator command line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bitsnaps/open-creator/internal/config"
	"github.com/bitsnaps/open-creator/pkg/logger"
)

// GlobalFlags holds flags shared by every command.
type GlobalFlags struct {
	ConfigPath string
	Verbose    bool
	Quiet      bool
}

var globalFlags GlobalFlags

type contextKey struct{}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "creator",
		Short: "Restricted interpreter for LLM-generated code",
		Long: `Creator executes model-generated code inside a restricted sandbox:
source is vetted against a call allow-list before it runs, the namespace
persists across calls, and output is captured per execution.

Run code one-shot, interactively, or as an HTTP service.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// version and help need no configuration; init must be able
			// to run even when the current config file is broken.
			switch cmd.Name() {
			case "version", "help", "init":
				return nil
			}

			configPath := globalFlags.ConfigPath
			if configPath == "" {
				var err error
				configPath, err = config.DefaultConfigPath()
				if err != nil {
					return err
				}
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			logLevel := cfg.Log.Level
			if globalFlags.Verbose {
				logLevel = "debug"
			}
			if globalFlags.Quiet {
				logLevel = "error"
			}

			if err := logger.Init(logger.Config{
				Level:  logLevel,
				Format: cfg.Log.Format,
				File:   cfg.Log.File,
			}); err != nil {
				return err
			}

			cliCtx := NewCLIContext(cfg, configPath, logger.Get())
			cmd.SetContext(context.WithValue(cmd.Context(), contextKey{}, cliCtx))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if cliCtx := GetCLIContext(cmd); cliCtx != nil {
				return cliCtx.Close()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Quiet, "quiet", "q", false, "quiet mode")

	rootCmd.AddCommand(NewVersionCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewReplCmd())
	rootCmd.AddCommand(NewServeCmd())

	return rootCmd
}

// GetCLIContext extracts the CLI context from the command.
func GetCLIContext(cmd *cobra.Command) *CLIContext {
	ctx := cmd.Context()
	if ctx == nil {
		return nil
	}
	cliCtx, ok := ctx.Value(contextKey{}).(*CLIContext)
	if !ok {
		return nil
	}
	return cliCtx
}
