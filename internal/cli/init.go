package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bitsnaps/open-creator/internal/config"
	"github.com/bitsnaps/open-creator/internal/storage"
)

// InitOptions holds init command options.
type InitOptions struct {
	Force bool
}

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	opts := &InitOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize creator configuration",
		Long:  "Write the default configuration file and create the execution history database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "overwrite existing configuration")

	return cmd
}

func runInit(cmd *cobra.Command, opts *InitOptions) error {
	configPath := globalFlags.ConfigPath
	if configPath == "" {
		var err error
		configPath, err = config.DefaultConfigPath()
		if err != nil {
			return err
		}
	}
	configPath, err := config.ExpandPath(configPath)
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); err == nil && !opts.Force {
		return fmt.Errorf("configuration already exists at %s (use --force to overwrite)", configPath)
	}

	cfg := config.Default()
	if err := config.SaveTo(cfg, configPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", configPath)

	storagePath := cfg.Storage.Path
	if storagePath == "" {
		storagePath, err = config.DefaultStoragePath()
		if err != nil {
			return err
		}
	}
	db, err := storage.Open(storagePath)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	if err := db.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "History database at %s\n", storagePath)

	return nil
}
