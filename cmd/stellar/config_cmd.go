package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/config"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/ui"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage Stellar configuration",
		Long: `Commands for managing Stellar configuration.

The config file is stored at: ~/.config/stellar/config.toml
Every key can be overridden with a STELLAR_ environment variable, e.g.
STELLAR_PROVIDERS_OMDB_API_KEY.

Examples:
  stellar config init              # Create default config file
  stellar config show              # Display current configuration
  stellar config validate          # Check the configuration
  stellar config path              # Show config file path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigValidateCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func configFilePath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.ConfigPath()
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFilePath()
			if err != nil {
				return err
			}
			if fileExists(path) && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}

			if err := config.DefaultConfig().SaveTo(path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			out := cmd.OutOrStdout()
			ui.SuccessMsg(out, "Created config file: %s", path)
			fmt.Fprintln(out, "\nNext steps:")
			fmt.Fprintln(out, "  1. Set library roots and watch directories")
			fmt.Fprintln(out, "  2. Add an OMDb and/or TMDB API key for online matching")
			fmt.Fprintln(out, "  3. Run 'stellar config validate'")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing config file")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration with API keys masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig()
			if err != nil {
				return err
			}
			path, _ := configFilePath()
			out := cmd.OutOrStdout()

			if !fileExists(path) {
				ui.WarningMsg(out, "No config file at %s, showing defaults", path)
			} else {
				fmt.Fprintf(out, "# %s\n", path)
			}
			body, err := cfg.Masked().ToTOML()
			if err != nil {
				return err
			}
			out.Write(body)
			return nil
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration for errors",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			ui.SuccessMsg(out, "Configuration is valid")
			if cfg.Providers.OMDb.APIKey == "" && cfg.Providers.TMDB.APIKey == "" {
				ui.InfoMsg(out, "No provider API key set; names will come from filenames only")
			}
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFilePath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
