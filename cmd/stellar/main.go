package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/ui"
)

var (
	version = "dev" // Set by build flags: -ldflags="-X main.version=1.0.0"
	cfgFile string
	verbose bool
	noColor bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stellar",
		Short: "Rename media files into a clean, provider-tagged library",
		Long: `Stellar reads noisy release filenames, works out what movie or episode
each file is, and renames it into a predictable library layout:

  Movies:  Title (Year) {imdb-tt0000000}/Title (Year) {imdb-tt0000000}.mkv
  Series:  Title (Year) {tmdb-0000}/Season 01/Title - S01E01 - Episode.mkv

Metadata providers (OMDb, TMDB) are optional; without them names are built from the
filename alone.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				ui.DisableColors()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/stellar/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newOrganizeCmd())
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stellar %s\n", version)
		},
	}
}
