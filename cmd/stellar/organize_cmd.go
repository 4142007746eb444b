package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/config"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/logging"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/organizer"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/transfer"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/ui"
)

type organizeFlags struct {
	dryRun    bool
	workers   int
	movies    string
	tv        string
	other     string
	noSidecar bool
	offline   bool
}

func newOrganizeCmd() *cobra.Command {
	var f organizeFlags

	cmd := &cobra.Command{
		Use:   "organize <path>...",
		Short: "Rename media files into the library layout",
		Long: `Organize renames every video file found under the given paths.

Directories are walked recursively; hidden directories and sample clips are skipped.
Files already named correctly are left alone. Without library roots, files are
renamed within their own directory.

Examples:
  stellar organize /downloads
  stellar organize --dry-run "/downloads/Breaking.Bad.S05E16.mkv"
  stellar organize /downloads --movies /media/Movies --tv /media/TV --workers 4`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrganize(cmd, args, f)
		},
	}

	cmd.Flags().BoolVarP(&f.dryRun, "dry-run", "n", false, "show what would be renamed without touching files")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "files organized in parallel (default from config)")
	cmd.Flags().StringVar(&f.movies, "movies", "", "movie library root")
	cmd.Flags().StringVar(&f.tv, "tv", "", "series library root")
	cmd.Flags().StringVar(&f.other, "other", "", "root for files that are neither movie nor series")
	cmd.Flags().BoolVar(&f.noSidecar, "no-sidecar", false, "do not write .nfo files for resolved movies")
	cmd.Flags().BoolVar(&f.offline, "offline", false, "skip metadata providers")

	return cmd
}

// applyOrganizeFlags overlays command-line flags on the loaded config.
func applyOrganizeFlags(cmd *cobra.Command, cfg *config.Config, f organizeFlags) {
	if cmd.Flags().Changed("dry-run") {
		cfg.Organizer.DryRun = f.dryRun
	}
	if f.workers > 0 {
		cfg.Organizer.Workers = f.workers
	}
	if f.movies != "" {
		cfg.Libraries.Movies = f.movies
	}
	if f.tv != "" {
		cfg.Libraries.TV = f.tv
	}
	if f.other != "" {
		cfg.Libraries.Other = f.other
	}
	if f.noSidecar {
		cfg.Organizer.Sidecars = false
	}
}

func collectPaths(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		if _, err := os.Stat(arg); err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		found, err := organizer.CollectMediaFiles(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", arg, err)
		}
		files = append(files, found...)
	}
	return files, nil
}

func newOrganizer(cfg *config.Config, resolver organizer.Resolver, logger *logging.Logger, recorders []organizer.Recorder) *organizer.Organizer {
	fsys := organizer.NewOSFileSystem(transfer.OptionsFromConfig(cfg))
	fsys.SetLogger(logger)

	opts := []organizer.Option{
		organizer.WithDryRun(cfg.Organizer.DryRun),
		organizer.WithWorkers(cfg.Organizer.Workers),
		organizer.WithSidecars(cfg.Organizer.Sidecars),
		organizer.WithLogger(logger),
		organizer.WithFileSystem(fsys),
		organizer.WithLibraries(organizer.Libraries{
			Movies: cfg.Libraries.Movies,
			TV:     cfg.Libraries.TV,
			Other:  cfg.Libraries.Other,
		}),
	}
	for _, r := range recorders {
		opts = append(opts, organizer.WithRecorder(r))
	}
	return organizer.New(resolver, opts...)
}

func runOrganize(cmd *cobra.Command, args []string, f organizeFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyOrganizeFlags(cmd, cfg, f)
	if err := cfg.Validate(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	files, err := collectPaths(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		ui.InfoMsg(out, "No media files found")
		return nil
	}

	logger := newLogger(cfg)
	defer logger.Close()

	// Ctrl+C finishes the file in progress and reports what was done.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resolver, err := buildResolver(cfg, logger, f.offline)
	if err != nil {
		return err
	}

	hist := openHistory(ctx, cfg, logger, "organize", cfg.Organizer.DryRun)
	defer hist.Close()

	recorders := hist.recorders()
	if ui.IsTerminal() && len(files) > 1 {
		recorders = append(recorders, ui.NewProgressBar(cmd.ErrOrStderr(), len(files), "Organizing"))
	}

	org := newOrganizer(cfg, asResolver(resolver), logger, recorders)

	start := time.Now()
	results := org.OrganizeBatch(ctx, files)
	summary := organizer.Summarize(results)

	if cfg.Organizer.DryRun {
		ui.WarningMsg(out, "Dry run: no files were changed")
	}
	ui.RenderResults(out, results, verbose)
	ui.RenderSummary(out, summary, time.Since(start), cfg.Organizer.DryRun)
	if resolver != nil && verbose {
		cs := resolver.Stats()
		fmt.Fprintf(out, "Lookup cache: %d hits, %d misses\n", cs.Hits, cs.Misses)
	}

	if len(results) < len(files) {
		ui.WarningMsg(out, "Interrupted: %d of %d files not processed", len(files)-len(results), len(files))
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d file(s) failed", summary.Failed)
	}
	return nil
}
