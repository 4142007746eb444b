package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/daemon"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/logging"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/metadata"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	var (
		dryRun  bool
		offline bool
		noHTTP  bool
	)

	cmd := &cobra.Command{
		Use:   "watch [dir]...",
		Short: "Organize files as they appear in download directories",
		Long: `Watch runs in the foreground, organizing each new video file once it has stopped
changing for the configured settle delay. Directories default to watch.dirs.

A health server answers on daemon.health_addr with /health, /ready and /stats.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dry-run") {
				cfg.Organizer.DryRun = dryRun
			}
			// The handler feeds one file at a time.
			cfg.Organizer.Workers = 1

			dirs := cfg.Watch.Dirs
			if len(args) > 0 {
				dirs = args
			}
			if len(dirs) == 0 {
				return errors.New("no watch directories (set watch.dirs or pass a directory)")
			}

			logger := newLogger(cfg)
			defer logger.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			resolver, err := buildResolver(cfg, logger, offline)
			if err != nil {
				return err
			}
			hist := openHistory(ctx, cfg, logger, "watch", cfg.Organizer.DryRun)
			defer hist.Close()

			org := newOrganizer(cfg, asResolver(resolver), logger, hist.recorders())
			handler, err := daemon.NewMediaHandler(daemon.HandlerConfig{
				Organizer:    org,
				SettleDelay:  cfg.SettleDelay(),
				LibraryRoots: nonEmpty(cfg.Libraries.Movies, cfg.Libraries.TV, cfg.Libraries.Other),
				Logger:       logger,
			})
			if err != nil {
				return err
			}

			w, err := watcher.New(handler, watcher.WithLogger(logger))
			if err != nil {
				return err
			}
			if err := w.Watch(dirs); err != nil {
				w.Close()
				return err
			}

			var server *daemon.Server
			if !noHTTP && cfg.Daemon.HealthAddr != "" {
				opts := []daemon.ServerOption{
					daemon.WithServerLogger(logger),
					daemon.WithCORSOrigins(cfg.Daemon.CORSOrigins),
				}
				if resolver != nil {
					opts = append(opts, daemon.WithCacheStats(func() metadata.CacheStats { return resolver.Stats() }))
				}
				server = daemon.NewServer(handler, cfg.Daemon.HealthAddr, opts...)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %d director%s. Press Ctrl+C to stop.\n", len(dirs), plural(len(dirs), "y", "ies"))
			logger.Info("stellar", "Watch started",
				logging.F("dirs", dirs),
				logging.F("dry_run", cfg.Organizer.DryRun),
				logging.F("settle", cfg.SettleDelay().String()))

			return daemon.NewDaemon(w, handler, server, logger).Run(ctx)
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "log what would be renamed without touching files")
	cmd.Flags().BoolVar(&offline, "offline", false, "skip metadata providers")
	cmd.Flags().BoolVar(&noHTTP, "no-http", false, "do not start the health server")

	return cmd
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
