package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/activity"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/database"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/ui"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past organize runs",
		Long: `History lists recent runs recorded in the history database.

Examples:
  stellar history --limit 5
  stellar history show <run-id>
  stellar history find "Breaking Bad"
  stellar history prune --days 90`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openHistoryDB()
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := db.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to read runs: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				ui.InfoMsg(out, "No runs recorded yet")
				return nil
			}

			t := ui.NewTable("Run", "Command", "Started", "Files", "Renamed", "OK", "Failed", "Took")
			for _, r := range runs {
				command := r.Command
				if r.DryRun {
					command += " (dry)"
				}
				took := "-"
				if r.Finished() {
					took = ui.FormatDuration(r.Duration())
				}
				t.AddRow(shortID(r.ID), command, ui.FormatAgo(r.StartedAt),
					fmt.Sprint(r.Total), fmt.Sprint(r.Renamed), fmt.Sprint(r.AlreadyNamed),
					failedCell(r.Failed), took)
			}
			t.Render(out)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of runs to show")

	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryFindCmd())
	cmd.AddCommand(newHistoryPruneCmd())
	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "List the files of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openHistoryDB()
			if err != nil {
				return err
			}
			defer db.Close()

			runID, err := expandRunID(cmd, db, args[0])
			if err != nil {
				return err
			}
			renames, err := db.RunRenames(cmd.Context(), runID)
			if err != nil {
				return fmt.Errorf("failed to read run: %w", err)
			}
			renderRenames(cmd, renames)
			return nil
		},
	}
}

func newHistoryFindCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "find <title>",
		Short: "Find past renames by title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openHistoryDB()
			if err != nil {
				return err
			}
			defer db.Close()

			renames, err := db.FindRenames(cmd.Context(), args[0], limit)
			if err != nil {
				return fmt.Errorf("failed to search history: %w", err)
			}
			renderRenames(cmd, renames)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 50, "maximum results")
	return cmd
}

func newHistoryPruneCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete history and activity logs older than --days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg.DatabasePath())
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := db.PruneRuns(cmd.Context(), time.Now().AddDate(0, 0, -days))
			if err != nil {
				return fmt.Errorf("failed to prune history: %w", err)
			}
			if al, err := activity.NewLogger(cfg.ActivityDir()); err == nil {
				if err := al.PruneOld(days); err != nil {
					ui.WarningMsg(cmd.OutOrStdout(), "Activity log prune failed: %v", err)
				}
				al.Close()
			}
			ui.SuccessMsg(cmd.OutOrStdout(), "Removed %d run(s) older than %d days", n, days)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 90, "keep this many days of history")
	return cmd
}

func openHistoryDB() (*database.HistoryDB, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}
	path := cfg.DatabasePath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("no history yet at %s (run 'stellar organize' first)", path)
	}
	return database.Open(path)
}

// expandRunID accepts the short id printed by `stellar history`.
func expandRunID(cmd *cobra.Command, db *database.HistoryDB, prefix string) (string, error) {
	runs, err := db.RecentRuns(cmd.Context(), 1000)
	if err != nil {
		return "", err
	}
	var match string
	for _, r := range runs {
		if strings.HasPrefix(r.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("run id %q is ambiguous", prefix)
			}
			match = r.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no run matches %q", prefix)
	}
	return match, nil
}

func renderRenames(cmd *cobra.Command, renames []database.RenameRecord) {
	out := cmd.OutOrStdout()
	if len(renames) == 0 {
		ui.InfoMsg(out, "Nothing found")
		return
	}
	t := ui.NewTable("When", "Result", "Source", "Target / Error", "Match")
	for _, r := range renames {
		detail := r.TargetPath
		if r.Error != "" {
			detail = ui.Error(r.Error)
		}
		match := r.ProviderTag
		if !r.Resolved {
			match = ui.Dim("local")
		}
		t.AddRow(ui.FormatAgo(r.CreatedAt), r.Outcome, filepath.Base(r.SourcePath), detail, match)
	}
	t.Render(out)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func failedCell(n int) string {
	if n == 0 {
		return "0"
	}
	return ui.Error(fmt.Sprint(n))
}
