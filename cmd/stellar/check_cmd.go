package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/ui"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/validator"
)

var (
	checkAllowMissingYear bool
	checkRequireTag       bool
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <path>...",
		Short: "Report files that are not named the library way",
		Long: `Check walks the given files or directories and lists every video whose name or
folder differs from what organize would produce offline. Nothing is renamed.

Examples:
  stellar check /media/Movies
  stellar check --require-tag /media/TV`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := validator.NewValidator(
				validator.WithAllowMissingYear(checkAllowMissingYear),
				validator.WithRequireProviderTag(checkRequireTag),
			)

			var results []*validator.ValidationResult
			for _, arg := range args {
				rs, err := v.ValidateTree(arg)
				if err != nil {
					return fmt.Errorf("scanning %s: %w", arg, err)
				}
				results = append(results, rs...)
			}

			out := cmd.OutOrStdout()
			table := ui.NewTable("File", "Expected", "Issues")
			table.SetMaxWidth(120)
			for _, r := range results {
				if r.Valid {
					continue
				}
				table.AddRow(r.CurrentName, r.ExpectedName, strings.Join(r.Issues, "; "))
			}

			if table.Len() == 0 {
				ui.SuccessMsg(out, "All %d %s named correctly", len(results), plural(len(results), "file is", "files are"))
				return nil
			}
			table.Render(out)
			fmt.Fprintln(out)
			ui.WarningMsg(out, "%d of %d %s need attention", table.Len(), len(results), plural(len(results), "file", "files"))
			return fmt.Errorf("%d misnamed %s", table.Len(), plural(table.Len(), "file", "files"))
		},
	}

	cmd.Flags().BoolVar(&checkAllowMissingYear, "allow-missing-year", false, "accept movies without a year")
	cmd.Flags().BoolVar(&checkRequireTag, "require-tag", false, "flag files without a provider tag")
	return cmd
}
