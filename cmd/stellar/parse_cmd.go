package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/naming"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/ui"
)

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <filename>...",
		Short: "Show what is read from a filename",
		Long: `Parse prints the fields extracted from each filename and the name it would get
without a metadata lookup. Nothing on disk is read or changed.

Examples:
  stellar parse "Breaking.Bad.S05E16.Felina.1080p.WEB-DL.DD5.1.H.264-NTb.mkv"`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for i, arg := range args {
				if i > 0 {
					fmt.Fprintln(out)
				}
				p := naming.ParseFile(arg)
				ui.RenderParsed(out, p, naming.GenerateTarget(p, nil))
			}
		},
	}
}
