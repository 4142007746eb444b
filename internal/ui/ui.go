// Package ui renders command output: colored when stdout is a terminal, plain otherwise.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

var (
	isTerminal   = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	colorEnabled = os.Getenv("NO_COLOR") == ""
)

// DisableColors switches every style to plain text.
func DisableColors() {
	colorEnabled = false
	initStyles()
}

// EnableColors restores color when stdout is a terminal.
func EnableColors() {
	colorEnabled = true
	initStyles()
}

// IsTerminal reports whether colored output is in effect.
func IsTerminal() bool {
	return isTerminal && colorEnabled
}

// Section prints a section header.
func Section(w io.Writer, title string) {
	fmt.Fprintln(w)
	if IsTerminal() {
		fmt.Fprintln(w, headerStyle.Render("━━━ "+strings.ToUpper(title)+" ━━━"))
		return
	}
	fmt.Fprintln(w, strings.ToUpper(title))
	fmt.Fprintln(w, strings.Repeat("=", len(title)+6))
}

func FormatBytes(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.Bytes(uint64(bytes))
}

// FormatDuration renders short durations for reports: 850ms, 4.2s, 3.0m, 1.5h.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.1fm", d.Minutes())
	default:
		return fmt.Sprintf("%.1fh", d.Hours())
	}
}

// FormatAgo renders a past time relative to now ("3 hours ago").
func FormatAgo(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

// FormatCount renders n with thousands separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}
