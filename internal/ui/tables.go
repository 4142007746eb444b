package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table is a bordered text table. Widths are measured in terminal cells, so styled
// cells line up.
type Table struct {
	headers  []string
	rows     [][]string
	maxWidth int
}

func NewTable(headers ...string) *Table {
	return &Table{
		headers:  headers,
		maxWidth: 120,
	}
}

func (t *Table) SetMaxWidth(width int) {
	t.maxWidth = width
}

func (t *Table) AddRow(values ...string) {
	row := make([]string, len(t.headers))
	copy(row, values)
	t.rows = append(t.rows, row)
}

func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) widths() []int {
	widths := make([]int, len(t.headers))
	total := 0
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
		for _, row := range t.rows {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
		widths[i] += 2
		total += widths[i] + 1
	}

	// Shrink the widest column until the table fits.
	for excess := total - t.maxWidth; excess > 0; excess-- {
		maxIdx := 0
		for i := 1; i < len(widths); i++ {
			if widths[i] > widths[maxIdx] {
				maxIdx = i
			}
		}
		if widths[maxIdx] <= 10 {
			break
		}
		widths[maxIdx]--
	}
	return widths
}

func (t *Table) Render(w io.Writer) {
	if len(t.headers) == 0 {
		return
	}
	widths := t.widths()

	border := func(left, mid, right string) {
		var b strings.Builder
		b.WriteString(left)
		for i, cw := range widths {
			b.WriteString(strings.Repeat("─", cw))
			if i < len(widths)-1 {
				b.WriteString(mid)
			}
		}
		b.WriteString(right)
		fmt.Fprintln(w, b.String())
	}
	line := func(cells []string) {
		var b strings.Builder
		b.WriteString("│")
		for i, cw := range widths {
			cell := truncate(cells[i], cw-2)
			b.WriteString(" ")
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", max(0, cw-2-lipgloss.Width(cell))))
			b.WriteString(" │")
		}
		fmt.Fprintln(w, b.String())
	}

	border("┌", "┬", "┐")
	line(t.headers)
	border("├", "┼", "┤")
	for _, row := range t.rows {
		line(row)
	}
	border("└", "┴", "┘")
}

// CompactTable prints a borderless table.
func CompactTable(w io.Writer, headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
		for _, row := range rows {
			if i < len(row) && lipgloss.Width(row[i]) > widths[i] {
				widths[i] = lipgloss.Width(row[i])
			}
		}
	}

	printRow := func(cells []string) {
		parts := make([]string, len(headers))
		for i := range headers {
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			parts[i] = val + strings.Repeat(" ", widths[i]-lipgloss.Width(val))
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	printRow(headers)
	seps := make([]string, len(widths))
	for i, cw := range widths {
		seps[i] = strings.Repeat("─", cw)
	}
	fmt.Fprintln(w, strings.Join(seps, "  "))
	for _, row := range rows {
		printRow(row)
	}
}

// truncate shortens s to maxLen cells with an ellipsis. Styled strings are left alone.
func truncate(s string, maxLen int) string {
	if lipgloss.Width(s) <= maxLen || maxLen <= 0 {
		return s
	}
	if strings.Contains(s, "\x1b") {
		return s
	}
	r := []rune(s)
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	for len(r) > 0 && lipgloss.Width(string(r))+3 > maxLen {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
