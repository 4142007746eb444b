package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/organizer"
)

// ProgressBar counts finished files. It is safe for concurrent use and doubles as an
// organizer.Recorder so a batch can drive it directly.
type ProgressBar struct {
	mu      sync.Mutex
	total   int
	current int
	width   int
	writer  io.Writer
	label   string
}

var _ organizer.Recorder = (*ProgressBar)(nil)

func NewProgressBar(w io.Writer, total int, label string) *ProgressBar {
	return &ProgressBar{
		total:  total,
		width:  40,
		writer: w,
		label:  label,
	}
}

func (p *ProgressBar) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current < p.total {
		p.current++
	}
	p.render()
}

func (p *ProgressBar) Record(_ context.Context, _ organizer.RenameResult) error {
	p.Increment()
	return nil
}

func (p *ProgressBar) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *ProgressBar) render() {
	if p.total <= 0 {
		return
	}
	percent := float64(p.current) / float64(p.total) * 100

	if !IsTerminal() {
		// Plain output is one line per file.
		fmt.Fprintf(p.writer, "%s: %d/%d (%.1f%%)\n", p.label, p.current, p.total, percent)
		return
	}

	filled := p.width * p.current / p.total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)
	fmt.Fprintf(p.writer, "\r%s [%s] %d/%d (%.1f%%)", p.label, bar, p.current, p.total, percent)
	if p.current >= p.total {
		fmt.Fprintln(p.writer)
	}
}
