// Package activity keeps an append-only JSONL audit trail of organize outcomes, one
// file per day.
package activity

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/organizer"
)

const (
	filePrefix = "activity-"
	fileSuffix = ".jsonl"
	dateLayout = "2006-01-02"
)

type Entry struct {
	Timestamp   time.Time `json:"ts"`
	Outcome     string    `json:"outcome"`
	Source      string    `json:"source"`
	Target      string    `json:"target,omitempty"`
	MediaType   string    `json:"media_type"`
	Title       string    `json:"title"`
	Year        int       `json:"year,omitempty"`
	Season      int       `json:"season,omitempty"`
	Episode     int       `json:"episode,omitempty"`
	ProviderTag string    `json:"provider_tag,omitempty"`
	Resolved    bool      `json:"resolved"`
	Confidence  float64   `json:"confidence"`
	DryRun      bool      `json:"dry_run,omitempty"`
	Sidecar     string    `json:"sidecar,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// EntryFromResult converts an organizer result into an audit entry.
func EntryFromResult(r organizer.RenameResult) Entry {
	return Entry{
		Outcome:     r.Outcome.String(),
		Source:      r.Original,
		Target:      r.NewPath,
		MediaType:   r.Kind.String(),
		Title:       r.Title,
		Year:        r.Year,
		Season:      r.Season,
		Episode:     r.Episode,
		ProviderTag: r.ProviderTag,
		Resolved:    r.Resolved,
		Confidence:  r.Confidence,
		DryRun:      r.DryRun,
		Sidecar:     r.SidecarPath,
		Error:       r.ErrorString(),
	}
}

type Logger struct {
	mu          sync.Mutex
	logDir      string
	currentFile *os.File
	currentDate string
	now         func() time.Time
}

var _ organizer.Recorder = (*Logger)(nil)

// NewLogger writes into logDir, creating it if needed.
func NewLogger(logDir string) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create activity dir: %w", err)
	}
	return &Logger{logDir: logDir, now: time.Now}, nil
}

// Record implements organizer.Recorder.
func (l *Logger) Record(_ context.Context, r organizer.RenameResult) error {
	return l.Log(EntryFromResult(r))
}

// Log appends entry to today's file, stamping it with the current time.
func (l *Logger) Log(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry.Timestamp = now

	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	today := now.Format(dateLayout)
	if l.currentDate != today || l.currentFile == nil {
		if err := l.rotateFile(today); err != nil {
			return err
		}
	}

	_, err = l.currentFile.Write(append(line, '\n'))
	return err
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentFile == nil {
		return nil
	}
	err := l.currentFile.Close()
	l.currentFile = nil
	return err
}

// PruneOld removes day files older than retentionDays.
func (l *Logger) PruneOld(retentionDays int) error {
	cutoff := l.now().AddDate(0, 0, -retentionDays)

	files, err := l.dayFiles()
	if err != nil {
		return err
	}
	for _, name := range files {
		fileDate, err := time.Parse(dateLayout, strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix))
		if err != nil {
			continue
		}
		if fileDate.Before(cutoff) {
			os.Remove(filepath.Join(l.logDir, name))
		}
	}
	return nil
}

func (l *Logger) rotateFile(date string) error {
	if l.currentFile != nil {
		l.currentFile.Close()
	}

	file, err := os.OpenFile(filepath.Join(l.logDir, filePrefix+date+fileSuffix), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	l.currentFile = file
	l.currentDate = date
	return nil
}

func (l *Logger) LogDir() string {
	return l.logDir
}

// dayFiles lists activity files oldest first.
func (l *Logger) dayFiles() ([]string, error) {
	entries, err := os.ReadDir(l.logDir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), filePrefix) && strings.HasSuffix(e.Name(), fileSuffix) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// RecentEntries returns up to limit entries, newest first.
func (l *Logger) RecentEntries(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	files, err := l.dayFiles()
	if err != nil {
		return nil, err
	}

	var results []Entry
	for i := len(files) - 1; i >= 0; i-- {
		fileEntries, err := readEntries(filepath.Join(l.logDir, files[i]))
		if err != nil {
			continue
		}
		for j := len(fileEntries) - 1; j >= 0; j-- {
			results = append(results, fileEntries[j])
			if len(results) >= limit {
				return results, nil
			}
		}
	}
	return results, nil
}

// readEntries decodes a JSONL file, skipping malformed lines.
func readEntries(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return decodeEntries(file)
}

func decodeEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, scanner.Err()
}
