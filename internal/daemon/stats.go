package daemon

import (
	"sync"
	"time"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/naming"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/organizer"
)

type Stats struct {
	mu            sync.RWMutex
	movies        int64
	series        int64
	other         int64
	renamed       int64
	alreadyNamed  int64
	failed        int64
	resolved      int64
	skipped       int64
	lastProcessed time.Time
	startTime     time.Time
}

func NewStats() *Stats {
	return &Stats{startTime: time.Now()}
}

func (s *Stats) Record(r organizer.RenameResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.Kind {
	case naming.KindMovie:
		s.movies++
	case naming.KindSeries:
		s.series++
	default:
		s.other++
	}
	switch r.Outcome {
	case organizer.StateRenamed:
		s.renamed++
	case organizer.StateAlreadyNamed:
		s.alreadyNamed++
	default:
		s.failed++
	}
	if r.Resolved {
		s.resolved++
	}
	s.lastProcessed = time.Now()
}

// RecordSkip counts a file that was never handed to the organizer.
func (s *Stats) RecordSkip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skipped++
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StatsSnapshot{
		Movies:        s.movies,
		Series:        s.series,
		Other:         s.other,
		Renamed:       s.renamed,
		AlreadyNamed:  s.alreadyNamed,
		Failed:        s.failed,
		Resolved:      s.resolved,
		Skipped:       s.skipped,
		LastProcessed: s.lastProcessed,
		Uptime:        time.Since(s.startTime),
	}
}

type StatsSnapshot struct {
	Movies        int64
	Series        int64
	Other         int64
	Renamed       int64
	AlreadyNamed  int64
	Failed        int64
	Resolved      int64
	Skipped       int64
	LastProcessed time.Time
	Uptime        time.Duration
}

func (s StatsSnapshot) Processed() int64 {
	return s.Renamed + s.AlreadyNamed + s.Failed
}
