package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/logging"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/organizer"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/transfer"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/watcher"
)

// Organizer is the part of organizer.Organizer the handler drives.
type Organizer interface {
	Organize(ctx context.Context, path string) organizer.RenameResult
}

type HandlerConfig struct {
	Organizer Organizer
	// SettleDelay is how long a file must go without events before it is organized.
	SettleDelay time.Duration
	// LibraryRoots are health-checked before each file; a stalled mount skips the file.
	LibraryRoots  []string
	HealthTimeout time.Duration
	Logger        *logging.Logger
}

// MediaHandler turns watcher events into organize calls once a file has settled.
type MediaHandler struct {
	org           Organizer
	settleDelay   time.Duration
	libraryRoots  []string
	healthTimeout time.Duration
	logger        *logging.Logger
	stats         *Stats

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	pending  map[string]*time.Timer
	inflight sync.WaitGroup
	closed   bool
}

var _ watcher.Handler = (*MediaHandler)(nil)

var ErrNoOrganizer = errors.New("daemon: organizer is required")

func NewMediaHandler(cfg HandlerConfig) (*MediaHandler, error) {
	if cfg.Organizer == nil {
		return nil, ErrNoOrganizer
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}
	if cfg.HealthTimeout == 0 {
		cfg.HealthTimeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &MediaHandler{
		org:           cfg.Organizer,
		settleDelay:   cfg.SettleDelay,
		libraryRoots:  cfg.LibraryRoots,
		healthTimeout: cfg.HealthTimeout,
		logger:        cfg.Logger,
		stats:         NewStats(),
		ctx:           ctx,
		cancel:        cancel,
		pending:       make(map[string]*time.Timer),
	}, nil
}

// HandleFileEvent (re)starts the settle timer for the file. A delete cancels it.
func (h *MediaHandler) HandleFileEvent(event watcher.FileEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	if timer, ok := h.pending[event.Path]; ok {
		timer.Stop()
		delete(h.pending, event.Path)
	}
	if event.Type == watcher.EventDelete {
		return nil
	}

	path := event.Path
	h.pending[path] = time.AfterFunc(h.settleDelay, func() {
		h.processFile(path)
	})
	return nil
}

func (h *MediaHandler) processFile(path string) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	delete(h.pending, path)
	h.inflight.Add(1)
	h.mu.Unlock()
	defer h.inflight.Done()

	filename := filepath.Base(path)

	// Renamed away or deleted while settling.
	if _, err := transfer.StatWithTimeout(path, h.healthTimeout); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			h.logger.Warn("handler", "Cannot stat file, skipping",
				logging.F("filename", filename), logging.F("error", err.Error()))
		}
		h.stats.RecordSkip()
		return
	}

	for _, root := range h.libraryRoots {
		if !h.checkTargetHealth(root) {
			h.logger.Warn("handler", "Library unhealthy, skipping",
				logging.F("filename", filename), logging.F("library", root))
			h.stats.RecordSkip()
			return
		}
	}

	h.logger.Info("handler", "Processing file", logging.F("filename", filename), logging.F("path", path))
	start := time.Now()
	res := h.org.Organize(h.ctx, path)
	h.stats.Record(res)

	switch res.Outcome {
	case organizer.StateRenamed:
		h.logger.Info("handler", "Organized",
			logging.F("source", filename),
			logging.F("target", res.NewPath),
			logging.F("duration", time.Since(start).String()))
	case organizer.StateAlreadyNamed:
		h.logger.Debug("handler", organizer.AlreadyNamedMessage, logging.F("filename", filename))
	default:
		h.logger.Error("handler", "Organization failed", res.Error, logging.F("filename", filename))
	}
}

func (h *MediaHandler) checkTargetHealth(root string) bool {
	if root == "" {
		return true
	}
	health, err := transfer.CheckDiskHealth(root, h.healthTimeout)
	if err != nil {
		h.logger.Warn("handler", "Health check failed", logging.F("target", root), logging.F("error", err.Error()))
		return false
	}
	return health.IsHealthy()
}

// Pending returns the number of files waiting to settle.
func (h *MediaHandler) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending)
}

func (h *MediaHandler) Stats() StatsSnapshot {
	return h.stats.Snapshot()
}

// Shutdown drops files still settling and waits for the file in progress to finish.
func (h *MediaHandler) Shutdown() {
	h.mu.Lock()
	h.closed = true
	for path, timer := range h.pending {
		timer.Stop()
		delete(h.pending, path)
	}
	h.mu.Unlock()

	h.inflight.Wait()
	h.cancel()
}
