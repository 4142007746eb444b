package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/logging"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/watcher"
)

// Daemon ties the watcher, the settle handler and the health server together.
type Daemon struct {
	watcher *watcher.Watcher
	handler *MediaHandler
	server  *Server
	logger  *logging.Logger
}

// NewDaemon wires the parts; server may be nil.
func NewDaemon(w *watcher.Watcher, handler *MediaHandler, server *Server, logger *logging.Logger) *Daemon {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Daemon{
		watcher: w,
		handler: handler,
		server:  server,
		logger:  logger,
	}
}

// Run blocks until ctx is cancelled or a component fails, then shuts everything down.
// The file being organized at that moment is allowed to finish.
func (d *Daemon) Run(ctx context.Context) error {
	d.logger.Info("daemon", "Starting stellar daemon", logging.F("dirs", d.watcher.WatchList()))

	errChan := make(chan error, 2)
	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()

	go func() {
		if err := d.watcher.Run(watchCtx); err != nil {
			errChan <- fmt.Errorf("watcher error: %w", err)
		}
	}()
	if d.server != nil {
		go func() {
			if err := d.server.Start(); err != nil {
				errChan <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		d.logger.Info("daemon", "Shutdown requested")
	case runErr = <-errChan:
		d.logger.Error("daemon", "Component failed", runErr)
	}

	stopWatch()
	if err := d.stop(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func (d *Daemon) stop() error {
	d.logger.Info("daemon", "Stopping stellar daemon")
	d.handler.Shutdown()

	if d.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.server.Shutdown(shutdownCtx); err != nil {
			d.logger.Warn("daemon", "Health server shutdown failed", logging.F("error", err.Error()))
		}
	}

	if err := d.watcher.Close(); err != nil {
		return fmt.Errorf("error closing watcher: %w", err)
	}
	d.logger.Info("daemon", "Stellar daemon stopped")
	return nil
}
