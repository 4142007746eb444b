// Package watcher reports video files appearing under download directories.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/logging"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/naming"
)

type EventType string

const (
	EventCreate EventType = "create"
	EventWrite  EventType = "write"
	EventMove   EventType = "move"
	EventDelete EventType = "delete"
)

type FileEvent struct {
	Type EventType
	Path string
}

// Handler receives events for video files only.
type Handler interface {
	HandleFileEvent(event FileEvent) error
}

type Watcher struct {
	fsWatcher *fsnotify.Watcher
	handler   Handler
	recursive bool
	logger    *logging.Logger
}

type Option func(*Watcher)

func WithRecursive(recursive bool) Option {
	return func(w *Watcher) {
		w.recursive = recursive
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func New(handler Handler, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create watcher: %w", err)
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		handler:   handler,
		recursive: true,
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch registers each directory, and its non-hidden subdirectories when recursive.
func (w *Watcher) Watch(dirs []string) error {
	for _, dir := range dirs {
		if !w.recursive {
			if err := w.add(dir); err != nil {
				return err
			}
			continue
		}
		if err := w.addRecursive(dir); err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) add(dir string) error {
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("unable to watch %s: %w", dir, err)
	}
	w.logger.Debug("watcher", "Watching directory", logging.F("path", dir))
	return nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("unable to watch %s: %w", root, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(path) {
			return filepath.SkipDir
		}
		return w.add(path)
	})
}

// WatchList returns the directories currently registered.
func (w *Watcher) WatchList() []string {
	return w.fsWatcher.WatchList()
}

// Run delivers events until ctx is cancelled or the underlying watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if event.Has(fsnotify.Create) && w.recursive && isDir(event.Name) {
				if !isHidden(event.Name) {
					// Files may land in the new directory before it is registered.
					if err := w.addRecursive(event.Name); err != nil {
						w.logger.Warn("watcher", "Failed to watch new directory",
							logging.F("path", event.Name), logging.F("error", err.Error()))
					}
				}
				continue
			}
			if err := w.dispatch(event); err != nil {
				w.logger.Error("watcher", "Error handling event", err, logging.F("path", event.Name))
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Warn("watcher", "Watcher error", logging.F("error", err.Error()))
		}
	}
}

func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

func (w *Watcher) dispatch(event fsnotify.Event) error {
	fe, ok := translate(event)
	if !ok {
		return nil
	}
	w.logger.Debug("watcher", "Event",
		logging.F("type", string(fe.Type)), logging.F("file", filepath.Base(fe.Path)))
	return w.handler.HandleFileEvent(fe)
}

// translate maps an fsnotify event to a FileEvent. Non-video files, hidden files and
// partial transfers are dropped.
func translate(event fsnotify.Event) (FileEvent, bool) {
	if isHidden(event.Name) || strings.HasSuffix(event.Name, ".partial") {
		return FileEvent{}, false
	}
	if !naming.IsVideoFile(event.Name) {
		return FileEvent{}, false
	}

	fe := FileEvent{Type: EventCreate, Path: event.Name}
	switch {
	case event.Has(fsnotify.Create):
		fe.Type = EventCreate
	case event.Has(fsnotify.Write):
		fe.Type = EventWrite
	case event.Has(fsnotify.Rename):
		fe.Type = EventMove
	case event.Has(fsnotify.Remove):
		fe.Type = EventDelete
	default:
		return FileEvent{}, false
	}
	return fe, true
}
