// Package organizer drives files through parse, resolve and rename, one RenameResult
// per file.
package organizer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/logging"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/naming"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/transfer"
)

// Resolver looks up the canonical identity of a parsed file. *metadata.Resolver
// implements it.
type Resolver interface {
	Resolve(ctx context.Context, p naming.ParsedIdentity) (*naming.ResolvedIdentity, bool)
}

// Recorder receives every result, e.g. the activity log or the history database.
type Recorder interface {
	Record(ctx context.Context, r RenameResult) error
}

// Libraries are the destination roots per kind. An empty root keeps the file in its
// own directory tree.
type Libraries struct {
	Movies string
	TV     string
	Other  string
}

func (l Libraries) rootFor(kind naming.MediaKind) string {
	switch kind {
	case naming.KindMovie:
		return l.Movies
	case naming.KindSeries:
		return l.TV
	default:
		return l.Other
	}
}

type Organizer struct {
	resolver  Resolver
	fs        FileSystem
	libraries Libraries
	dryRun    bool
	sidecars  bool
	workers   int
	recorders []Recorder
	logger    *logging.Logger

	// claimed maps targets taken during this process to their source, so two files
	// of one batch never race for the same name.
	mu      sync.Mutex
	claimed map[string]string
}

type Option func(*Organizer)

// WithDryRun computes targets without touching the filesystem.
func WithDryRun(dryRun bool) Option {
	return func(o *Organizer) {
		o.dryRun = dryRun
	}
}

// WithWorkers sets how many files a batch processes at once.
func WithWorkers(n int) Option {
	return func(o *Organizer) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithSidecars toggles the provider-link .nfo next to resolved movies.
func WithSidecars(enabled bool) Option {
	return func(o *Organizer) {
		o.sidecars = enabled
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(o *Organizer) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRecorder adds a recorder; it may be given more than once.
func WithRecorder(r Recorder) Option {
	return func(o *Organizer) {
		if r != nil {
			o.recorders = append(o.recorders, r)
		}
	}
}

func WithFileSystem(fs FileSystem) Option {
	return func(o *Organizer) {
		if fs != nil {
			o.fs = fs
		}
	}
}

func WithLibraries(l Libraries) Option {
	return func(o *Organizer) {
		o.libraries = l
	}
}

// New creates an organizer. resolver may be nil, in which case every file takes the
// fallback naming path.
func New(resolver Resolver, opts ...Option) *Organizer {
	o := &Organizer{
		resolver: resolver,
		fs:       NewOSFileSystem(transfer.DefaultOptions()),
		sidecars: true,
		workers:  1,
		logger:   logging.Nop(),
		claimed:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Organize runs one file through the pipeline and hands the result to the recorders.
// The outcome is always terminal.
func (o *Organizer) Organize(ctx context.Context, path string) RenameResult {
	r := o.organize(ctx, path)
	o.record(ctx, r)
	return r
}

func (o *Organizer) organize(ctx context.Context, path string) RenameResult {
	path = filepath.Clean(path)
	parsed := naming.ParseFile(path)
	state := StateParsed

	result := RenameResult{
		Original:   path,
		Kind:       parsed.Kind,
		Title:      parsed.Title,
		Year:       parsed.Year,
		Season:     parsed.Season,
		Episode:    parsed.Episode,
		Confidence: parsed.Confidence,
		DryRun:     o.dryRun,
	}
	if !parsed.ProviderTag.IsZero() {
		result.ProviderTag = parsed.ProviderTag.Tag()
	}

	var resolved *naming.ResolvedIdentity
	if parsed.Kind != naming.KindUnknown && o.resolver != nil {
		state = o.transition(path, state, StateResolving)
		if id, ok := o.resolver.Resolve(ctx, parsed); ok {
			resolved = id
			state = o.transition(path, state, StateResolved)
		} else {
			state = o.transition(path, state, StateUnresolved)
		}
	} else {
		state = o.transition(path, state, StateUnresolved)
	}

	if resolved != nil {
		result.Resolved = true
		result.Title = resolved.CanonicalTitle
		if resolved.Year > 0 {
			result.Year = resolved.Year
		}
		result.ProviderTag = resolved.ProviderID.Tag()
	}

	target := naming.GenerateTarget(parsed, resolved)
	dst := filepath.Join(o.rootFor(parsed.Kind, path, target), target.Dir, target.Filename)
	result.NewPath = dst

	if dst == path {
		o.transition(path, state, StateAlreadyNamed)
		result.Outcome = StateAlreadyNamed
		result.Success = true
		result.Message = AlreadyNamedMessage
		return result
	}

	if err := o.claim(dst, path); err != nil {
		return o.fail(path, state, result, err)
	}
	defer o.release(dst, path)

	if o.fs.Exists(dst) {
		return o.fail(path, state, result, fmt.Errorf("%w: %s", ErrTargetExists, dst))
	}

	if o.dryRun {
		o.transition(path, state, StateRenamed)
		result.Outcome = StateRenamed
		result.Success = true
		result.Message = "dry run"
		return result
	}

	if err := o.fs.MkdirAll(filepath.Dir(dst)); err != nil {
		return o.fail(path, state, result, err)
	}
	if err := o.fs.Move(ctx, path, dst); err != nil {
		return o.fail(path, state, result, err)
	}

	o.transition(path, state, StateRenamed)
	result.Outcome = StateRenamed
	result.Success = true
	result.Message = "renamed"

	if o.sidecars && target.Sidecar != nil {
		sidecarPath := filepath.Join(filepath.Dir(dst), target.Sidecar.Filename)
		if err := o.fs.WriteFile(sidecarPath, []byte(target.Sidecar.Content)); err != nil {
			// The media is already in place; a missing sidecar is not worth a failure.
			o.logger.Warn("organizer", "Failed to write sidecar",
				logging.F("path", sidecarPath),
				logging.F("error", err.Error()))
		} else {
			result.SidecarPath = sidecarPath
		}
	}

	o.logger.Info("organizer", "Renamed",
		logging.F("from", path),
		logging.F("to", dst),
		logging.F("resolved", result.Resolved))
	return result
}

// OrganizeBatch organizes every path and returns one result per file it started.
// Cancelling ctx stops the batch once the files in progress are done. With more than
// one worker the results are not in input order.
func (o *Organizer) OrganizeBatch(ctx context.Context, paths []string) []RenameResult {
	results := make([]RenameResult, 0, len(paths))
	// In-flight files finish even if the batch is cancelled.
	fileCtx := context.WithoutCancel(ctx)

	if o.workers <= 1 {
		for _, path := range paths {
			if ctx.Err() != nil {
				break
			}
			results = append(results, o.Organize(fileCtx, path))
		}
		return results
	}

	var mu sync.Mutex
	p := pool.New().WithMaxGoroutines(o.workers)
	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		path := path
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}
			r := o.Organize(fileCtx, path)
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		})
	}
	p.Wait()
	return results
}

// rootFor returns the library root for kind. Without a configured root the file stays
// in its tree: when the source already sits in the target's directory, that
// directory's parent is the root, which keeps re-runs idempotent.
func (o *Organizer) rootFor(kind naming.MediaKind, src string, target naming.Target) string {
	if root := o.libraries.rootFor(kind); root != "" {
		return filepath.Clean(root)
	}
	dir := filepath.Dir(src)
	if target.Dir == "" {
		return dir
	}
	suffix := string(filepath.Separator) + filepath.Clean(target.Dir)
	if strings.HasSuffix(dir, suffix) {
		return strings.TrimSuffix(dir, suffix)
	}
	return dir
}

func (o *Organizer) claim(dst, src string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if owner, ok := o.claimed[dst]; ok && owner != src {
		return fmt.Errorf("%w: %s is also the target of %s", ErrTargetExists, dst, owner)
	}
	o.claimed[dst] = src
	return nil
}

// release drops a claim once the file is done; a moved file is then caught by Exists.
func (o *Organizer) release(dst, src string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.claimed[dst] == src {
		delete(o.claimed, dst)
	}
}

func (o *Organizer) fail(path string, from State, result RenameResult, err error) RenameResult {
	o.transition(path, from, StateFailed)
	result.Outcome = StateFailed
	result.Success = false
	result.Error = err
	result.Message = err.Error()
	o.logger.Error("organizer", "Failed to organize file", err,
		logging.F("path", path),
		logging.F("target", result.NewPath))
	return result
}

func (o *Organizer) transition(path string, from, to State) State {
	o.logger.Debug("organizer", "State change",
		logging.F("path", path),
		logging.F("from", from.String()),
		logging.F("to", to.String()))
	return to
}

func (o *Organizer) record(ctx context.Context, r RenameResult) {
	for _, rec := range o.recorders {
		if err := rec.Record(ctx, r); err != nil {
			o.logger.Warn("organizer", "Failed to record result",
				logging.F("path", r.Original),
				logging.F("error", err.Error()))
		}
	}
}
