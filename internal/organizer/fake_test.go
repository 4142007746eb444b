package organizer

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/naming"
)

// memFS is an in-memory FileSystem that counts mutating operations.
type memFS struct {
	mu      sync.Mutex
	files   map[string][]byte
	dirs    map[string]bool
	moves   int
	writes  int
	moveErr map[string]error
}

func newMemFS(paths ...string) *memFS {
	fs := &memFS{files: map[string][]byte{}, dirs: map[string]bool{}, moveErr: map[string]error{}}
	for _, p := range paths {
		fs.files[filepath.Clean(p)] = []byte("video")
	}
	return fs
}

func (m *memFS) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok || m.dirs[path]
}

func (m *memFS) Move(_ context.Context, src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.moveErr[src]; ok {
		return err
	}
	data, ok := m.files[src]
	if !ok {
		return errors.New("no such file")
	}
	delete(m.files, src)
	m.files[dst] = data
	m.moves++
	return nil
}

func (m *memFS) MkdirAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[path] = true
	return nil
}

func (m *memFS) WriteFile(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = data
	m.writes++
	return nil
}

func (m *memFS) ops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.moves + m.writes
}

// stubResolver answers from a table keyed by parsed title and counts calls.
type stubResolver struct {
	mu     sync.Mutex
	byName map[string]naming.ResolvedIdentity
	calls  int
}

func (s *stubResolver) Resolve(_ context.Context, p naming.ParsedIdentity) (*naming.ResolvedIdentity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	id, ok := s.byName[p.Title]
	if !ok {
		return nil, false
	}
	return &id, true
}

type sliceRecorder struct {
	mu      sync.Mutex
	results []RenameResult
	err     error
}

func (r *sliceRecorder) Record(_ context.Context, res RenameResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
	return r.err
}
