// Package transfer moves media files into the library. A move is a rename when source
// and target share a filesystem; across devices it becomes a watched copy followed by
// removal of the source, so a failing disk aborts instead of hanging.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

var (
	// ErrTimeout is returned when a copy makes no progress within Options.Timeout.
	ErrTimeout = errors.New("transfer timed out: no progress")

	ErrSourceNotFound = errors.New("source file not found")

	ErrDestinationNotWritable = errors.New("destination not writable")

	// ErrDestinationExists is returned when NoClobber is set and the target exists.
	ErrDestinationExists = errors.New("destination already exists")

	ErrDiskUnhealthy = errors.New("disk health check failed")

	ErrRetryExhausted = errors.New("all retry attempts exhausted")
)

// Options configures a single transfer.
type Options struct {
	// Timeout is how long a copy may go without progress. 0 means 30 minutes.
	Timeout time.Duration

	// Progress is called with bytes copied so far and the total size.
	Progress func(current, total int64)

	// RetryAttempts is the number of extra copy attempts after a failure.
	RetryAttempts int
	RetryDelay    time.Duration

	// NoClobber refuses to replace an existing destination.
	NoClobber bool

	// TargetUID/TargetGID set ownership of the result; -1 keeps it.
	TargetUID int
	TargetGID int

	// FileMode sets permissions of the result; 0 keeps them.
	FileMode os.FileMode

	// DirMode is used for directories created on the way; 0 means 0755.
	DirMode os.FileMode
}

// DefaultOptions returns the options used by the organizer.
func DefaultOptions() Options {
	return Options{
		Timeout:       5 * time.Minute,
		RetryAttempts: 2,
		RetryDelay:    2 * time.Second,
		NoClobber:     true,
		TargetUID:     -1,
		TargetGID:     -1,
	}
}

func (o Options) dirMode() os.FileMode {
	if o.DirMode == 0 {
		return 0755
	}
	return o.DirMode
}

// Result describes a completed transfer.
type Result struct {
	Success bool

	// Renamed is true when the fast path moved the file without copying.
	Renamed bool

	BytesTotal  int64
	BytesCopied int64
	Duration    time.Duration

	SourceRemoved bool

	Attempts int

	Error error

	// PermissionError is set when the file is in place but its mode or ownership could
	// not be applied. The transfer still counts as a success.
	PermissionError error
}

// Transferer moves or copies one file. Implementations are safe for concurrent use.
type Transferer interface {
	// Move places src at dst and removes src once dst is complete.
	Move(ctx context.Context, src, dst string, opts Options) (*Result, error)

	// Copy places a copy of src at dst.
	Copy(ctx context.Context, src, dst string, opts Options) (*Result, error)

	Name() string
}

type Backend int

const (
	// BackendAuto renames when possible and copies across devices.
	BackendAuto Backend = iota
	// BackendNative always copies then removes.
	BackendNative
)

func (b Backend) String() string {
	switch b {
	case BackendAuto:
		return "auto"
	case BackendNative:
		return "native"
	default:
		return "unknown"
	}
}

const defaultBufferSize = 4 * 1024 * 1024

func New(backend Backend) (Transferer, error) {
	switch backend {
	case BackendNative:
		return NewNativeTransferer(defaultBufferSize), nil
	case BackendAuto:
		return NewRenameTransferer(NewNativeTransferer(defaultBufferSize)), nil
	default:
		return nil, fmt.Errorf("unknown transfer backend %d", backend)
	}
}

func ParseBackend(s string) Backend {
	switch s {
	case "native":
		return BackendNative
	default:
		return BackendAuto
	}
}

// checkClobber returns ErrDestinationExists when opts forbid replacing dst.
func checkClobber(dst string, opts Options) error {
	if !opts.NoClobber {
		return nil
	}
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
	}
	return nil
}
