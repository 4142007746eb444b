package organizer

import (
	"context"
	"os"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/logging"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/transfer"
)

// FileSystem is everything the organizer does to disk. Errors are reported as returned.
type FileSystem interface {
	Exists(path string) bool
	Move(ctx context.Context, src, dst string) error
	MkdirAll(path string) error
	WriteFile(path string, data []byte) error
}

// OSFileSystem moves through a transfer.Transferer: a rename on the same device and a
// watched copy across devices.
type OSFileSystem struct {
	transferer transfer.Transferer
	opts       transfer.Options
	logger     *logging.Logger
}

var _ FileSystem = (*OSFileSystem)(nil)

// NewOSFileSystem uses the auto backend with opts.
func NewOSFileSystem(opts transfer.Options) *OSFileSystem {
	t, err := transfer.New(transfer.BackendAuto)
	if err != nil {
		t = transfer.NewNativeTransferer(0)
	}
	return &OSFileSystem{transferer: t, opts: opts, logger: logging.Nop()}
}

// SetLogger receives warnings about moves that succeeded only in part.
func (fs *OSFileSystem) SetLogger(l *logging.Logger) {
	if l != nil {
		fs.logger = l
	}
}

func (fs *OSFileSystem) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func (fs *OSFileSystem) Move(ctx context.Context, src, dst string) error {
	result, err := fs.transferer.Move(ctx, src, dst, fs.opts)
	if err != nil {
		return err
	}
	if result != nil && result.PermissionError != nil {
		fs.logger.Warn("organizer", "Moved file but could not apply permissions",
			logging.F("path", dst),
			logging.F("error", result.PermissionError.Error()))
	}
	return nil
}

func (fs *OSFileSystem) MkdirAll(path string) error {
	mode := fs.opts.DirMode
	if mode == 0 {
		mode = 0755
	}
	return os.MkdirAll(path, mode)
}

func (fs *OSFileSystem) WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	return transfer.ApplyPermissions(path, fs.opts)
}
