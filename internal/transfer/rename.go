package transfer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// RenameTransferer moves with os.Rename and hands cross-device moves to a copying
// backend.
type RenameTransferer struct {
	fallback Transferer
}

func NewRenameTransferer(fallback Transferer) *RenameTransferer {
	return &RenameTransferer{fallback: fallback}
}

func (r *RenameTransferer) Name() string {
	return "rename+" + r.fallback.Name()
}

func (r *RenameTransferer) Copy(ctx context.Context, src, dst string, opts Options) (*Result, error) {
	return r.fallback.Copy(ctx, src, dst, opts)
}

func (r *RenameTransferer) Move(ctx context.Context, src, dst string, opts Options) (*Result, error) {
	result := &Result{Attempts: 1}
	start := time.Now()

	if err := ctx.Err(); err != nil {
		result.Error = err
		return result, err
	}

	info, err := StatWithTimeout(src, 10*time.Second)
	if err != nil {
		result.Error = fmt.Errorf("%w: %w", ErrSourceNotFound, err)
		return result, result.Error
	}
	result.BytesTotal = info.Size()

	if err := checkClobber(dst, opts); err != nil {
		result.Error = err
		return result, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), opts.dirMode()); err != nil {
		result.Error = fmt.Errorf("%w: %w", ErrDestinationNotWritable, err)
		return result, result.Error
	}

	err = os.Rename(src, dst)
	if errors.Is(err, syscall.EXDEV) {
		return r.fallback.Move(ctx, src, dst, opts)
	}
	if err != nil {
		result.Error = fmt.Errorf("rename %s: %w", filepath.Base(src), err)
		return result, result.Error
	}

	result.Success = true
	result.Renamed = true
	result.SourceRemoved = true
	result.Duration = time.Since(start)

	// The file has arrived; wrong ownership is reported but does not undo the move.
	result.PermissionError = ApplyPermissions(dst, opts)
	return result, nil
}
