package transfer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"
)

// partialSuffix marks a copy in progress; the file is renamed into place when complete.
const partialSuffix = ".partial"

// NativeTransferer copies with a progress watchdog.
type NativeTransferer struct {
	bufferSize int
}

func NewNativeTransferer(bufferSize int) *NativeTransferer {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &NativeTransferer{bufferSize: bufferSize}
}

func (n *NativeTransferer) Name() string {
	return "native"
}

func (n *NativeTransferer) Move(ctx context.Context, src, dst string, opts Options) (*Result, error) {
	result, err := n.Copy(ctx, src, dst, opts)
	if err != nil {
		return result, err
	}

	// The copy is complete and in place, so a stuck source removal is not a failure.
	if err := RemoveWithTimeout(src, 30*time.Second); err != nil {
		result.SourceRemoved = false
		return result, nil
	}
	result.SourceRemoved = true
	return result, nil
}

func (n *NativeTransferer) Copy(ctx context.Context, src, dst string, opts Options) (*Result, error) {
	result := &Result{}
	startTime := time.Now()

	srcInfo, err := StatWithTimeout(src, 10*time.Second)
	if err != nil {
		result.Error = fmt.Errorf("%w: %w", ErrSourceNotFound, err)
		return result, result.Error
	}
	result.BytesTotal = srcInfo.Size()

	if err := checkClobber(dst, opts); err != nil {
		result.Error = err
		return result, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), opts.dirMode()); err != nil {
		result.Error = fmt.Errorf("%w: %w", ErrDestinationNotWritable, err)
		return result, result.Error
	}

	if err := CheckDiskHealthForTransfer(src, dst, 5*time.Second, result.BytesTotal); err != nil {
		result.Error = fmt.Errorf("%w: %w", ErrDiskUnhealthy, err)
		return result, result.Error
	}

	maxAttempts := opts.RetryAttempts + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	partial := dst + partialSuffix
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result.Attempts = attempt

		bytesCopied, err := n.copyFile(ctx, src, partial, srcInfo, opts)
		if err == nil {
			err = os.Rename(partial, dst)
		}
		if err == nil {
			result.Success = true
			result.BytesCopied = bytesCopied
			result.Duration = time.Since(startTime)
			result.PermissionError = ApplyPermissions(dst, opts)
			return result, nil
		}

		lastErr = err
		os.Remove(partial)

		if ctx.Err() != nil || attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
		case <-time.After(opts.RetryDelay):
		}
	}

	result.Error = fmt.Errorf("%w: %w", ErrRetryExhausted, lastErr)
	result.Duration = time.Since(startTime)
	return result, result.Error
}

func (n *NativeTransferer) copyFile(parent context.Context, src, dst string, srcInfo os.FileInfo, opts Options) (int64, error) {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Minute
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	srcFile, err := OpenWithTimeout(src, os.O_RDONLY, 0, 10*time.Second)
	if err != nil {
		return 0, fmt.Errorf("failed to open source: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := OpenWithTimeout(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm(), 10*time.Second)
	if err != nil {
		return 0, fmt.Errorf("failed to create destination: %w", err)
	}
	defer dstFile.Close()

	var bytesCopied int64
	var lastProgress atomic.Int64
	lastProgress.Store(time.Now().UnixNano())
	var stalled atomic.Bool

	go func() {
		ticker := time.NewTicker(timeout / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if time.Since(time.Unix(0, lastProgress.Load())) > timeout {
					stalled.Store(true)
					cancel()
					return
				}
			}
		}
	}()

	buf := make([]byte, n.bufferSize)
	totalSize := srcInfo.Size()

	for {
		if ctx.Err() != nil {
			if stalled.Load() {
				return bytesCopied, fmt.Errorf("%w: no progress for %s", ErrTimeout, timeout)
			}
			return bytesCopied, parent.Err()
		}

		nr, readErr := srcFile.Read(buf)
		if nr > 0 {
			nw, writeErr := dstFile.Write(buf[:nr])
			if nw > 0 {
				bytesCopied += int64(nw)
				lastProgress.Store(time.Now().UnixNano())
				if opts.Progress != nil {
					opts.Progress(bytesCopied, totalSize)
				}
			}
			if writeErr != nil {
				return bytesCopied, fmt.Errorf("write error: %w", writeErr)
			}
			if nr != nw {
				return bytesCopied, fmt.Errorf("short write: %d != %d", nr, nw)
			}
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return bytesCopied, fmt.Errorf("read error: %w", readErr)
		}
	}

	if err := dstFile.Sync(); err != nil {
		return bytesCopied, fmt.Errorf("sync error: %w", err)
	}
	return bytesCopied, nil
}
