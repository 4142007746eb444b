package transfer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// DiskHealth is the outcome of probing a directory before a copy.
type DiskHealth struct {
	Path       string
	Accessible bool
	Writable   bool
	SpaceFree  int64
	SpaceTotal int64
	MountOK    bool
	Error      error
}

func (h *DiskHealth) IsHealthy() bool {
	return h.Accessible && h.Writable && h.MountOK && h.Error == nil
}

// withTimeout runs fn in a goroutine and gives up after timeout. A hung syscall on a
// dying disk leaks that goroutine instead of the caller.
func withTimeout[T any](ctx context.Context, timeout time.Duration, what string, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res.v, res.err
	case <-timer.C:
		var zero T
		return zero, fmt.Errorf("%s timed out after %s (possible I/O hang)", what, timeout)
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// CheckDiskHealth stats path, reads free space and writes a probe file, each under
// timeout.
func CheckDiskHealth(path string, timeout time.Duration) (*DiskHealth, error) {
	health := &DiskHealth{Path: path}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	info, err := withTimeout(ctx, timeout, "stat", func() (os.FileInfo, error) { return os.Stat(path) })
	if err != nil {
		health.Error = fmt.Errorf("stat failed: %w", err)
		return health, health.Error
	}
	health.Accessible = true
	health.MountOK = info.IsDir()

	statfs, err := withTimeout(ctx, timeout, "statfs", func() (syscall.Statfs_t, error) {
		var st syscall.Statfs_t
		err := syscall.Statfs(path, &st)
		return st, err
	})
	if err != nil {
		health.Error = fmt.Errorf("statfs failed: %w", err)
		return health, health.Error
	}
	health.SpaceFree = int64(statfs.Bavail) * int64(statfs.Bsize)
	health.SpaceTotal = int64(statfs.Blocks) * int64(statfs.Bsize)

	probe := filepath.Join(path, fmt.Sprintf(".stellar_health_check_%d", time.Now().UnixNano()))
	_, err = withTimeout(ctx, timeout, "write test", func() (struct{}, error) {
		defer os.Remove(probe)
		return struct{}{}, os.WriteFile(probe, []byte("health check"), 0600)
	})
	health.Writable = err == nil
	if err != nil {
		health.Error = fmt.Errorf("write test failed: %w", err)
	}
	return health, nil
}

// CheckDiskHealthForTransfer verifies both ends of a copy and that the destination has
// room for requiredSpace bytes.
func CheckDiskHealthForTransfer(src, dst string, timeout time.Duration, requiredSpace int64) error {
	srcHealth, err := CheckDiskHealth(filepath.Dir(src), timeout)
	if err != nil && !srcHealth.Accessible {
		return fmt.Errorf("source disk unhealthy: %w", err)
	}

	dstDir := filepath.Dir(dst)
	dstHealth, err := CheckDiskHealth(dstDir, timeout)
	if err != nil {
		return fmt.Errorf("destination disk unhealthy: %w", err)
	}
	if !dstHealth.IsHealthy() {
		return fmt.Errorf("destination disk not healthy: %s (error: %v)", dstDir, dstHealth.Error)
	}

	if requiredSpace > 0 && dstHealth.SpaceFree < requiredSpace {
		return fmt.Errorf("insufficient space: need %d bytes, have %d bytes", requiredSpace, dstHealth.SpaceFree)
	}
	return nil
}

func StatWithTimeout(path string, timeout time.Duration) (os.FileInfo, error) {
	return withTimeout(context.Background(), timeout, "stat "+path, func() (os.FileInfo, error) {
		return os.Stat(path)
	})
}

func OpenWithTimeout(path string, flag int, perm os.FileMode, timeout time.Duration) (*os.File, error) {
	return withTimeout(context.Background(), timeout, "open "+path, func() (*os.File, error) {
		return os.OpenFile(path, flag, perm)
	})
}

func RemoveWithTimeout(path string, timeout time.Duration) error {
	_, err := withTimeout(context.Background(), timeout, "remove "+path, func() (struct{}, error) {
		return struct{}{}, os.Remove(path)
	})
	return err
}
