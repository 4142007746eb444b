package transfer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNew(t *testing.T) {
	tr, err := New(BackendAuto)
	require.NoError(t, err)
	assert.Equal(t, "rename+native", tr.Name())

	tr, err = New(BackendNative)
	require.NoError(t, err)
	assert.Equal(t, "native", tr.Name())

	_, err = New(Backend(42))
	assert.Error(t, err)
}

func TestParseBackend(t *testing.T) {
	assert.Equal(t, BackendNative, ParseBackend("native"))
	assert.Equal(t, BackendAuto, ParseBackend("auto"))
	assert.Equal(t, BackendAuto, ParseBackend(""))
	assert.Equal(t, "native", BackendNative.String())
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 5*time.Minute, opts.Timeout)
	assert.True(t, opts.NoClobber)
	assert.Equal(t, -1, opts.TargetUID)
	assert.Equal(t, os.FileMode(0755), opts.dirMode())
}

func TestRenameMove_SameDevice(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in", "movie.mkv")
	dst := filepath.Join(dir, "lib", "Movie (2010)", "Movie (2010).mkv")
	writeFile(t, src, "video bytes")

	tr, err := New(BackendAuto)
	require.NoError(t, err)

	res, err := tr.Move(context.Background(), src, dst, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.Renamed)
	assert.True(t, res.SourceRemoved)
	assert.Equal(t, int64(len("video bytes")), res.BytesTotal)

	assert.NoFileExists(t, src)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "video bytes", string(data))
}

func TestMove_NoClobber(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.mkv")
	dst := filepath.Join(dir, "b.mkv")
	writeFile(t, src, "new")
	writeFile(t, dst, "old")

	for _, backend := range []Backend{BackendAuto, BackendNative} {
		tr, err := New(backend)
		require.NoError(t, err)

		_, err = tr.Move(context.Background(), src, dst, DefaultOptions())
		assert.ErrorIs(t, err, ErrDestinationExists, backend.String())
	}

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
	assert.FileExists(t, src)
}

func TestMove_SourceNotFound(t *testing.T) {
	dir := t.TempDir()
	tr, err := New(BackendAuto)
	require.NoError(t, err)

	_, err = tr.Move(context.Background(), filepath.Join(dir, "missing.mkv"), filepath.Join(dir, "out.mkv"), DefaultOptions())
	assert.ErrorIs(t, err, ErrSourceNotFound)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = NewNativeTransferer(0).Copy(context.Background(), filepath.Join(dir, "missing.mkv"), filepath.Join(dir, "out.mkv"), DefaultOptions())
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestMove_PermissionFailureKeepsMove(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("chown always succeeds as root")
	}
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.TargetUID = 0
	opts.TargetGID = 0

	for name, tr := range map[string]Transferer{
		"rename": NewRenameTransferer(NewNativeTransferer(0)),
		"native": NewNativeTransferer(0),
	} {
		t.Run(name, func(t *testing.T) {
			src := filepath.Join(dir, name+".mkv")
			dst := filepath.Join(dir, "out", name+".mkv")
			writeFile(t, src, "data")

			res, err := tr.Move(context.Background(), src, dst, opts)
			require.NoError(t, err)
			assert.True(t, res.Success)
			assert.Error(t, res.PermissionError)
			assert.FileExists(t, dst)
			assert.NoFileExists(t, src)
		})
	}
}

func TestMove_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.mkv")
	writeFile(t, src, "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr, err := New(BackendAuto)
	require.NoError(t, err)
	_, err = tr.Move(ctx, src, filepath.Join(dir, "b.mkv"), DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
	assert.FileExists(t, src)
}

func TestNativeCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "source.txt")
	dst := filepath.Join(dir, "nested", "dest.txt")
	writeFile(t, src, "test content for transfer")

	var progressCalls int
	opts := DefaultOptions()
	opts.Timeout = 30 * time.Second
	opts.Progress = func(current, total int64) { progressCalls++ }

	res, err := NewNativeTransferer(8).Copy(context.Background(), src, dst, opts)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.False(t, res.Renamed)
	assert.Equal(t, int64(len("test content for transfer")), res.BytesCopied)
	assert.Equal(t, 1, res.Attempts)
	assert.Greater(t, progressCalls, 1)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "test content for transfer", string(data))
	assert.FileExists(t, src)
	assert.NoFileExists(t, dst+partialSuffix)
}

func TestNativeMove(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "source.txt")
	dst := filepath.Join(dir, "dest.txt")
	writeFile(t, src, "test content for move")

	res, err := NewNativeTransferer(0).Move(context.Background(), src, dst, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.SourceRemoved)
	assert.NoFileExists(t, src)
	assert.FileExists(t, dst)
}

func TestApplyPermissions_FileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	writeFile(t, path, "x")

	opts := DefaultOptions()
	opts.FileMode = 0600
	require.NoError(t, ApplyPermissions(path, opts))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestCheckDiskHealth(t *testing.T) {
	health, err := CheckDiskHealth(t.TempDir(), 5*time.Second)
	require.NoError(t, err)
	assert.True(t, health.IsHealthy(), "%+v", health)
	assert.Greater(t, health.SpaceTotal, int64(0))
}

func TestCheckDiskHealth_Missing(t *testing.T) {
	health, err := CheckDiskHealth(filepath.Join(t.TempDir(), "gone"), time.Second)
	assert.Error(t, err)
	assert.False(t, health.Accessible)
}

func TestCheckDiskHealthForTransfer_InsufficientSpace(t *testing.T) {
	dir := t.TempDir()
	err := CheckDiskHealthForTransfer(filepath.Join(dir, "a"), filepath.Join(dir, "b"), 5*time.Second, 1<<62)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient space")
}

func TestStatWithTimeout(t *testing.T) {
	info, err := StatWithTimeout(os.TempDir(), 5*time.Second)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWithTimeout_GivesUp(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	_, err := withTimeout(context.Background(), 10*time.Millisecond, "slow op", func() (int, error) {
		<-block
		return 1, nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slow op timed out")
}
