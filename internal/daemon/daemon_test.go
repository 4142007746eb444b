package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/watcher"
)

func TestDaemonRun_OrganizesNewFilesUntilCancelled(t *testing.T) {
	dir := t.TempDir()
	org := &fakeOrganizer{}
	h, err := NewMediaHandler(HandlerConfig{Organizer: org, SettleDelay: 20 * time.Millisecond})
	require.NoError(t, err)

	w, err := watcher.New(h)
	require.NoError(t, err)
	require.NoError(t, w.Watch([]string{dir}))

	d := NewDaemon(w, h, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	path := filepath.Join(dir, "Some.Movie.2019.1080p.mkv")
	require.NoError(t, os.WriteFile(path, []byte("video"), 0644))

	assert.Eventually(t, func() bool {
		for _, p := range org.called() {
			if p == path {
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
}
