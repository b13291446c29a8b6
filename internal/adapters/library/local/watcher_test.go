package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, root string) *Watcher {
	t.Helper()
	w, err := NewWatcher(root, 50*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		w.Close()
	})
	return w
}

func waitChange(t *testing.T, w *Watcher) Change {
	t.Helper()
	select {
	case c := <-w.Changes():
		return c
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
		return Change{}
	}
}

func TestWatcher_CoalescesBurst(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("x"), 0o644))
	}

	c := waitChange(t, w)
	assert.GreaterOrEqual(t, c.Events, 3)

	select {
	case extra := <-w.Changes():
		t.Fatalf("unexpected second change: %+v", extra)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_IgnoresHiddenFiles(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, ".DS_Store"), []byte("x"), 0o644))

	select {
	case c := <-w.Changes():
		t.Fatalf("hidden file produced a change: %+v", c)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	sub := filepath.Join(root, "2024")
	require.NoError(t, os.Mkdir(sub, 0o755))
	waitChange(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(sub, "IMG_0001.jpg"), []byte("x"), 0o644))
	c := waitChange(t, w)
	assert.Equal(t, filepath.Join(sub, "IMG_0001.jpg"), c.Last)
}

func TestWatcher_DefaultDebounce(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), 0)
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, DefaultDebounce, w.debounce)
}
