package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherFiresOnChangeAfterWrite(t *testing.T) {
	dir := t.TempDir()
	fired := make(chan struct{}, 1)

	w := NewWatcher(dir, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	w.debounce = 20 * time.Millisecond
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.py"), []byte("x = 1\n"), 0o644))

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("onChange was not called after file write")
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher(dir, func() {})
	require.NoError(t, w.Start())
	w.Stop()
	require.NotPanics(t, func() { w.Stop() })
}
