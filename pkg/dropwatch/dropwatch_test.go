package dropwatch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/caiomaz/ovoscan/pkg/dropwatch"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestWatchReportsDroppedFile(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handled := make(chan string, 1)
	watcher := &dropwatch.Watcher{Handle: func(pathname string) {
		handled <- pathname
	}}

	nop := zerolog.Nop()
	require.NoError(t, watcher.Watch(ctx, &nop, dir))

	dropped := filepath.Join(dir, "egg.png")
	require.NoError(t, os.WriteFile(dropped, []byte("payload"), 0644))

	select {
	case pathname := <-handled:
		require.Equal(t, dropped, pathname)
	case <-time.After(5 * time.Second):
		t.Fatal("dropped file was never reported")
	}
}

func TestWatchMissingDir(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	nop := zerolog.Nop()
	watcher := &dropwatch.Watcher{Handle: func(string) {}}
	err := watcher.Watch(ctx, &nop, filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
