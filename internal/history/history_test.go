package history_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/caiomaz/ovoscan/internal/classify"
	"github.com/caiomaz/ovoscan/internal/history"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesHeaderOnce(t *testing.T) {
	pathname := filepath.Join(t.TempDir(), "results.csv")

	_, err := history.New(pathname)
	require.NoError(t, err)

	content, err := os.ReadFile(pathname)
	require.NoError(t, err)
	assert.Equal(t, "processed_at,image_path,label\n", string(content))

	// reopening an existing file must not add another header
	_, err = history.New(pathname)
	require.NoError(t, err)

	content, err = os.ReadFile(pathname)
	require.NoError(t, err)
	assert.Equal(t, "processed_at,image_path,label\n", string(content))
}

func TestAppendKeepsRowsInOrder(t *testing.T) {
	pathname := filepath.Join(t.TempDir(), "results.csv")

	logger, err := history.New(pathname)
	require.NoError(t, err)

	require.NoError(t, logger.Append(classify.Result{Label: "Ovo Mole", Distance: 1.5, Path: "/tmp/a.png"}))
	require.NoError(t, logger.Append(classify.Result{Label: "Ovo Passado", Distance: 0.2, Path: "/tmp/b.png"}))

	rows, err := logger.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Ovo Mole", rows[0].Label)
	assert.Equal(t, "Ovo Passado", rows[1].Label)

	for _, row := range rows {
		_, err := time.Parse("2006-01-02 15:04:05", row.ProcessedAt)
		assert.NoError(t, err)
	}
}

func TestReadAllMissingFileIsEmptyHistory(t *testing.T) {
	pathname := filepath.Join(t.TempDir(), "results.csv")
	logger, err := history.New(pathname)
	require.NoError(t, err)

	require.NoError(t, os.Remove(pathname))

	rows, err := logger.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAppendEmitsEvent(t *testing.T) {
	logger, err := history.New(filepath.Join(t.TempDir(), "results.csv"))
	require.NoError(t, err)

	watcher := history.Events.Watch()
	defer watcher.Stop()

	require.NoError(t, logger.Append(classify.Result{Label: "Ovo ao Ponto", Path: "/tmp/c.png"}))

	select {
	case ev := <-watcher.Ch:
		change := ev.(history.ChangeEvent)
		assert.Equal(t, "Ovo ao Ponto", change.Row.Label)
	case <-time.After(time.Second):
		t.Fatal("no event emitted for appended row")
	}
}
