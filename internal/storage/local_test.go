package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	n, err := store.Save(context.Background(), "abc.webm", strings.NewReader("webm-bytes"))
	require.NoError(t, err)
	assert.Equal(t, int64(len("webm-bytes")), n)

	data, err := os.ReadFile(filepath.Join(dir, "abc.webm"))
	require.NoError(t, err)
	assert.Equal(t, "webm-bytes", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")

	require.NoError(t, store.Delete(context.Background(), "abc.webm"))
	_, err = os.Stat(filepath.Join(dir, "abc.webm"))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	require.NoError(t, store.Delete(context.Background(), "abc.webm"))
}

func TestSaveRejectsPathNames(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "..", "../escape.webm", "nested/x.webm"} {
		_, err := store.Save(context.Background(), name, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
}

func TestSaveCancelledContext(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Save(ctx, "abc.webm", strings.NewReader("data"))
	require.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(filepath.Join(dir, "abc.webm"))
	assert.True(t, os.IsNotExist(statErr))
}
