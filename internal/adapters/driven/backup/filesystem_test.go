package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	store := NewFilesystemStore(dir)

	path, err := store.Write(context.Background(), "offer-1", "K-1001_A-2042_installation.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "offer-1", "K-1001_A-2042_installation.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)
}

func TestWrite_OverwritesExisting(t *testing.T) {
	store := NewFilesystemStore(t.TempDir())
	ctx := context.Background()

	_, err := store.Write(ctx, "offer-1", "doc.pdf", []byte("old"))
	require.NoError(t, err)

	path, err := store.Write(ctx, "offer-1", "doc.pdf", []byte("new"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), data)
}

func TestWrite_SanitizesNames(t *testing.T) {
	dir := t.TempDir()
	store := NewFilesystemStore(dir)

	path, err := store.Write(context.Background(), "../escape", "a/b.pdf", []byte("x"))
	require.NoError(t, err)

	rel, err := filepath.Rel(dir, path)
	require.NoError(t, err)
	assert.False(t, filepath.IsAbs(rel))
	assert.NotContains(t, rel, "..")
}
