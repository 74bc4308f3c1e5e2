package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_SaveReadDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore("http://localhost:5001/", t.TempDir())
	require.NoError(t, err)

	key := "protocols/r1/handover/photo-1.jpg"
	n, err := store.SaveFile(ctx, key, strings.NewReader("jpegdata"))
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)

	exists, size, err := store.FileExists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, int64(8), size)

	rc, err := store.ReadFile(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "jpegdata", string(data))

	require.NoError(t, store.DeleteFile(ctx, key))
	_, err = store.ReadFile(ctx, key)
	assert.ErrorIs(t, err, ErrFileNotFound)

	// deleting twice is fine
	assert.NoError(t, store.DeleteFile(ctx, key))
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore("http://localhost:5001", t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../etc/passwd", "protocols/../../x", "/"} {
		_, err := store.SaveFile(ctx, key, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestLocalStore_Purge(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore("http://localhost:5001", t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"a/1.jpg", "a/2.jpg", "b/c/3.pdf"} {
		_, err := store.SaveFile(ctx, key, strings.NewReader("x"))
		require.NoError(t, err)
	}

	removed, err := store.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	exists, _, err := store.FileExists(ctx, "a/1.jpg")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStore_PublicURL(t *testing.T) {
	store, err := NewLocalStore("http://localhost:5001/", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5001/api/files/download?key=protocols%2Fr1%2Fa.jpg", store.PublicURL("protocols/r1/a.jpg"))
}
