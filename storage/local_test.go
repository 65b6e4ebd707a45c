package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := NewLocalStore(LocalConfig{Root: t.TempDir(), BaseURL: "/media/"})
	require.NoError(t, err)

	ctx := context.Background()
	key := "avatars/u1/face.png"
	require.NoError(t, store.Save(ctx, key, strings.NewReader("image-bytes")))

	ok, err := store.Exists(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)

	r, err := store.Open(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.Equal(t, "image-bytes", string(data))

	require.Equal(t, "/media/avatars/u1/face.png", store.URL(key))
}

func TestLocalStoreSaveOverwrites(t *testing.T) {
	store, err := NewLocalStore(LocalConfig{Root: t.TempDir()})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "a.png", strings.NewReader("first")))
	require.NoError(t, store.Save(ctx, "a.png", strings.NewReader("second")))

	r, err := store.Open(ctx, "a.png")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.Equal(t, "second", string(data))
}

func TestLocalStoreExistsMissing(t *testing.T) {
	store, err := NewLocalStore(LocalConfig{Root: t.TempDir()})
	require.NoError(t, err)

	ok, err := store.Exists(context.Background(), "nope.png")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLocalStoreDelete(t *testing.T) {
	store, err := NewLocalStore(LocalConfig{Root: t.TempDir()})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "a.png", strings.NewReader("x")))
	require.NoError(t, store.Save(ctx, "b.png", strings.NewReader("y")))

	require.NoError(t, store.Delete(ctx, "a.png", "b.png", "missing.png"))

	ok, err := store.Exists(ctx, "a.png")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLocalStoreOpenMissingIsUnavailable(t *testing.T) {
	store, err := NewLocalStore(LocalConfig{Root: t.TempDir()})
	require.NoError(t, err)

	_, err = store.Open(context.Background(), "nope.png")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestLocalStoreKeyTraversalStaysUnderRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(LocalConfig{Root: root})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "../escape.png", strings.NewReader("x")))

	_, err = os.Stat(filepath.Join(root, "escape.png"))
	require.NoError(t, err, "cleaned key must land inside the root")
	_, err = os.Stat(filepath.Join(filepath.Dir(root), "escape.png"))
	require.Error(t, err)
}

func TestLocalStoreRequiresRoot(t *testing.T) {
	_, err := NewLocalStore(LocalConfig{})
	require.Error(t, err)
}
