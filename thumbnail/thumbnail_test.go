package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-avatars/pkg/types"
)

func TestRenditionKey(t *testing.T) {
	key := RenditionKey("avatars/u1/face.png", 80)
	require.Equal(t, "avatars/u1/resized/80/face.png", key)

	key = RenditionKey("face.jpg", 128)
	require.Equal(t, "resized/128/face.jpg", key)
}

func TestRendererGeneratesAndCaches(t *testing.T) {
	files := newMemStore()
	files.files["avatars/u1/face.png"] = testPNG(t, 200, 100)

	r, err := NewRenderer(Config{Files: files})
	require.NoError(t, err)

	avatar := types.Avatar{ID: uuid.New(), StorageKey: "avatars/u1/face.png"}
	url, err := r.RenditionURL(context.Background(), avatar, 80)
	require.NoError(t, err)
	require.Equal(t, "/static/avatars/u1/resized/80/face.png", url)

	data, ok := files.files["avatars/u1/resized/80/face.png"]
	require.True(t, ok, "rendition must be cached back into the store")

	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 80, img.Bounds().Dx())
	require.Equal(t, 80, img.Bounds().Dy())

	// second call hits the cache, no regeneration
	saves := files.saves
	_, err = r.RenditionURL(context.Background(), avatar, 80)
	require.NoError(t, err)
	require.Equal(t, saves, files.saves)
}

func TestRendererDefaultsSize(t *testing.T) {
	files := newMemStore()
	files.files["a.png"] = testPNG(t, 100, 100)

	r, err := NewRenderer(Config{Files: files})
	require.NoError(t, err)

	url, err := r.RenditionURL(context.Background(), types.Avatar{StorageKey: "a.png"}, 0)
	require.NoError(t, err)
	require.Equal(t, "/static/resized/80/a.png", url)
}

func TestRendererMissingOriginal(t *testing.T) {
	r, err := NewRenderer(Config{Files: newMemStore()})
	require.NoError(t, err)

	_, err = r.RenditionURL(context.Background(), types.Avatar{StorageKey: "gone.png"}, 80)
	require.Error(t, err)
}

func TestRendererRejectsNonImage(t *testing.T) {
	files := newMemStore()
	files.files["a.png"] = []byte("not an image")

	r, err := NewRenderer(Config{Files: files})
	require.NoError(t, err)

	_, err = r.RenditionURL(context.Background(), types.Avatar{StorageKey: "a.png"}, 80)
	require.Error(t, err)
}

func TestInvalidateRemovesRenditions(t *testing.T) {
	files := newMemStore()
	files.files["avatars/u1/face.png"] = testPNG(t, 100, 100)

	r, err := NewRenderer(Config{Files: files})
	require.NoError(t, err)

	avatar := types.Avatar{StorageKey: "avatars/u1/face.png"}
	_, err = r.RenditionURL(context.Background(), avatar, 80)
	require.NoError(t, err)
	require.Contains(t, files.files, "avatars/u1/resized/80/face.png")

	require.NoError(t, r.Invalidate(context.Background(), avatar, 80))
	require.NotContains(t, files.files, "avatars/u1/resized/80/face.png")
	require.Contains(t, files.files, "avatars/u1/face.png", "invalidation must not touch the original")
}

func TestNewRendererRequiresFiles(t *testing.T) {
	_, err := NewRenderer(Config{})
	require.ErrorIs(t, err, types.ErrMissingFileStore)
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 0x33, A: 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type memStore struct {
	files map[string][]byte
	saves int
}

func newMemStore() *memStore {
	return &memStore{files: map[string][]byte{}}
}

func (m *memStore) Save(_ context.Context, key string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.files[key] = data
	m.saves++
	return nil
}

func (m *memStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.files[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.files[key]
	return ok, nil
}

func (m *memStore) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.files, key)
	}
	return nil
}

func (m *memStore) URL(key string) string {
	return "/static/" + key
}
