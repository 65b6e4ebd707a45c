// Package thumbnail generates resized avatar renditions on demand and caches
// them back into the file store alongside the originals.
package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/disintegration/imaging"
	"github.com/goliatone/go-avatars/pkg/types"
)

// Config wires the renderer.
type Config struct {
	Files  types.FileStore
	Logger types.Logger
}

// Renderer produces square renditions with imaging.Fill and stores them under
// a size-scoped key next to the original.
type Renderer struct {
	files  types.FileStore
	logger types.Logger
}

var _ types.ThumbnailRenderer = (*Renderer)(nil)

// NewRenderer builds a Renderer. Files is required.
func NewRenderer(cfg Config) (*Renderer, error) {
	if cfg.Files == nil {
		return nil, types.ErrMissingFileStore
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Renderer{files: cfg.Files, logger: logger}, nil
}

// RenditionKey returns the cache key for a rendition of the stored blob at
// the given size, e.g. avatars/<user>/resized/80/<file>.
func RenditionKey(storageKey string, size int) string {
	dir, file := path.Split(storageKey)
	return path.Join(dir, "resized", fmt.Sprintf("%d", size), file)
}

// RenditionURL returns the public URL of the avatar resized to size x size,
// generating and caching the rendition on first request.
func (r *Renderer) RenditionURL(ctx context.Context, avatar types.Avatar, size int) (string, error) {
	if size <= 0 {
		size = types.DefaultSize
	}

	key := RenditionKey(avatar.StorageKey, size)
	exists, err := r.files.Exists(ctx, key)
	if err != nil {
		return "", err
	}
	if exists {
		return r.files.URL(key), nil
	}

	if err := r.generate(ctx, avatar.StorageKey, key, size); err != nil {
		return "", err
	}
	return r.files.URL(key), nil
}

// Invalidate removes cached renditions for the given sizes. Missing
// renditions are not an error.
func (r *Renderer) Invalidate(ctx context.Context, avatar types.Avatar, sizes ...int) error {
	if len(sizes) == 0 {
		return nil
	}
	keys := make([]string, 0, len(sizes))
	for _, size := range sizes {
		keys = append(keys, RenditionKey(avatar.StorageKey, size))
	}
	return r.files.Delete(ctx, keys...)
}

func (r *Renderer) generate(ctx context.Context, srcKey, dstKey string, size int) error {
	src, err := r.files.Open(ctx, srcKey)
	if err != nil {
		return err
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("thumbnail: decode %s: %w", srcKey, err)
	}

	resized := imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)

	format, err := imaging.FormatFromFilename(dstKey)
	if err != nil {
		format = imaging.PNG
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format); err != nil {
		return fmt.Errorf("thumbnail: encode %s: %w", dstKey, err)
	}

	if err := r.files.Save(ctx, dstKey, &buf); err != nil {
		return err
	}

	r.logger.Debug("rendition generated", "key", dstKey, "size", size)
	return nil
}
