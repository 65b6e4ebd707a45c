package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-avatars/pkg/types"
)

// LocalConfig wires the disk-backed store.
type LocalConfig struct {
	// Root is the directory all keys resolve under.
	Root string
	// BaseURL prefixes public URLs, e.g. "/media" or a CDN origin.
	BaseURL string
}

// LocalStore persists blobs on the local filesystem. Keys are slash-separated
// relative paths; the public URL is BaseURL + "/" + key, matching a static
// file route mounted on Root.
type LocalStore struct {
	root    string
	baseURL string
}

var _ types.FileStore = (*LocalStore)(nil)

// NewLocalStore constructs a disk-backed store rooted at cfg.Root.
func NewLocalStore(cfg LocalConfig) (*LocalStore, error) {
	if cfg.Root == "" {
		return nil, errors.New("storage: local root required")
	}
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, Unavailable(err)
	}
	return &LocalStore{
		root:    cfg.Root,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

// Save writes the blob, creating parent directories as needed.
func (s *LocalStore) Save(_ context.Context, key string, r io.Reader) error {
	full := s.path(key)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return Unavailable(err)
	}
	f, err := os.Create(full)
	if err != nil {
		return Unavailable(err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return Unavailable(err)
	}
	if err := f.Close(); err != nil {
		return Unavailable(err)
	}
	return nil
}

// Open returns a reader over the stored blob.
func (s *LocalStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(key))
	if err != nil {
		return nil, Unavailable(err)
	}
	return f, nil
}

// Exists reports whether the key is stored.
func (s *LocalStore) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(s.path(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, Unavailable(err)
}

// Delete removes the given keys. Missing keys are ignored.
func (s *LocalStore) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Unavailable(err)
		}
	}
	return nil
}

// URL returns the public URL for the key.
func (s *LocalStore) URL(key string) string {
	return s.baseURL + "/" + strings.TrimPrefix(path.Join("/", key), "/")
}

// path resolves a key under the root. Rooting the clean at "/" drops any
// leading ".." segments so keys cannot escape.
func (s *LocalStore) path(key string) string {
	clean := strings.TrimPrefix(path.Join("/", key), "/")
	return filepath.Join(s.root, filepath.FromSlash(clean))
}
