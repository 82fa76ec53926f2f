package cache

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"
)

// DefaultFilePath is the cache file used when no path is configured.
const DefaultFilePath = "cache.json"

// FilePersister keeps the cache in a single JSON file.
type FilePersister struct {
	path string
}

// NewFilePersister creates a persister for the file at path.
func NewFilePersister(path string) *FilePersister {
	if path == "" {
		path = DefaultFilePath
	}
	return &FilePersister{path: filepath.Clean(path)}
}

// Path returns the cache file location.
func (p *FilePersister) Path() string {
	return p.path
}

// Load reads the cache file. A missing or empty file is an empty cache.
func (p *FilePersister) Load(_ context.Context) (map[string]Entry, error) {
	data, err := os.ReadFile(p.path) // #nosec G304 - path is user configuration
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]Entry), nil
		}
		return nil, zerr.With(zerr.Wrap(err, "read cache file"), "path", p.path)
	}

	entries, err := decodeEntries(data)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "decode cache file"), "path", p.path)
	}
	return entries, nil
}

// Save rewrites the whole file. The data goes to a temporary file in the same
// directory first and is renamed over the target.
func (p *FilePersister) Save(_ context.Context, entries map[string]Entry) error {
	data, err := encodeEntries(entries)
	if err != nil {
		return zerr.Wrap(err, "encode cache")
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return zerr.With(zerr.Wrap(err, "create cache dir"), "dir", dir)
	}

	tmp, err := os.CreateTemp(dir, ".cache-*.tmp")
	if err != nil {
		return zerr.With(zerr.Wrap(err, "create temp file"), "dir", dir)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(err, "write cache file"), "path", tmpName)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(err, "chmod cache file"), "path", tmpName)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "close cache file"), "path", tmpName)
	}

	if err := os.Rename(tmpName, p.path); err != nil {
		return zerr.With(zerr.Wrap(err, "replace cache file"), "path", p.path)
	}
	return nil
}

// Verify FilePersister implements Persister
var _ Persister = (*FilePersister)(nil)
