package cache

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// FileBackend stores a snapshot as a JSON file, rewritten in full on every
// save through a temp file and rename.
type FileBackend struct {
	path string
}

// NewFileBackend returns a backend writing <dir>/<name>.json.
func NewFileBackend(dir, name string) *FileBackend {
	return &FileBackend{path: filepath.Join(dir, name+".json")}
}

// Path returns the snapshot file location.
func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "cache file: read %s", b.path)
	}
	return data, nil
}

func (b *FileBackend) Save(_ context.Context, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return eris.Wrapf(err, "cache file: mkdir %s", filepath.Dir(b.path))
	}

	tmp := b.path + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return eris.Wrapf(err, "cache file: write %s", tmp)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		_ = os.Remove(tmp)
		return eris.Wrapf(err, "cache file: rename %s", tmp)
	}
	return nil
}
