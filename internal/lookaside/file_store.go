package lookaside

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/coder4567/nwf-provider-license-api-1/internal/license"
)

// FileStore keeps one <id>.json file per license in a single directory
type FileStore struct {
	dir    string
	logger *slog.Logger
}

// NewFileStore creates the store and its directory
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	return &FileStore{
		dir:    dir,
		logger: logger.With(slog.String("component", "file_store")),
	}, nil
}

// Dir returns the store directory
func (s *FileStore) Dir() string {
	return s.dir
}

// Get reads <dir>/<id>.json
func (s *FileStore) Get(ctx context.Context, id string) ([]byte, bool, error) {
	if !license.ValidKey(id) {
		return nil, false, nil
	}

	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read license %s: %w", id, err)
	}

	return data, true, nil
}

// Put writes doc to a temp file in the store directory and renames it over
// <id>.json, so readers see either the old or the new document.
func (s *FileStore) Put(ctx context.Context, id string, doc []byte) error {
	if !license.ValidKey(id) {
		return ErrInvalidKey
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := writeAndClose(tmp, doc); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write license %s: %w", id, err)
	}

	if err := os.Rename(tmpPath, s.path(id)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace license %s: %w", id, err)
	}

	s.logger.DebugContext(ctx, "License stored",
		slog.String("license_id", id),
		slog.Int("bytes", len(doc)))

	return nil
}

func writeAndClose(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Chmod(0644); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, objectName(id))
}
