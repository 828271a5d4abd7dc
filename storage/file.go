package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

const fileExt = ".json"

// FileStore keeps each save as <dir>/<name>.json.
type FileStore struct {
	dir string
	log *slog.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates dir if needed.
func NewFileStore(dir string, log *slog.Logger) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("save directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating save directory %s", dir)
	}
	if log == nil {
		log = slog.Default()
	}
	return &FileStore{dir: dir, log: log}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+fileExt)
}

// Put writes through a temporary file so a crash never leaves a torn save.
func (s *FileStore) Put(ctx context.Context, name string, data []byte) error {
	if err := CheckName(name); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "writing save %s", name)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "writing save %s", name)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "writing save %s", name)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return errors.Wrapf(err, "writing save %s", name)
	}
	s.log.Debug("save written", "backend", BackendFile, "name", name, "bytes", len(data))
	return nil
}

func (s *FileStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrapf(ErrNotFound, "%s", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading save %s", name)
	}
	s.log.Debug("save read", "backend", BackendFile, "name", name, "bytes", len(data))
	return data, nil
}

func (s *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "listing saves in %s", s.dir)
	}
	names := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), fileExt))
	}
	sort.Strings(names)
	return names, nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := CheckName(name); err != nil {
		return err
	}
	err := os.Remove(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(ErrNotFound, "%s", name)
	}
	if err != nil {
		return errors.Wrapf(err, "deleting save %s", name)
	}
	s.log.Debug("save deleted", "backend", BackendFile, "name", name)
	return nil
}

func (s *FileStore) Close() error { return nil }
