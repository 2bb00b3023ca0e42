package download

import (
	"io"
	"os"
	"path/filepath"

	"modelbench/internal/errors"
	"modelbench/ports"
)

// LocalSaver writes downloaded artifacts under a base directory
type LocalSaver struct {
	basePath string
}

var _ ports.FileSaver = (*LocalSaver)(nil)

// NewLocalSaver creates a saver, creating basePath if needed
func NewLocalSaver(basePath string) (*LocalSaver, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create download directory %s", basePath)
	}
	return &LocalSaver{basePath: basePath}, nil
}

// Save streams content to basePath/filename. A partial file is removed on failure.
func (s *LocalSaver) Save(filename string, content io.Reader) (string, error) {
	path := s.nameToPath(filename)

	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create %s", path)
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(path)
		return "", errors.Wrapf(err, "failed to write %s", path)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", errors.Wrapf(err, "failed to close %s", path)
	}
	return path, nil
}

// nameToPath keeps only the base name so a model name cannot escape the directory
func (s *LocalSaver) nameToPath(filename string) string {
	return filepath.Join(s.basePath, filepath.Base(filepath.Clean("/"+filename)))
}
