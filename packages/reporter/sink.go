package reporter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrUnsupported is returned when a report file is requested but the
// environment cannot write files.
var ErrUnsupported = fmt.Errorf("feature unsupported in this environment: %w", errors.ErrUnsupported)

// FileSystem is the write capability the reporter needs for file output
type FileSystem interface {
	MkdirAll(path string, perm os.FileMode) error
	Create(name string) (io.WriteCloser, error)
}

// OSFileSystem writes to the local disk
type OSFileSystem struct{}

func (OSFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (OSFileSystem) Create(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

// openFile creates path and any missing parent directories.
func openFile(fs FileSystem, path string) (io.WriteCloser, error) {
	if fs == nil {
		return nil, fmt.Errorf("writing %s: %w", path, ErrUnsupported)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	f, err := fs.Create(path)
	if err != nil {
		return nil, fmt.Errorf("cannot create output file: %w", err)
	}
	return f, nil
}
