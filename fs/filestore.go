// Package fs provides file-based storage for export documents.
package fs

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"

	"github.com/fwojciec/semjson"
)

// Ensure FileStore implements semjson.FileService at compile time.
var _ semjson.FileService = (*FileStore)(nil)

// FileStore implements semjson.FileService with atomic update semantics.
// Documents are written to path.tmp, then renamed to path on Commit.
type FileStore struct{}

// NewFileStore creates a new FileStore.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// CreateFile opens a temporary file next to path, creating parent
// directories as needed.
func (s *FileStore) CreateFile(path string) (semjson.OutputFile, error) {
	if path == "" {
		return nil, semjson.Errorf(semjson.EINVALID, "output path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return nil, err
	}
	return &File{
		path: path,
		tmp:  tmp,
		f:    f,
		w:    bufio.NewWriter(f),
	}, nil
}

// File is an output document being written to a temporary file.
type File struct {
	path string
	tmp  string
	f    *os.File
	w    *bufio.Writer
	done bool
}

// Write appends p to the temporary file.
func (f *File) Write(p []byte) (int, error) {
	if f.done {
		return 0, os.ErrClosed
	}
	return f.w.Write(p)
}

// Flush writes buffered data to the temporary file.
func (f *File) Flush() error {
	if f.done {
		return os.ErrClosed
	}
	return f.w.Flush()
}

// Commit replaces the file at the destination path with the written
// document.
func (f *File) Commit() error {
	if f.done {
		return os.ErrClosed
	}
	f.done = true

	if err := f.w.Flush(); err != nil {
		return errors.Join(err, f.f.Close(), os.Remove(f.tmp))
	}
	if err := f.f.Close(); err != nil {
		return errors.Join(err, os.Remove(f.tmp))
	}
	return os.Rename(f.tmp, f.path)
}

// Abort removes the temporary file. The destination path is left as it
// was. Abort after Commit is a no-op.
func (f *File) Abort() error {
	if f.done {
		return nil
	}
	f.done = true

	closeErr := f.f.Close()
	if err := os.Remove(f.tmp); err != nil && !os.IsNotExist(err) {
		return err
	}
	return closeErr
}
