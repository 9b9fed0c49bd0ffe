package repoops

import (
	"io/fs"
	"os"
)

// FileSystem exposes the filesystem operations required by clone planning.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	MkdirAll(path string, permissions fs.FileMode) error
}

// OSFileSystem implements FileSystem using the operating system.
type OSFileSystem struct{}

// Stat reports file information for the provided path.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// MkdirAll creates the directory path along with any missing parents.
func (OSFileSystem) MkdirAll(path string, permissions fs.FileMode) error {
	return os.MkdirAll(path, permissions)
}
