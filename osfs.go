package foldercrypt

import (
	"os"
	"path/filepath"
	"time"

	"github.com/absfs/absfs"
)

// OSFS adapts the host filesystem to the absfs.FileSystem interface. Paths
// are accepted with forward-slash separators and normalized for the host.
type OSFS struct{}

// NewOSFS creates a host filesystem adapter
func NewOSFS() *OSFS {
	return &OSFS{}
}

func (fs *OSFS) hostPath(name string) string {
	return filepath.FromSlash(name)
}

// OpenFile opens a file with the specified flags and permissions
func (fs *OSFS) OpenFile(name string, flag int, perm os.FileMode) (absfs.File, error) {
	return os.OpenFile(fs.hostPath(name), flag, perm)
}

// Open opens a file for reading
func (fs *OSFS) Open(name string) (absfs.File, error) {
	return fs.OpenFile(name, os.O_RDONLY, 0)
}

// Create creates or truncates a file for writing
func (fs *OSFS) Create(name string) (absfs.File, error) {
	return fs.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
}

// Mkdir creates a directory
func (fs *OSFS) Mkdir(name string, perm os.FileMode) error {
	return os.Mkdir(fs.hostPath(name), perm)
}

// MkdirAll creates a directory and all necessary parent directories
func (fs *OSFS) MkdirAll(name string, perm os.FileMode) error {
	return os.MkdirAll(fs.hostPath(name), perm)
}

// Remove removes a file or empty directory
func (fs *OSFS) Remove(name string) error {
	return os.Remove(fs.hostPath(name))
}

// RemoveAll removes a path and any children it contains
func (fs *OSFS) RemoveAll(path string) error {
	return os.RemoveAll(fs.hostPath(path))
}

// Rename renames (moves) a file
func (fs *OSFS) Rename(oldpath, newpath string) error {
	return os.Rename(fs.hostPath(oldpath), fs.hostPath(newpath))
}

// Stat returns file information
func (fs *OSFS) Stat(name string) (os.FileInfo, error) {
	return os.Stat(fs.hostPath(name))
}

// Chmod changes the mode of a file
func (fs *OSFS) Chmod(name string, mode os.FileMode) error {
	return os.Chmod(fs.hostPath(name), mode)
}

// Chtimes changes the access and modification times of a file
func (fs *OSFS) Chtimes(name string, atime, mtime time.Time) error {
	return os.Chtimes(fs.hostPath(name), atime, mtime)
}

// Chown changes the owner and group of a file
func (fs *OSFS) Chown(name string, uid, gid int) error {
	return os.Chown(fs.hostPath(name), uid, gid)
}

// Truncate truncates a file to a specified size
func (fs *OSFS) Truncate(name string, size int64) error {
	return os.Truncate(fs.hostPath(name), size)
}

// Separator returns the host path separator
func (fs *OSFS) Separator() uint8 {
	return os.PathSeparator
}

// ListSeparator returns the host path list separator
func (fs *OSFS) ListSeparator() uint8 {
	return os.PathListSeparator
}

// Chdir changes the current working directory
func (fs *OSFS) Chdir(dir string) error {
	return os.Chdir(fs.hostPath(dir))
}

// Getwd returns the current working directory
func (fs *OSFS) Getwd() (string, error) {
	return os.Getwd()
}

// TempDir returns the temporary directory path
func (fs *OSFS) TempDir() string {
	return os.TempDir()
}
