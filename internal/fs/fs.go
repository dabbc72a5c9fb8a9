package fs

import (
	"io"
	"os"
	"time"
)

// FS abstracts filesystem operations.
type FS interface {
	Open(path string) (io.ReadCloser, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
	Remove(path string) error
	RemoveAll(path string) error
	Rename(oldPath, newPath string) error
	Lstat(path string) (os.FileInfo, error)
	ReadDir(path string) ([]os.DirEntry, error)
	CreateTempFile(dir, pattern string) (io.WriteCloser, string, error)
	Chmod(path string, mode os.FileMode) error
	Chtimes(path string, atime, mtime time.Time) error
	Symlink(oldname, newname string) error
	Readlink(path string) (string, error)
	CreationTime(path string) (time.Time, error)
	IsNotExist(err error) bool
	Exists(path string) bool
	IsDir(path string) bool
}
