package fs

import (
	"io"
	"os"
	"sync"
	"time"
)

// Op names recorded by CountingFS.
const (
	OpOpen      = "open"
	OpWrite     = "write"
	OpMkdir     = "mkdir"
	OpRemove    = "remove"
	OpRename    = "rename"
	OpTemp      = "temp"
	OpChmod     = "chmod"
	OpChtimes   = "chtimes"
	OpSymlink   = "symlink"
	OpReadDir   = "readdir"
	OpRemoveAll = "removeall"
)

// Call is one recorded mutation or content read.
type Call struct {
	Op   string
	Path string
}

// CountingFS wraps another FS and records every content read and mutation.
// Metadata lookups (Lstat, Exists, IsDir, Readlink) are not recorded.
type CountingFS struct {
	underlying FS

	mu    sync.Mutex
	calls []Call
}

func NewCountingFS(base FS) *CountingFS {
	return &CountingFS{underlying: base}
}

func (c *CountingFS) record(op, path string) {
	c.mu.Lock()
	c.calls = append(c.calls, Call{Op: op, Path: path})
	c.mu.Unlock()
}

// Calls returns a copy of the recorded calls in order.
func (c *CountingFS) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// Count returns how many calls of op were recorded.
func (c *CountingFS) Count(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, call := range c.calls {
		if call.Op == op {
			n++
		}
	}
	return n
}

// Counts groups the recorded calls by op.
func (c *CountingFS) Counts() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int)
	for _, call := range c.calls {
		out[call.Op]++
	}
	return out
}

// Reset forgets all recorded calls.
func (c *CountingFS) Reset() {
	c.mu.Lock()
	c.calls = nil
	c.mu.Unlock()
}

func (c *CountingFS) Open(path string) (io.ReadCloser, error) {
	c.record(OpOpen, path)
	return c.underlying.Open(path)
}

func (c *CountingFS) ReadFile(path string) ([]byte, error) {
	c.record(OpOpen, path)
	return c.underlying.ReadFile(path)
}

func (c *CountingFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	c.record(OpWrite, path)
	return c.underlying.WriteFile(path, data, perm)
}

func (c *CountingFS) MkdirAll(path string, perm os.FileMode) error {
	c.record(OpMkdir, path)
	return c.underlying.MkdirAll(path, perm)
}

func (c *CountingFS) Remove(path string) error {
	c.record(OpRemove, path)
	return c.underlying.Remove(path)
}

func (c *CountingFS) RemoveAll(path string) error {
	c.record(OpRemoveAll, path)
	return c.underlying.RemoveAll(path)
}

func (c *CountingFS) Rename(oldPath, newPath string) error {
	c.record(OpRename, newPath)
	return c.underlying.Rename(oldPath, newPath)
}

func (c *CountingFS) Lstat(path string) (os.FileInfo, error) { return c.underlying.Lstat(path) }

func (c *CountingFS) ReadDir(path string) ([]os.DirEntry, error) {
	c.record(OpReadDir, path)
	return c.underlying.ReadDir(path)
}

func (c *CountingFS) CreateTempFile(dir, pattern string) (io.WriteCloser, string, error) {
	c.record(OpTemp, dir)
	return c.underlying.CreateTempFile(dir, pattern)
}

func (c *CountingFS) Chmod(path string, mode os.FileMode) error {
	c.record(OpChmod, path)
	return c.underlying.Chmod(path, mode)
}

func (c *CountingFS) Chtimes(path string, atime, mtime time.Time) error {
	c.record(OpChtimes, path)
	return c.underlying.Chtimes(path, atime, mtime)
}

func (c *CountingFS) Symlink(oldname, newname string) error {
	c.record(OpSymlink, newname)
	return c.underlying.Symlink(oldname, newname)
}

func (c *CountingFS) Readlink(path string) (string, error) { return c.underlying.Readlink(path) }
func (c *CountingFS) CreationTime(path string) (time.Time, error) {
	return c.underlying.CreationTime(path)
}
func (c *CountingFS) IsNotExist(err error) bool { return c.underlying.IsNotExist(err) }
func (c *CountingFS) IsDir(path string) bool    { return c.underlying.IsDir(path) }
func (c *CountingFS) Exists(path string) bool   { return c.underlying.Exists(path) }
