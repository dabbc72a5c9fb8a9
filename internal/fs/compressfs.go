package fs

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"time"
)

// CompressedFS wraps another FS and gzips whole-file writes. Reads through
// ReadFile and Open are transparently decompressed.
type CompressedFS struct {
	underlying FS
}

func NewCompressedFS(base FS) *CompressedFS {
	return &CompressedFS{underlying: base}
}

func (c *CompressedFS) Open(path string) (io.ReadCloser, error) {
	rc, err := c.underlying.Open(path)
	if err != nil {
		return nil, err
	}
	gz, err := gzip.NewReader(rc)
	if err != nil {
		rc.Close()
		return nil, err
	}
	return &gzipReadCloser{Reader: gz, under: rc}, nil
}

type gzipReadCloser struct {
	*gzip.Reader
	under io.Closer
}

func (g *gzipReadCloser) Close() error {
	err := g.Reader.Close()
	if cerr := g.under.Close(); err == nil {
		err = cerr
	}
	return err
}

func (c *CompressedFS) ReadFile(path string) ([]byte, error) {
	rc, err := c.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (c *CompressedFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	return c.underlying.WriteFile(path, buf.Bytes(), perm)
}

// Pass-through for other operations
func (c *CompressedFS) MkdirAll(path string, perm os.FileMode) error {
	return c.underlying.MkdirAll(path, perm)
}
func (c *CompressedFS) Remove(path string) error    { return c.underlying.Remove(path) }
func (c *CompressedFS) RemoveAll(path string) error { return c.underlying.RemoveAll(path) }
func (c *CompressedFS) Rename(oldPath, newPath string) error {
	return c.underlying.Rename(oldPath, newPath)
}
func (c *CompressedFS) Lstat(path string) (os.FileInfo, error)     { return c.underlying.Lstat(path) }
func (c *CompressedFS) ReadDir(path string) ([]os.DirEntry, error) { return c.underlying.ReadDir(path) }
func (c *CompressedFS) CreateTempFile(dir, pattern string) (io.WriteCloser, string, error) {
	return c.underlying.CreateTempFile(dir, pattern)
}
func (c *CompressedFS) Chmod(path string, mode os.FileMode) error { return c.underlying.Chmod(path, mode) }
func (c *CompressedFS) Chtimes(path string, atime, mtime time.Time) error {
	return c.underlying.Chtimes(path, atime, mtime)
}
func (c *CompressedFS) Symlink(oldname, newname string) error { return c.underlying.Symlink(oldname, newname) }
func (c *CompressedFS) Readlink(path string) (string, error)  { return c.underlying.Readlink(path) }
func (c *CompressedFS) CreationTime(path string) (time.Time, error) {
	return c.underlying.CreationTime(path)
}
func (c *CompressedFS) IsNotExist(err error) bool { return c.underlying.IsNotExist(err) }
func (c *CompressedFS) IsDir(path string) bool    { return c.underlying.IsDir(path) }
func (c *CompressedFS) Exists(path string) bool   { return c.underlying.Exists(path) }
