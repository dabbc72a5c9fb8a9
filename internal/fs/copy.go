package fs

import (
	"fmt"
	"io"
	"path/filepath"
)

// CopyFile copies the bytes of src to dst through a temporary file in dst's
// directory, replacing dst atomically. Metadata is left to the caller.
func CopyFile(fsys FS, src, dst string) (int64, error) {
	in, err := fsys.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open %q: %w", src, err)
	}
	defer in.Close()

	tmp, tmpPath, err := fsys.CreateTempFile(filepath.Dir(dst), ".fstate-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file in %q: %w", filepath.Dir(dst), err)
	}
	renamed := false
	defer func() {
		if !renamed {
			fsys.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(tmp, in)
	if err != nil {
		tmp.Close()
		return n, fmt.Errorf("copy %q: %w", src, err)
	}
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("close temp file: %w", err)
	}

	if err := fsys.Rename(tmpPath, dst); err != nil {
		return n, fmt.Errorf("rename temp %q to %q: %w", tmpPath, dst, err)
	}
	renamed = true
	return n, nil
}
