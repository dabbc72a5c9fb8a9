package state

import (
	"fmt"
	"io"

	"github.com/keshon/fstate/internal/fs"
	"github.com/zeebo/xxh3"
	"golang.org/x/exp/mmap"
)

// ContentHash returns the xxh3-128 digest of the file at path as hex, or ""
// when the file cannot be read.
func ContentHash(path string) string {
	return contentHash(fs.NewOSFS(), path)
}

func contentHash(fsys fs.FS, path string) string {
	fi, err := fsys.Lstat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return ""
	}
	r, err := mmap.Open(path)
	if err != nil {
		return ""
	}
	defer r.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, io.NewSectionReader(r, 0, int64(r.Len()))); err != nil {
		return ""
	}
	return fmt.Sprintf("%x", h.Sum128().Bytes())
}
