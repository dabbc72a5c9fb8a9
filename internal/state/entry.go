package state

import (
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/keshon/fstate/internal/fs"
)

// Entry is one node of a snapshot tree.
//
// Metadata fields are resolved from disk on first access and cached; values
// restored from a snapshot are served without touching the filesystem.
type Entry struct {
	Name          string // path relative to the snapshot's conceptual root
	Path          string // absolute filesystem path, empty for a Collection
	Kind          Kind
	DeletePending bool

	parent   *Entry
	children []*Entry
	state    *State

	length     lazy[int64]
	creation   lazy[time.Time]
	lastWrite  lazy[time.Time]
	attributes lazy[uint32]
	hash       lazy[string]
}

// Meta carries pre-resolved metadata. Nil pointers and an empty hash mean
// "not known".
type Meta struct {
	Length        *int64
	CreationTime  *time.Time
	LastWriteTime *time.Time
	Attributes    *uint32
	ContentHash   string
}

// BaseName is the last element of the entry's name.
func (e *Entry) BaseName() string {
	switch {
	case e.Name != "":
		return filepath.Base(e.Name)
	case e.Path != "":
		return filepath.Base(e.Path)
	}
	return ""
}

func (e *Entry) Parent() *Entry     { return e.parent }
func (e *Entry) Children() []*Entry { return e.children }
func (e *Entry) State() *State      { return e.state }

func (e *Entry) Depth() int {
	d := 0
	for p := e.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// FindChild returns the child whose base name is name.
func (e *Entry) FindChild(name string) *Entry {
	for _, child := range e.children {
		if child.BaseName() == name {
			return child
		}
	}
	return nil
}

// FindOrCreateChild returns the named child, reading it from disk and linking
// it into the tree when it is not known yet.
func (e *Entry) FindOrCreateChild(name string) (*Entry, error) {
	if child := e.FindChild(name); child != nil {
		return child, nil
	}
	return e.state.ReadEntry(e, filepath.Join(e.Path, name), childName(e, name))
}

func childName(parent *Entry, base string) string {
	if parent == nil || parent.Name == "" {
		return base
	}
	return filepath.Join(parent.Name, base)
}

func (e *Entry) appendChild(child *Entry) {
	child.parent = e
	e.children = append(e.children, child)
}

// Detach unlinks e from its parent's children.
func (e *Entry) Detach() {
	if e.parent == nil {
		return
	}
	if i := slices.Index(e.parent.children, e); i >= 0 {
		e.parent.children = slices.Delete(e.parent.children, i, i+1)
	}
	e.parent = nil
}

// Walk visits e and its descendants depth first, parents before children.
func (e *Entry) Walk(fn func(*Entry) error) error {
	if err := fn(e); err != nil {
		return err
	}
	for _, child := range e.children {
		if err := child.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// MarkDeletePending flags e and its whole subtree as about to be removed.
func (e *Entry) MarkDeletePending() {
	e.DeletePending = true
	for _, child := range e.children {
		child.MarkDeletePending()
	}
}

// Exists reports whether the object is present on disk. Links are not
// followed.
func (e *Entry) Exists() bool {
	if e.Path == "" {
		return false
	}
	return e.fs().Exists(e.Path)
}

func (e *Entry) fs() fs.FS {
	return e.state.FS()
}

func (e *Entry) lstat() (os.FileInfo, bool) {
	if e.Kind == Collection || e.Path == "" {
		return nil, false
	}
	fi, err := e.fs().Lstat(e.Path)
	if err != nil {
		return nil, false
	}
	return fi, true
}

// Length is the byte size for files and symbolic links, zero otherwise.
func (e *Entry) Length() int64 {
	return e.length.get(func() (int64, bool) {
		fi, ok := e.lstat()
		if !ok {
			return 0, false
		}
		if e.Kind == File || e.Kind == SymbolicLink {
			return fi.Size(), true
		}
		return 0, true
	})
}

func (e *Entry) CreationTime() time.Time {
	return e.creation.get(func() (time.Time, bool) {
		if e.Kind == Collection || e.Path == "" {
			return time.Time{}, false
		}
		t, err := e.fs().CreationTime(e.Path)
		return t, err == nil
	})
}

func (e *Entry) LastWriteTime() time.Time {
	return e.lastWrite.get(func() (time.Time, bool) {
		fi, ok := e.lstat()
		if !ok {
			return time.Time{}, false
		}
		return fi.ModTime(), true
	})
}

// Attributes are the permission and special mode bits.
func (e *Entry) Attributes() uint32 {
	return e.attributes.get(func() (uint32, bool) {
		fi, ok := e.lstat()
		if !ok {
			return 0, false
		}
		return AttrBits(fi.Mode()), true
	})
}

// ContentHash returns the cached digest, computing it on first use and
// registering the entry in the dedup index. "" means unknown and is retried
// on the next call.
func (e *Entry) ContentHash() string {
	if e.Kind != File {
		return ""
	}
	if h, ok := e.hash.peek(); ok {
		return h
	}
	h := e.PrimeContentHash()
	if h != "" && e.state != nil {
		e.state.Index.Register(e)
	}
	return h
}

// PrimeContentHash resolves the digest without touching the index. It only
// writes to e, so distinct entries may be primed concurrently.
func (e *Entry) PrimeContentHash() string {
	if e.Kind != File {
		return ""
	}
	return e.hash.get(func() (string, bool) {
		h := contentHash(e.hashFS(), e.Path)
		return h, h != ""
	})
}

// CurrentContentHash always reads the file again.
func (e *Entry) CurrentContentHash() string {
	if e.Kind != File {
		return ""
	}
	return contentHash(e.hashFS(), e.Path)
}

func (e *Entry) hashFS() fs.FS {
	if e.state == nil {
		return fs.NewOSFS()
	}
	return e.fs()
}

// Cached reports the metadata resolved so far without resolving anything.
func (e *Entry) Cached() Meta {
	var m Meta
	if v, ok := e.length.peek(); ok {
		m.Length = &v
	}
	if v, ok := e.creation.peek(); ok {
		m.CreationTime = &v
	}
	if v, ok := e.lastWrite.peek(); ok {
		m.LastWriteTime = &v
	}
	if v, ok := e.attributes.peek(); ok {
		m.Attributes = &v
	}
	if v, ok := e.hash.peek(); ok {
		m.ContentHash = v
	}
	return m
}

func (e *Entry) restore(m Meta) {
	if m.Length != nil {
		e.length.set(*m.Length)
	}
	if m.CreationTime != nil {
		e.creation.set(*m.CreationTime)
	}
	if m.LastWriteTime != nil {
		e.lastWrite.set(*m.LastWriteTime)
	}
	if m.Attributes != nil {
		e.attributes.set(*m.Attributes)
	}
	if m.ContentHash != "" && e.Kind == File {
		e.hash.set(m.ContentHash)
	}
}

// Reset drops every cached field so the next read goes to disk.
func (e *Entry) Reset() {
	if e.state != nil {
		e.state.Index.Forget(e)
	}
	e.length.reset()
	e.creation.reset()
	e.lastWrite.reset()
	e.attributes.reset()
	e.hash.reset()
}
