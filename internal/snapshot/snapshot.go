// Package snapshot persists state trees as JSON documents.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/keshon/fstate/internal/fs"
	"github.com/keshon/fstate/internal/state"
	"github.com/keshon/fstate/internal/util"
)

const Version = 1

var ErrInvalid = errors.New("invalid snapshot")

// Document is the persisted form of a state.
type Document struct {
	Version int   `json:"version"`
	Root    *Node `json:"root"`
}

// Node is one persisted entry. The first named node on each branch carries
// an absolute path, its descendants carry base names.
type Node struct {
	Name      string     `json:"name,omitempty"`
	Kind      state.Kind `json:"kind"`
	Creation  *time.Time `json:"creation,omitempty"`
	LastWrite *time.Time `json:"lastwrite,omitempty"`
	Attr      *uint32    `json:"attr,omitempty"`
	Length    *int64     `json:"length,omitempty"`
	Hash      string     `json:"hash,omitempty"`
	Children  []*Node    `json:"children,omitempty"`
}

// Encode converts st into a document, resolving metadata that is not cached
// yet. Values that cannot be resolved are left out.
func Encode(st *state.State) *Document {
	doc := &Document{Version: Version}
	if st.Root != nil {
		doc.Root = encodeEntry(st.Root, true)
	}
	return doc
}

func encodeEntry(e *state.Entry, top bool) *Node {
	n := &Node{Kind: e.Kind}

	if e.Kind != state.Collection {
		if top {
			n.Name = e.Path
		} else {
			n.Name = e.BaseName()
		}
		top = false

		if e.Kind != state.SymbolicLink && e.Kind != state.Special {
			e.CreationTime()
			e.LastWriteTime()
		}
		e.Attributes()
		if e.Kind == state.File {
			e.Length()
			e.ContentHash()
		}

		m := e.Cached()
		if e.Kind != state.SymbolicLink && e.Kind != state.Special {
			n.Creation = m.CreationTime
			n.LastWrite = m.LastWriteTime
		}
		n.Attr = m.Attributes
		if e.Kind == state.File {
			n.Length = m.Length
			n.Hash = m.ContentHash
		}
	}

	for _, child := range e.Children() {
		n.Children = append(n.Children, encodeEntry(child, top))
	}
	return n
}

// Decode rebuilds a state from doc without touching the filesystem.
func Decode(doc *Document, opts state.Options) (*state.State, error) {
	if doc == nil || doc.Root == nil {
		return nil, fmt.Errorf("%w: no root", ErrInvalid)
	}
	if doc.Version > Version {
		return nil, fmt.Errorf("%w: version %d is newer than %d", ErrInvalid, doc.Version, Version)
	}

	if doc.Root.Kind == state.Collection {
		st := state.NewCollection(opts)
		for _, child := range doc.Root.Children {
			if err := decodeNode(st, st.Root, "", "", child); err != nil {
				return nil, err
			}
		}
		return st, nil
	}

	st := state.New(opts)
	if err := decodeNode(st, nil, "", "", doc.Root); err != nil {
		return nil, err
	}
	return st, nil
}

func decodeNode(st *state.State, parent *state.Entry, parentName, parentPath string, n *Node) error {
	if n.Kind == state.Collection {
		return fmt.Errorf("%w: nested collection under %q", ErrInvalid, parentPath)
	}
	if n.Name == "" {
		return fmt.Errorf("%w: unnamed %s under %q", ErrInvalid, n.Kind, parentPath)
	}

	var name, path string
	if filepath.IsAbs(n.Name) {
		name = filepath.Base(n.Name)
		path = filepath.Clean(n.Name)
	} else {
		if parentPath == "" || strings.ContainsRune(n.Name, filepath.Separator) {
			return fmt.Errorf("%w: bad name %q under %q", ErrInvalid, n.Name, parentPath)
		}
		name = filepath.Join(parentName, n.Name)
		path = filepath.Join(parentPath, n.Name)
	}

	e := st.Restore(parent, name, path, n.Kind, state.Meta{
		Length:        n.Length,
		CreationTime:  n.Creation,
		LastWriteTime: n.LastWrite,
		Attributes:    n.Attr,
		ContentHash:   n.Hash,
	})
	for _, child := range n.Children {
		if err := decodeNode(st, e, name, path, child); err != nil {
			return err
		}
	}
	return nil
}

// storeFS gzips the document when the file name ends in .gz.
func storeFS(fsys fs.FS, path string) fs.FS {
	if strings.HasSuffix(path, ".gz") {
		return fs.NewCompressedFS(fsys)
	}
	return fsys
}

// Save writes st to path atomically, creating parent directories.
func Save(fsys fs.FS, path string, st *state.State) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	if err := util.WriteJSON(storeFS(fsys, path), path, Encode(st)); err != nil {
		return fmt.Errorf("save snapshot %q: %w", path, err)
	}
	return nil
}

// Load reads the snapshot at path.
func Load(fsys fs.FS, path string, opts state.Options) (*state.State, error) {
	var doc Document
	if err := util.ReadJSON(storeFS(fsys, path), path, &doc); err != nil {
		return nil, fmt.Errorf("load snapshot %q: %w", path, err)
	}
	st, err := Decode(&doc, opts)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %q: %w", path, err)
	}
	return st, nil
}

// Write prints st as an indented document.
func Write(w io.Writer, st *state.State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Encode(st))
}
