package state

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/keshon/fstate/internal/config"
	"github.com/keshon/fstate/internal/fs"
	"github.com/keshon/fstate/internal/logging"
)

var (
	ErrUnsupportedKind = errors.New("unsupported entry kind")
	ErrNoParent        = errors.New("no parent directory")
)

// Loader builds the subtree for an object found on disk and links it under
// parent.
type Loader interface {
	ReadEntry(st *State, parent *Entry, path, name string) (*Entry, error)
}

type Options struct {
	FS     fs.FS
	Log    *zap.Logger
	Out    io.Writer // change reports
	Loader Loader

	CleanFirst     bool
	DisableDedup   bool
	GenerationPath string
	EagerHash      bool
}

// State owns one snapshot tree together with its dedup index and the changes
// pending against it.
type State struct {
	Root    *Entry
	Index   *Index
	Changes []Change

	CleanFirst     bool
	DisableDedup   bool
	GenerationPath string
	EagerHash      bool

	fsys   fs.FS
	log    *zap.Logger
	out    io.Writer
	loader Loader
}

// New returns an empty State with no root.
func New(opts Options) *State {
	s := &State{
		Index:          NewIndex(),
		CleanFirst:     opts.CleanFirst,
		DisableDedup:   opts.DisableDedup,
		GenerationPath: opts.GenerationPath,
		EagerHash:      opts.EagerHash,
		fsys:           opts.FS,
		log:            opts.Log,
		out:            opts.Out,
		loader:         opts.Loader,
	}
	if s.fsys == nil {
		s.fsys = fs.NewOSFS()
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	return s
}

// NewCollection returns a State rooted at a synthetic Collection.
func NewCollection(opts Options) *State {
	s := New(opts)
	s.Root = &Entry{Kind: Collection, state: s}
	return s
}

func (s *State) FS() fs.FS { return s.fsys }

func (s *State) Log() *zap.Logger { return logging.Or(s.log) }

func (s *State) Out() io.Writer { return s.out }

func (s *State) SetOut(w io.Writer) { s.out = w }

func (s *State) SetLoader(l Loader) { s.loader = l }

func (s *State) dedupEnabled() bool {
	return !s.DisableDedup && !s.CleanFirst
}

// CreateEntry classifies the object at path and links a new entry for it
// under parent. Metadata is left unresolved.
func (s *State) CreateEntry(parent *Entry, path, name string) (*Entry, error) {
	fi, err := s.fsys.Lstat(path)
	if err != nil {
		return nil, err
	}
	e := &Entry{Name: name, Path: path, Kind: KindOf(fi.Mode()), state: s}
	if parent != nil {
		parent.appendChild(e)
	}
	return e, nil
}

// Restore links an entry built from persisted values. Nothing is read from
// disk. A known content hash is registered in the index.
func (s *State) Restore(parent *Entry, name, path string, kind Kind, m Meta) *Entry {
	e := &Entry{Name: name, Path: path, Kind: kind, state: s}
	e.restore(m)
	if parent != nil {
		parent.appendChild(e)
	} else if s.Root == nil {
		s.Root = e
	}
	s.Index.Register(e)
	return e
}

// ReadEntry builds the subtree at path through the configured loader.
func (s *State) ReadEntry(parent *Entry, path, name string) (*Entry, error) {
	if s.loader != nil {
		return s.loader.ReadEntry(s, parent, path, name)
	}
	return s.readTree(parent, path, name)
}

// readTree is the loader used when none is configured. It reads every object
// below path and applies no ignore patterns; callers that need filtering set
// a Loader such as the scanner. Unreadable directories and children are
// logged and skipped.
func (s *State) readTree(parent *Entry, path, name string) (*Entry, error) {
	e, err := s.CreateEntry(parent, path, name)
	if err != nil {
		return nil, err
	}
	switch e.Kind {
	case File:
		if s.EagerHash {
			e.ContentHash()
		}
	case Directory:
		items, err := s.fsys.ReadDir(path)
		if err != nil {
			s.Log().Debug("cannot read directory", zap.String("path", path), zap.Error(err))
			return e, nil
		}
		for _, item := range items {
			if _, err := s.readTree(e, filepath.Join(path, item.Name()), filepath.Join(name, item.Name())); err != nil {
				s.Log().Debug("cannot read entry", zap.String("path", item.Name()), zap.Error(err))
			}
		}
	}
	return e, nil
}

// FindDuplicate returns a known file with the same content as e that is still
// intact on disk, or nil.
func (s *State) FindDuplicate(e *Entry) *Entry {
	if !s.dedupEnabled() || e.Kind != File {
		return nil
	}
	h := e.ContentHash()
	if h == "" {
		return nil
	}
	dup := s.Index.Lookup(h)
	if dup == nil || dup == e {
		return nil
	}
	fi, err := s.fsys.Lstat(dup.Path)
	if err != nil || !fi.Mode().IsRegular() {
		return nil
	}
	if fi.Size() != dup.Length() || !fi.ModTime().Equal(dup.LastWriteTime()) {
		s.Log().Debug("duplicate changed on disk", zap.String("path", dup.Path))
		return nil
	}
	return dup
}

// BackupEntry copies e under the generation directory, mirroring its name.
// It does nothing when no generation directory is set.
func (s *State) BackupEntry(e *Entry) error {
	if s.GenerationPath == "" {
		return nil
	}
	if e.Kind == Special || e.Kind == Collection {
		s.Log().Warn("not backing up", zap.String("path", e.Path), zap.Stringer("kind", e.Kind))
		return nil
	}
	target := filepath.Join(s.GenerationPath, e.Name)
	if err := s.fsys.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}
	if err := e.copyTo(s.fsys, target); err != nil {
		return fmt.Errorf("back up %q: %w", e.Path, err)
	}
	return nil
}

// GenerationDir names the backup directory for a run started at now.
func GenerationDir(root string, now time.Time) string {
	return filepath.Join(root, now.Format(config.GenerationLayout))
}

// Count returns the number of entries below the root, excluding a Collection.
func (s *State) Count() int {
	if s.Root == nil {
		return 0
	}
	n := 0
	s.Root.Walk(func(e *Entry) error {
		if e.Kind != Collection {
			n++
		}
		return nil
	})
	return n
}
