// Package scan walks live directory trees into snapshot states.
package scan

import (
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/keshon/fstate/internal/logging"
	"github.com/keshon/fstate/internal/progress"
	"github.com/keshon/fstate/internal/state"
	"github.com/keshon/fstate/internal/util"
)

// Scanner builds Entry trees from disk. It never follows symbolic links and
// drops subtrees it cannot enumerate.
type Scanner struct {
	Ignore   *Ignore
	Log      *zap.Logger
	Progress io.Writer // spinner output, nil for none
	Workers  int       // hash workers, below 2 hashes inline

	tracker *progress.ProgressTracker
}

// ReadState scans every path into one Collection-rooted state. A scan root
// that does not exist is an error.
func (s *Scanner) ReadState(paths []string, opts state.Options) (*state.State, error) {
	opts.Loader = s
	if opts.Log == nil {
		opts.Log = s.Log
	}
	st := state.NewCollection(opts)

	if s.Progress != nil {
		s.tracker = progress.NewProgress(s.Progress, 0, "Scanning", "entries")
		defer func() {
			s.tracker.Finish()
			s.tracker = nil
		}()
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("scan %q: %w", p, err)
		}
		if _, err := st.FS().Lstat(abs); err != nil {
			return nil, fmt.Errorf("scan %q: %w", p, err)
		}
		if _, err := s.build(st, st.Root, abs, filepath.Base(abs), abs); err != nil {
			return nil, fmt.Errorf("scan %q: %w", p, err)
		}
	}

	if st.EagerHash {
		if err := s.hashSubtree(st, st.Root); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// ReadEntry builds the subtree at path under parent. It lets a state pick up
// objects that appear on disk while changes are applied.
func (s *Scanner) ReadEntry(st *state.State, parent *state.Entry, path, name string) (*state.Entry, error) {
	e, err := s.build(st, parent, path, name, scanRoot(parent, path))
	if err != nil || e == nil {
		return e, err
	}
	if st.EagerHash {
		if err := s.hashSubtree(st, e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// scanRoot is the path of the top-level entry path lives under.
func scanRoot(parent *state.Entry, path string) string {
	if parent == nil || parent.Kind == state.Collection {
		return path
	}
	top := parent
	for top.Parent() != nil && top.Parent().Kind != state.Collection {
		top = top.Parent()
	}
	return top.Path
}

func (s *Scanner) build(st *state.State, parent *state.Entry, path, name, root string) (*state.Entry, error) {
	if path != root {
		rel, err := filepath.Rel(root, path)
		if err == nil && s.Ignore.Match(rel, path) {
			s.log().Debug("ignored", zap.String("path", path))
			return nil, nil
		}
	}

	e, err := st.CreateEntry(parent, path, name)
	if err != nil {
		return nil, err
	}
	if s.tracker != nil {
		s.tracker.Increment()
	}

	if e.Kind != state.Directory {
		return e, nil
	}
	items, err := st.FS().ReadDir(path)
	if err != nil {
		s.log().Debug("cannot read directory", zap.String("path", path), zap.Error(err))
		return e, nil
	}
	for _, item := range items {
		childPath := filepath.Join(path, item.Name())
		if _, err := s.build(st, e, childPath, filepath.Join(name, item.Name()), root); err != nil {
			s.log().Debug("cannot read entry", zap.String("path", childPath), zap.Error(err))
		}
	}
	return e, nil
}

// hashSubtree resolves the content hash of every file below e, in parallel
// when configured, then registers them in tree order so the first file in
// the tree wins a shared hash.
func (s *Scanner) hashSubtree(st *state.State, e *state.Entry) error {
	var files []*state.Entry
	e.Walk(func(n *state.Entry) error {
		if n.Kind == state.File {
			files = append(files, n)
		}
		return nil
	})

	if s.Workers > 1 {
		err := util.Parallel(files, s.Workers, func(f *state.Entry) error {
			f.PrimeContentHash()
			return nil
		})
		if err != nil {
			return err
		}
	}
	for _, f := range files {
		f.PrimeContentHash()
		st.Index.Register(f)
	}
	return nil
}

func (s *Scanner) log() *zap.Logger {
	return logging.Or(s.Log)
}
