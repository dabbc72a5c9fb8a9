package state

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/keshon/fstate/internal/fs"
)

// CopyTo copies the object e describes to target, replacing what is there.
// Attribute bits and modification times follow the source.
func (e *Entry) CopyTo(target string) error {
	return e.copyTo(e.fs(), target)
}

func (e *Entry) copyTo(fsys fs.FS, target string) error {
	switch e.Kind {
	case File:
		if _, err := fs.CopyFile(fsys, e.Path, target); err != nil {
			return err
		}
		return e.applyMeta(fsys, target)
	case Directory:
		if err := fsys.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", target, err)
		}
		for _, child := range e.children {
			if child.Kind == Special {
				e.state.Log().Warn("skipping special file", zap.String("path", child.Path))
				continue
			}
			if !child.Exists() {
				e.state.Log().Debug("skipping vanished entry", zap.String("path", child.Path))
				continue
			}
			if err := child.copyTo(fsys, filepath.Join(target, child.BaseName())); err != nil {
				return err
			}
		}
		return e.applyMeta(fsys, target)
	case SymbolicLink:
		return e.copyLink(fsys, target)
	default:
		return fmt.Errorf("copy %s %q: %w", e.Kind, e.Path, ErrUnsupportedKind)
	}
}

func (e *Entry) copyLink(fsys fs.FS, target string) error {
	dest, err := fsys.Readlink(e.Path)
	if err != nil {
		return fmt.Errorf("read link %q: %w", e.Path, err)
	}
	if _, err := fsys.Lstat(target); err == nil {
		if err := fsys.Remove(target); err != nil {
			return fmt.Errorf("replace %q: %w", target, err)
		}
	}
	if err := fsys.Symlink(dest, target); err != nil {
		return fmt.Errorf("create link %q: %w", target, err)
	}
	return nil
}

// applyMeta stamps e's attribute bits and modification time onto target.
// Links are left alone since changing them would follow the link.
func (e *Entry) applyMeta(fsys fs.FS, target string) error {
	if e.Kind == SymbolicLink {
		return nil
	}
	if err := fsys.Chmod(target, os.FileMode(e.Attributes())); err != nil {
		return fmt.Errorf("chmod %q: %w", target, err)
	}
	mtime := e.LastWriteTime()
	if mtime.IsZero() {
		return nil
	}
	if err := fsys.Chtimes(target, mtime, mtime); err != nil {
		return fmt.Errorf("chtimes %q: %w", target, err)
	}
	return nil
}

// CopyInto copies e under dir, a reference-tree directory, and returns the
// reference entry now standing for it. Files with known duplicates in dir's
// state are moved or copied from the duplicate instead. Special files are
// skipped with a warning and yield a nil entry.
func (e *Entry) CopyInto(dir *Entry) (*Entry, error) {
	if dir.Kind == Collection || dir.Path == "" {
		return nil, fmt.Errorf("copy %q: %w", e.Name, ErrNoParent)
	}
	ref := dir.state
	fsys := ref.FS()
	base := e.BaseName()
	target := filepath.Join(dir.Path, base)

	switch e.Kind {
	case File:
		if err := e.copyFileInto(ref, target); err != nil {
			return nil, err
		}
		return dir.linkWritten(base, e.Kind)

	case Directory:
		if err := fsys.MkdirAll(target, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %q: %w", target, err)
		}
		newDir, err := dir.FindOrCreateChild(base)
		if err != nil || newDir == nil {
			return nil, err
		}
		for _, child := range e.children {
			if _, err := child.CopyInto(newDir); err != nil {
				return nil, err
			}
		}
		if err := e.applyMeta(fsys, target); err != nil {
			return nil, err
		}
		newDir.Reset()
		return newDir, nil

	case SymbolicLink:
		if err := e.copyLink(fsys, target); err != nil {
			return nil, err
		}
		return dir.linkWritten(base, e.Kind)

	default:
		ref.Log().Warn("skipping unsupported entry", zap.String("path", e.Path), zap.Stringer("kind", e.Kind))
		return nil, nil
	}
}

// linkWritten returns the child of e for an object that was just written at
// base. A child already in the tree describes the replaced object, so its
// cached metadata is dropped.
func (e *Entry) linkWritten(base string, kind Kind) (*Entry, error) {
	if child := e.FindChild(base); child != nil {
		child.Kind = kind
		child.Reset()
		return child, nil
	}
	return e.FindOrCreateChild(base)
}

func (e *Entry) copyFileInto(ref *State, target string) error {
	fsys := ref.FS()
	log := ref.Log()

	dup := ref.FindDuplicate(e)
	switch {
	case dup == nil || dup.Path == target:
		if _, err := fs.CopyFile(fsys, e.Path, target); err != nil {
			return err
		}
	case dup.DeletePending:
		log.Info("optimizing by moving", zap.String("from", dup.Path), zap.String("to", target))
		if err := dup.MoveTo(target); err != nil {
			return err
		}
		ref.Index.Forget(dup)
	default:
		log.Info("optimizing by copying", zap.String("from", dup.Path), zap.String("to", target))
		if _, err := fs.CopyFile(fsys, dup.Path, target); err != nil {
			return err
		}
	}
	return e.applyMeta(fsys, target)
}

// MoveTo renames the object on disk. The entry keeps its old path.
func (e *Entry) MoveTo(target string) error {
	if err := e.fs().Rename(e.Path, target); err != nil {
		return fmt.Errorf("move %q to %q: %w", e.Path, target, err)
	}
	return nil
}

// DeleteSubtree removes the object from disk, recursively for directories.
// A symbolic link is removed itself, never its target.
func (e *Entry) DeleteSubtree() error {
	if e.Kind == Collection || e.Path == "" {
		return fmt.Errorf("delete %q: %w", e.Name, ErrUnsupportedKind)
	}
	fsys := e.fs()
	fi, err := fsys.Lstat(e.Path)
	if err != nil {
		if fsys.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %q: %w", e.Path, err)
	}
	if fi.IsDir() {
		err = fsys.RemoveAll(e.Path)
	} else {
		err = fsys.Remove(e.Path)
	}
	if err != nil && !fsys.IsNotExist(err) {
		return fmt.Errorf("remove %q: %w", e.Path, err)
	}
	return nil
}
