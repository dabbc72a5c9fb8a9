package state

import (
	"fmt"
	"io"
)

type Op int

const (
	OpCopy Op = iota
	OpUpdate
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpCopy:
		return "copy"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Change is one step towards making the reference tree match the live tree.
//
//	Copy:   Source (live) is added under Target (reference directory).
//	Update: Target (reference) is overwritten from Source (live).
//	Delete: Target (reference) is removed.
type Change struct {
	Op     Op
	Source *Entry
	Target *Entry
	Reason string
}

func NewCopy(source, targetDir *Entry) Change {
	return Change{Op: OpCopy, Source: source, Target: targetDir}
}

func NewUpdate(target, source *Entry, reason string) Change {
	return Change{Op: OpUpdate, Source: source, Target: target, Reason: reason}
}

// NewDelete marks target's subtree delete-pending right away so later
// copies can reuse its files.
func NewDelete(target *Entry) Change {
	target.MarkDeletePending()
	return Change{Op: OpDelete, Target: target}
}

// Subject is the logical name the change is about.
func (c Change) Subject() string {
	if c.Op == OpCopy {
		return c.Source.Name
	}
	return c.Target.Name
}

// Prepare backs up the reference target of an Update or Delete when it is
// present on disk.
func (c Change) Prepare() error {
	switch c.Op {
	case OpUpdate, OpDelete:
		if c.Target.Exists() {
			return c.Target.state.BackupEntry(c.Target)
		}
	}
	return nil
}

func (c Change) Perform() error {
	switch c.Op {
	case OpCopy:
		_, err := c.Source.CopyInto(c.Target)
		return err
	case OpUpdate:
		return c.performUpdate()
	case OpDelete:
		t := c.Target
		t.Detach()
		t.state.Index.ForgetSubtree(t)
		if t.Exists() {
			return t.DeleteSubtree()
		}
		return nil
	}
	return fmt.Errorf("unknown change %s", c.Op)
}

func (c Change) performUpdate() error {
	t, src := c.Target, c.Source
	if src.Path == t.Path {
		t.Reset()
		return nil
	}

	if src.Kind != t.Kind {
		parent := t.Parent()
		if parent == nil {
			return fmt.Errorf("replace %q: %w", t.Path, ErrNoParent)
		}
		if err := t.DeleteSubtree(); err != nil {
			return err
		}
		t.state.Index.ForgetSubtree(t)
		t.Detach()
		_, err := src.CopyInto(parent)
		return err
	}

	fsys := t.fs()
	var err error
	switch t.Kind {
	case Directory, Special:
		// Directory children are reconciled by their own changes. Special
		// objects cannot be copied, only their mode and times follow.
		err = src.applyMeta(fsys, t.Path)
	default:
		err = src.copyTo(fsys, t.Path)
	}
	if err != nil {
		return err
	}
	t.Reset()
	return nil
}

// Report writes one line describing the change.
func (c Change) Report(w io.Writer) {
	switch c.Op {
	case OpCopy:
		fmt.Fprintf(w, "%s: added\n", c.Subject())
	case OpUpdate:
		fmt.Fprintf(w, "%s: %s\n", c.Subject(), c.Reason)
	case OpDelete:
		fmt.Fprintf(w, "%s: removed\n", c.Subject())
	}
}
