package state

import (
	"fmt"
	"os"
	"slices"

	"go.uber.org/zap"
)

// Compare diffs s, the reference, against live and appends the changes
// that would bring s in line with live to s.Changes.
func (s *State) Compare(live *State) {
	if s.Root == nil || live.Root == nil {
		return
	}
	s.Root.CompareTo(live.Root)
}

// CompareTo diffs the subtree at e against other, its live counterpart.
//
// Updates and deletes are appended in discovery order. Copies are inserted
// at the front of the list.
func (e *Entry) CompareTo(other *Entry) {
	st := e.state
	if e.Kind != Collection && e.BaseName() != other.BaseName() {
		st.Log().Warn("name does not match",
			zap.String("path", e.Path), zap.String("other", other.Path))
		return
	}

	if reason := e.changeReason(other); reason != "" {
		st.Changes = append(st.Changes, NewUpdate(e, other, reason))
		if e.Kind != other.Kind {
			// The update replaces the whole subtree.
			return
		}
	}

	unmatched := slices.Clone(other.children)
	for _, child := range e.children {
		if oc := other.FindChild(child.BaseName()); oc != nil {
			if i := slices.Index(unmatched, oc); i >= 0 {
				unmatched = slices.Delete(unmatched, i, i+1)
			}
			child.CompareTo(oc)
			continue
		}
		st.Changes = append(st.Changes, NewDelete(child))
	}

	for _, oc := range unmatched {
		if e.FindChild(oc.BaseName()) != nil {
			continue
		}
		st.Changes = slices.Insert(st.Changes, 0, NewCopy(oc, e))
	}
}

func (e *Entry) changeReason(other *Entry) string {
	switch {
	case e.Kind != other.Kind:
		return fmt.Sprintf("kind changed (%s != %s)", e.Kind, other.Kind)
	case e.Kind == Collection:
		return ""
	case e.Kind == File && !sameHash(e.ContentHash(), other.ContentHash()):
		return "contents changed"
	case e.Length() != other.Length():
		return fmt.Sprintf("length changed (%d != %d)", e.Length(), other.Length())
	case e.Attributes() != other.Attributes():
		return fmt.Sprintf("attributes changed (%s != %s)",
			os.FileMode(e.Attributes()), os.FileMode(other.Attributes()))
	}
	return ""
}

// sameHash treats an unknown digest as different from everything.
func sameHash(a, b string) bool {
	return a != "" && a == b
}
