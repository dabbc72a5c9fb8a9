package state

import (
	"fmt"
	"os"
)

// Kind classifies what an Entry stands for on disk.
type Kind int

const (
	Collection Kind = iota
	Directory
	File
	SymbolicLink
	Special
)

var kindNames = [...]string{
	Collection:   "Collection",
	Directory:    "Directory",
	File:         "File",
	SymbolicLink: "SymbolicLink",
	Special:      "Special",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind is the inverse of String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown entry kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// KindOf classifies a mode as returned by Lstat. Symbolic links are never
// followed.
func KindOf(mode os.FileMode) Kind {
	switch {
	case mode&os.ModeSymlink != 0:
		return SymbolicLink
	case mode.IsDir():
		return Directory
	case mode.IsRegular():
		return File
	default:
		return Special
	}
}

// attrMask selects the mode bits kept as entry attributes.
const attrMask = os.ModePerm | os.ModeSetuid | os.ModeSetgid | os.ModeSticky

// AttrBits extracts the attribute bits of mode.
func AttrBits(mode os.FileMode) uint32 {
	return uint32(mode & attrMask)
}
