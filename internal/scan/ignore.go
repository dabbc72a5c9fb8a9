package scan

import (
	"bufio"
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/keshon/fstate/internal/fs"
)

// RegexpPrefix marks an ignore line as a regular expression matched against
// the absolute path.
const RegexpPrefix = "re:"

// Ignore decides which paths a scan skips. Exact names and globs are matched
// against the slash-separated path relative to the scan root; a glob without
// a slash also matches the base name at any depth, like git.
type Ignore struct {
	static   map[string]bool
	patterns []string
	regexps  []*regexp.Regexp
}

// NewIgnore builds a matcher from patterns as accepted by Add.
func NewIgnore(patterns ...string) (*Ignore, error) {
	m := &Ignore{static: make(map[string]bool)}
	for _, p := range patterns {
		if err := m.Add(p); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Add registers one pattern. Blank lines and # comments are ignored.
func (m *Ignore) Add(pattern string) error {
	pattern = strings.TrimSpace(pattern)
	switch {
	case pattern == "" || strings.HasPrefix(pattern, "#"):
		return nil
	case strings.HasPrefix(pattern, RegexpPrefix):
		re, err := regexp.Compile(strings.TrimPrefix(pattern, RegexpPrefix))
		if err != nil {
			return fmt.Errorf("ignore pattern %q: %w", pattern, err)
		}
		m.regexps = append(m.regexps, re)
	case strings.ContainsAny(pattern, "*?["):
		if _, err := filepath.Match(filepath.Base(pattern), ""); err != nil {
			return fmt.Errorf("ignore pattern %q: %w", pattern, err)
		}
		m.patterns = append(m.patterns, filepath.ToSlash(pattern))
	default:
		m.static[filepath.ToSlash(filepath.Clean(pattern))] = true
	}
	return nil
}

// LoadIgnoreFile adds every line of the file at path.
func (m *Ignore) LoadIgnoreFile(fsys fs.FS, path string) error {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read ignore file: %w", err)
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if err := m.Add(sc.Text()); err != nil {
			return err
		}
	}
	return sc.Err()
}

// Match reports whether the entry at abs, rel below its scan root, is
// ignored.
func (m *Ignore) Match(rel, abs string) bool {
	if m == nil {
		return false
	}
	clean := filepath.ToSlash(filepath.Clean(rel))
	base := pathBase(clean)

	if m.static[clean] || m.static[base] {
		return true
	}

	for _, pat := range m.patterns {
		if !strings.Contains(pat, "/") {
			if ok, _ := filepath.Match(pat, base); ok {
				return true
			}
			continue
		}
		if matchPattern(pat, clean) {
			return true
		}
	}

	for _, re := range m.regexps {
		if re.MatchString(abs) {
			return true
		}
	}
	return false
}

func pathBase(slashPath string) string {
	if i := strings.LastIndexByte(slashPath, '/'); i >= 0 {
		return slashPath[i+1:]
	}
	return slashPath
}

// matchPattern handles *, ?, and ** like Git
func matchPattern(pattern, path string) bool {
	pattern = strings.TrimPrefix(filepath.ToSlash(pattern), "/")
	return matchSegments(strings.Split(pattern, "/"), strings.Split(path, "/"))
}

// matchSegments matches pattern segments recursively
func matchSegments(pats, parts []string) bool {
	for len(pats) > 0 {
		p := pats[0]
		pats = pats[1:]

		if p == "**" {
			if len(pats) == 0 {
				return true // trailing ** matches anything
			}
			for i := 0; i <= len(parts); i++ {
				if matchSegments(pats, parts[i:]) {
					return true
				}
			}
			return false
		}

		if len(parts) == 0 {
			return false
		}

		ok, _ := filepath.Match(p, parts[0])
		if !ok {
			return false
		}

		parts = parts[1:]
	}

	return len(parts) == 0
}
