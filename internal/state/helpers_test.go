package state

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/keshon/fstate/internal/fs"
)

// writeTree creates files under root. Keys ending in "/" are directories,
// values starting with "->" are symbolic links.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(root, 0o755))
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if strings.HasSuffix(name, "/") {
			require.NoError(t, os.MkdirAll(p, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		if target, ok := strings.CutPrefix(content, "->"); ok {
			require.NoError(t, os.Symlink(target, p))
			continue
		}
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func testOptions(fsys fs.FS, out io.Writer) Options {
	if fsys == nil {
		fsys = fs.NewOSFS()
	}
	if out == nil {
		out = io.Discard
	}
	return Options{FS: fsys, Log: zap.NewNop(), Out: out, EagerHash: true}
}

// scan reads root into a fresh Collection state.
func scan(t *testing.T, root string, opts Options) *State {
	t.Helper()
	st := NewCollection(opts)
	_, err := st.ReadEntry(st.Root, root, filepath.Base(root))
	require.NoError(t, err)
	return st
}

func changeLines(t *testing.T, st *State) []string {
	t.Helper()
	var buf bytes.Buffer
	for _, c := range st.Changes {
		c.Report(&buf)
	}
	return lines(buf.String())
}

func lines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func names(entries []*Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.BaseName())
	}
	return out
}
