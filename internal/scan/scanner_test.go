package scan

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/keshon/fstate/internal/fs"
	"github.com/keshon/fstate/internal/state"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func baseNames(entries []*state.Entry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.BaseName())
	}
	return out
}

func opts() state.Options {
	return state.Options{Log: zap.NewNop(), EagerHash: true}
}

func TestReadStateMultipleRoots(t *testing.T) {
	tmp := t.TempDir()
	one := filepath.Join(tmp, "one")
	two := filepath.Join(tmp, "two")
	writeFiles(t, one, map[string]string{"a": "a", "d/b": "b"})
	writeFiles(t, two, map[string]string{"c": "c"})

	sc := &Scanner{Log: zap.NewNop()}
	st, err := sc.ReadState([]string{one, two}, opts())
	require.NoError(t, err)

	assert.Equal(t, state.Collection, st.Root.Kind)
	assert.Equal(t, []string{"one", "two"}, baseNames(st.Root.Children()))
	b := st.Root.Children()[0].FindChild("d").FindChild("b")
	require.NotNil(t, b)
	assert.Equal(t, filepath.Join("one", "d", "b"), b.Name)
	assert.Equal(t, 6, st.Count())
	assert.Equal(t, 3, st.Index.Len())
}

func TestReadStateMissingRoot(t *testing.T) {
	sc := &Scanner{}
	_, err := sc.ReadState([]string{filepath.Join(t.TempDir(), "absent")}, opts())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReadStateSkipsIgnored(t *testing.T) {
	root := filepath.Join(t.TempDir(), "data")
	writeFiles(t, root, map[string]string{
		"keep.txt":      "k",
		"skip.bak":      "s",
		"build/out.o":   "o",
		".file_db.json": "{}",
		"src/main.go":   "package main",
	})

	ignore, err := NewIgnore("*.bak", "build", ".file_db.json")
	require.NoError(t, err)
	sc := &Scanner{Ignore: ignore, Log: zap.NewNop()}
	st, err := sc.ReadState([]string{root}, opts())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"keep.txt", "src"}, baseNames(st.Root.Children()[0].Children()))
}

func TestReadStateSwallowsUnreadableDirectories(t *testing.T) {
	root := filepath.Join(t.TempDir(), "data")
	writeFiles(t, root, map[string]string{"ok/a": "a", "locked/b": "b", "c": "c"})

	orig := fs.GetReadDir()
	defer fs.SetReadDir(orig)
	fs.SetReadDir(func(path string) ([]os.DirEntry, error) {
		if filepath.Base(path) == "locked" {
			return nil, os.ErrPermission
		}
		return orig(path)
	})

	st, err := (&Scanner{}).ReadState([]string{root}, opts())
	require.NoError(t, err)

	top := st.Root.Children()[0]
	assert.ElementsMatch(t, []string{"ok", "locked", "c"}, baseNames(top.Children()))
	assert.Empty(t, top.FindChild("locked").Children())
	assert.Len(t, top.FindChild("ok").Children(), 1)
}

func TestReadStateDoesNotFollowLinks(t *testing.T) {
	tmp := t.TempDir()
	root := filepath.Join(tmp, "data")
	writeFiles(t, filepath.Join(tmp, "elsewhere"), map[string]string{"x": "x"})
	writeFiles(t, root, map[string]string{"f": "f"})
	require.NoError(t, os.Symlink(filepath.Join(tmp, "elsewhere"), filepath.Join(root, "link")))

	st, err := (&Scanner{}).ReadState([]string{root}, opts())
	require.NoError(t, err)

	link := st.Root.Children()[0].FindChild("link")
	require.NotNil(t, link)
	assert.Equal(t, state.SymbolicLink, link.Kind)
	assert.Empty(t, link.Children())
}

func TestParallelHashingKeepsTreeOrder(t *testing.T) {
	root := filepath.Join(t.TempDir(), "data")
	files := map[string]string{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		files["dir/"+name] = "same"
		files["uniq/"+name] = "unique " + name
	}
	writeFiles(t, root, files)

	sc := &Scanner{Workers: 4}
	st, err := sc.ReadState([]string{root}, opts())
	require.NoError(t, err)

	first := st.Root.Children()[0].FindChild("dir").FindChild("a")
	assert.Same(t, first, st.Index.Lookup(first.ContentHash()))
	assert.Equal(t, 9, st.Index.Len())
	require.NoError(t, st.Root.Walk(func(e *state.Entry) error {
		if e.Kind == state.File {
			assert.NotEmpty(t, e.Cached().ContentHash, e.Name)
		}
		return nil
	}))
}

func TestLazyScanLeavesHashesUnresolved(t *testing.T) {
	root := filepath.Join(t.TempDir(), "data")
	writeFiles(t, root, map[string]string{"a": "a"})

	o := opts()
	o.EagerHash = false
	st, err := (&Scanner{}).ReadState([]string{root}, o)
	require.NoError(t, err)

	a := st.Root.Children()[0].FindChild("a")
	assert.Empty(t, a.Cached().ContentHash)
	assert.Zero(t, st.Index.Len())
	assert.NotEmpty(t, a.ContentHash())
	assert.Equal(t, 1, st.Index.Len())
}

func TestScannerAsLoaderHonoursIgnore(t *testing.T) {
	root := filepath.Join(t.TempDir(), "data")
	writeFiles(t, root, map[string]string{"a": "a"})

	ignore, err := NewIgnore("*.tmp")
	require.NoError(t, err)
	sc := &Scanner{Ignore: ignore}
	st, err := sc.ReadState([]string{root}, opts())
	require.NoError(t, err)

	writeFiles(t, root, map[string]string{"new/x": "x", "new/y.tmp": "y"})
	top := st.Root.Children()[0]
	created, err := top.FindOrCreateChild("new")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, baseNames(created.Children()))
	assert.NotEmpty(t, created.FindChild("x").Cached().ContentHash)
}

func TestProgressOutput(t *testing.T) {
	root := filepath.Join(t.TempDir(), "data")
	writeFiles(t, root, map[string]string{"a": "a", "b": "b"})

	var buf bytes.Buffer
	_, err := (&Scanner{Progress: &buf}).ReadState([]string{root}, opts())
	require.NoError(t, err)
	assert.True(t, strings.Contains(buf.String(), "✓ Scanning (3 entries,"), buf.String())
}
