package session

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/keshon/fstate/internal/config"
	"github.com/keshon/fstate/internal/fs"
	"github.com/keshon/fstate/internal/snapshot"
	"github.com/keshon/fstate/internal/state"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(root, 0o755))
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

type fixture struct {
	tmp, live, mirror, gens string
}

func newFixture(t *testing.T) fixture {
	tmp := t.TempDir()
	f := fixture{
		tmp:    tmp,
		live:   filepath.Join(tmp, "src", "data"),
		mirror: filepath.Join(tmp, "mirror", "data"),
		gens:   filepath.Join(tmp, "generations"),
	}
	writeFiles(t, f.live, map[string]string{"a.txt": "alpha", "sub/b.txt": "beta"})
	require.NoError(t, os.MkdirAll(f.mirror, 0o755))
	return f
}

func (f fixture) options(out *bytes.Buffer) Options {
	return Options{
		ReferenceDir:   f.mirror,
		LivePaths:      []string{f.live},
		GenerationsDir: f.gens,
		EagerHash:      true,
		HashWorkers:    1,
		Out:            out,
		Log:            zap.NewNop(),
		Now:            func() time.Time { return time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC) },
	}
}

func TestRunBuildsDatabaseAndMirrors(t *testing.T) {
	f := newFixture(t)
	var out bytes.Buffer
	o := f.options(&out)
	o.Update = true
	o.MetricsFile = filepath.Join(f.tmp, "fstate.prom")

	res, err := Run(context.Background(), o)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Changes)
	assert.True(t, res.Applied)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, filepath.Join(f.mirror, config.DefaultDatabaseFile), res.DatabaseFile)
	assert.Equal(t, "alpha", readFile(t, filepath.Join(f.mirror, "a.txt")))
	assert.Equal(t, "beta", readFile(t, filepath.Join(f.mirror, "sub", "b.txt")))
	assert.Contains(t, out.String(), "data/a.txt: added")
	assert.NoDirExists(t, res.GenerationPath)

	db, err := snapshot.Load(fs.NewOSFS(), res.DatabaseFile, state.Options{Log: zap.NewNop()})
	require.NoError(t, err)
	require.Len(t, db.Root.Children(), 1)
	data := db.Root.Children()[0]
	assert.Nil(t, data.FindChild(config.DefaultDatabaseFile))
	assert.NotNil(t, data.FindChild("sub"))

	prom := readFile(t, o.MetricsFile)
	assert.Contains(t, prom, `fstate_changes_total{op="copy"} 2`)
	assert.Contains(t, prom, "fstate_remaining_differences 0")
	assert.Contains(t, prom, "fstate_last_success_timestamp_seconds")
}

func TestRunUpdatesWithGenerations(t *testing.T) {
	f := newFixture(t)
	o := f.options(&bytes.Buffer{})
	o.Update = true
	_, err := Run(context.Background(), o)
	require.NoError(t, err)

	writeFiles(t, f.live, map[string]string{"a.txt": "ALPHA"})
	require.NoError(t, os.Remove(filepath.Join(f.live, "sub", "b.txt")))

	var out bytes.Buffer
	o.Out = &out
	res, err := Run(context.Background(), o)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Changes)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, filepath.Join(f.gens, "2026-01-02.150405"), res.GenerationPath)
	assert.Equal(t, "ALPHA", readFile(t, filepath.Join(f.mirror, "a.txt")))
	assert.NoFileExists(t, filepath.Join(f.mirror, "sub", "b.txt"))
	assert.Equal(t, "alpha", readFile(t, filepath.Join(res.GenerationPath, "data", "a.txt")))
	assert.Equal(t, "beta", readFile(t, filepath.Join(res.GenerationPath, "data", "sub", "b.txt")))
	assert.Contains(t, out.String(), "data/a.txt: contents changed")
	assert.Contains(t, out.String(), "data/sub/b.txt: removed")
}

func TestRunDryRunReportsOnly(t *testing.T) {
	f := newFixture(t)
	o := f.options(&bytes.Buffer{})
	o.Update = true
	_, err := Run(context.Background(), o)
	require.NoError(t, err)

	writeFiles(t, f.live, map[string]string{"c.txt": "gamma"})
	var out bytes.Buffer
	o.Out = &out
	o.Update = false
	res, err := Run(context.Background(), o)
	require.NoError(t, err)

	assert.False(t, res.Applied)
	assert.Equal(t, 1, res.Changes)
	assert.Equal(t, 1, res.Remaining)
	assert.Equal(t, "data/c.txt: added\n", out.String())
	assert.NoFileExists(t, filepath.Join(f.mirror, "c.txt"))
}

func TestRunDefaultsLivePathsToReference(t *testing.T) {
	f := newFixture(t)
	var out bytes.Buffer
	o := f.options(&out)
	o.ReferenceDir = f.live
	o.LivePaths = nil
	o.ReportFiles = true

	res, err := Run(context.Background(), o)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Changes)
	assert.Contains(t, out.String(), "created database state:")
	assert.Contains(t, out.String(), "read file state:")
	assert.Contains(t, out.String(), filepath.Join(f.live, "a.txt")+" (data/a.txt)")
	assert.NotContains(t, out.String(), config.DefaultDatabaseFile)
}

func TestRunSavesLiveStateWithoutReference(t *testing.T) {
	f := newFixture(t)
	db := filepath.Join(f.tmp, "out", "live.json.gz")
	o := f.options(&bytes.Buffer{})
	o.ReferenceDir = ""
	o.DatabaseFile = db

	_, err := Run(context.Background(), o)
	require.NoError(t, err)

	st, err := snapshot.Load(fs.NewOSFS(), db, state.Options{Log: zap.NewNop()})
	require.NoError(t, err)
	require.Len(t, st.Root.Children(), 1)
	assert.Equal(t, f.live, st.Root.Children()[0].Path)
	assert.Equal(t, 4, st.Count())
}

func TestRunWritesDocumentWithoutDatabase(t *testing.T) {
	f := newFixture(t)
	var out bytes.Buffer
	o := f.options(&out)
	o.ReferenceDir = ""

	_, err := Run(context.Background(), o)
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"version": 1`)
	assert.Contains(t, out.String(), `"name": "`+f.live+`"`)
}

func TestRunNothingToScan(t *testing.T) {
	_, err := Run(context.Background(), Options{Log: zap.NewNop(), Out: &bytes.Buffer{}})
	assert.ErrorIs(t, err, ErrNothingToScan)
}

func TestRunCanceled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, f.options(&bytes.Buffer{}))
	assert.ErrorIs(t, err, context.Canceled)
}
