package util_test

import (
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/fstate/internal/fs"
	"github.com/keshon/fstate/internal/util"
)

func TestWriteReadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	fsys := fs.NewOSFS()

	in := map[string]int{"a": 1, "b": 2}
	require.NoError(t, util.WriteJSON(fsys, path, in))
	assert.False(t, fsys.Exists(path+".tmp"))

	var out map[string]int
	require.NoError(t, util.ReadJSON(fsys, path, &out))
	assert.Equal(t, in, out)
}

func TestWriteJSONCompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json.gz")
	cfs := fs.NewCompressedFS(fs.NewOSFS())

	require.NoError(t, util.WriteJSON(cfs, path, []string{"x", "y"}))

	var out []string
	require.NoError(t, util.ReadJSON(cfs, path, &out))
	assert.Equal(t, []string{"x", "y"}, out)

	var plain []string
	assert.Error(t, util.ReadJSON(fs.NewOSFS(), path, &plain), "gzip bytes are not JSON")
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, util.SortedKeys(map[string]bool{"c": true, "a": true, "b": false}))
}

func TestParallel(t *testing.T) {
	var sum atomic.Int64
	err := util.Parallel([]int{1, 2, 3, 4}, 2, func(n int) error {
		sum.Add(int64(n))
		return nil
	})
	require.NoError(t, err)
	assert.EqualValues(t, 10, sum.Load())

	boom := errors.New("boom")
	err = util.Parallel([]int{1, 2, 3}, 0, func(n int) error {
		if n == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}
