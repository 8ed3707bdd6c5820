package engine

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/csvtranspose/internal/state"
	"github.com/leapstack-labs/csvtranspose/internal/testutil"
)

func TestRun_Scenario(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"a.csv":     "1,2,3\n4,5,6\n",
		"notes.txt": "leave me alone",
	})
	eng := newTestEngine(t, Config{})

	res, err := eng.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, 1, res.Succeeded)
	assert.Zero(t, res.Failed)
	require.Len(t, res.Files, 1)
	assert.Equal(t, filepath.Join(dir, "a_transposed.csv"), res.Files[0].Output)

	assert.Equal(t, "1,4\r\n2,5\r\n3,6\r\n", testutil.ReadFile(t, dir, "a_transposed.csv"))
	assert.Equal(t, "leave me alone", testutil.ReadFile(t, dir, "notes.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "notes_transposed.txt"))
}

func TestRun_EmptyDirectory(t *testing.T) {
	eng := newTestEngine(t, Config{})

	res, err := eng.Run(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, res.Files)
	assert.Zero(t, res.Succeeded)
	assert.Zero(t, res.Failed)
}

func TestRun_MissingDirectory(t *testing.T) {
	eng := newTestEngine(t, Config{})

	res, err := eng.Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrFilesystemAccess)
}

func failingDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"a.csv": "1,2\n",
		"b.csv": "x,\"broken\n",
		"c.csv": "3,4\n",
	})
	return dir
}

func TestRun_FailFast(t *testing.T) {
	dir := failingDir(t)
	eng := newTestEngine(t, Config{})

	res, err := eng.Run(context.Background(), dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)

	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.FileExists(t, filepath.Join(dir, "a_transposed.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "b_transposed.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "c_transposed.csv"), "files after the failure are not processed")
}

func TestRun_ContinueOnError(t *testing.T) {
	dir := failingDir(t)
	eng := newTestEngine(t, Config{ContinueOnError: true})

	res, err := eng.Run(context.Background(), dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "b.csv")

	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, "1\r\n2\r\n", testutil.ReadFile(t, dir, "a_transposed.csv"))
	assert.Equal(t, "3\r\n4\r\n", testutil.ReadFile(t, dir, "c_transposed.csv"))
}

func TestRun_Parallel(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{}
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, n := range names {
		files[n+".csv"] = n + "1," + n + "2\n" + n + "3," + n + "4\n"
	}
	testutil.WriteFiles(t, dir, files)

	var (
		mu   sync.Mutex
		seen []string
	)
	eng := newTestEngine(t, Config{
		Workers: 3,
		OnFile: func(fr *FileResult) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, filepath.Base(fr.Input))
		},
	})

	res, err := eng.Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, len(names), res.Succeeded)
	assert.Len(t, seen, len(names))

	for i, n := range names {
		assert.Equal(t, filepath.Join(dir, n+".csv"), res.Files[i].Input, "files are reported in input order")
		assert.Equal(t, n+"1,"+n+"3\r\n"+n+"2,"+n+"4\r\n", testutil.ReadFile(t, dir, n+"_transposed.csv"))
	}
}

func TestRun_ParallelContinueOnError(t *testing.T) {
	dir := failingDir(t)
	eng := newTestEngine(t, Config{Workers: 4, ContinueOnError: true})

	res, err := eng.Run(context.Background(), dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.FileExists(t, filepath.Join(dir, "c_transposed.csv"))
}

func TestRun_Cancelled(t *testing.T) {
	dir := failingDir(t)
	eng := newTestEngine(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := eng.Run(ctx, dir)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Files)
	assert.NoFileExists(t, filepath.Join(dir, "a_transposed.csv"))
}

func TestRun_RecordsHistory(t *testing.T) {
	store := state.NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	t.Cleanup(func() { _ = store.Close() })

	dir := failingDir(t)
	testutil.WriteFiles(t, dir, map[string]string{"r.csv": "1,2,3\n4,5\n"})
	eng := newTestEngine(t, Config{Store: store, ContinueOnError: true})

	res, err := eng.Run(context.Background(), dir)
	require.Error(t, err)

	run, err := store.GetRun(res.ID)
	require.NoError(t, err)
	assert.Equal(t, state.RunStatusFailed, run.Status)
	assert.Equal(t, dir, run.Dir)
	assert.Equal(t, 4, run.FilesTotal)
	assert.Equal(t, 1, run.FilesFailed)
	assert.NotNil(t, run.CompletedAt)
	assert.Contains(t, run.Error, "ParseError")

	files, err := store.GetRunFiles(res.ID)
	require.NoError(t, err)
	require.Len(t, files, 4)

	byName := map[string]*state.FileRecord{}
	for _, f := range files {
		byName[filepath.Base(f.InputPath)] = f
	}
	assert.Equal(t, state.FileStatusFailed, byName["b.csv"].Status)
	assert.Equal(t, "ParseError", byName["b.csv"].ErrorKind)
	assert.Equal(t, state.FileStatusSuccess, byName["a.csv"].Status)
	assert.Equal(t, 1, byName["a.csv"].Rows)
	assert.Equal(t, 2, byName["a.csv"].Cols)
	assert.Equal(t, 1, byName["r.csv"].Dropped)
}

func TestRun_RecordsCompletedRun(t *testing.T) {
	store := state.NewSQLiteStore(nil)
	require.NoError(t, store.Open(":memory:"))
	t.Cleanup(func() { _ = store.Close() })

	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"a.csv": "1,2\n"})
	eng := newTestEngine(t, Config{Store: store})

	res, err := eng.Run(context.Background(), dir)
	require.NoError(t, err)

	runs, err := store.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.ID, runs[0].ID)
	assert.Equal(t, state.RunStatusCompleted, runs[0].Status)
	assert.Empty(t, runs[0].Error)
}
