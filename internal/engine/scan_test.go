package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/csvtranspose/internal/testutil"
)

func TestScan(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"a.csv":            "1,2\n",
		"b.csv":            "3,4\n",
		"notes.txt":        "not a table",
		"data.csv.bak":     "old",
		"b_transposed.csv": "3\n4\n",
		"nested/inner.csv": "5,6\n",
		"UPPER.CSV":        "7,8\n",
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.csv"), 0o750))

	got, err := Scan(dir, ScanOptions{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "b.csv"),
		filepath.Join(dir, "b_transposed.csv"),
	}, got)
}

func TestScan_Exclude(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"a.csv":            "1\n",
		"a_transposed.csv": "1\n",
		"skip-me.csv":      "1\n",
	})

	got, err := Scan(dir, ScanOptions{Exclude: []string{"*_transposed.csv", "skip-*"}})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.csv")}, got)

	_, err = Scan(dir, ScanOptions{Exclude: []string{"[bad"}})
	assert.Error(t, err)
}

func TestScan_Extension(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"a.tsv": "1\t2\n",
		"b.csv": "1,2\n",
	})

	got, err := Scan(dir, ScanOptions{Extension: ".tsv"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.tsv")}, got)
}

func TestScan_EmptyDirectory(t *testing.T) {
	got, err := Scan(t.TempDir(), ScanOptions{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScan_MissingDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")

	_, err := Scan(missing, ScanOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFilesystemAccess)
	assert.ErrorIs(t, err, os.ErrNotExist)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, missing, e.Path)
}
