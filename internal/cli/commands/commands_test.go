package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/csvtranspose/internal/cli/config"
	"github.com/leapstack-labs/csvtranspose/internal/engine"
	"github.com/leapstack-labs/csvtranspose/internal/table"
	"github.com/leapstack-labs/csvtranspose/internal/testutil"
)

func TestNewRunCommand(t *testing.T) {
	cmd := NewRunCommand()

	assert.Equal(t, "run [dir]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
	assert.Error(t, cmd.Args(cmd, []string{"a", "b"}), "run takes at most one directory")
}

func TestNewListCommand(t *testing.T) {
	cmd := NewListCommand()

	assert.Equal(t, "list [dir]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
}

func TestNewPreviewCommand(t *testing.T) {
	cmd := NewPreviewCommand()

	assert.Equal(t, "preview <file>", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("max-rows"))
	assert.Error(t, cmd.Args(cmd, nil), "preview requires a file")
}

func TestNewWatchCommand(t *testing.T) {
	cmd := NewWatchCommand()

	assert.Equal(t, "watch [dir]", cmd.Use)
	flag := cmd.Flags().Lookup("debounce")
	require.NotNil(t, flag)
	assert.Equal(t, engine.DefaultDebounce.String(), flag.DefValue)
}

func TestNewHistoryCommand(t *testing.T) {
	cmd := NewHistoryCommand()

	assert.Equal(t, "history [run-id]", cmd.Use)
	for _, flag := range []string{"dir", "limit"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewConfigCommand(t *testing.T) {
	cmd := NewConfigCommand()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"init", "show"}, names)
}

func TestResolveDir(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Equal(t, ".", resolveDir(cfg, nil))
	assert.Equal(t, "data", resolveDir(cfg, []string{"data"}))

	cfg.Dir = "configured"
	assert.Equal(t, "configured", resolveDir(cfg, nil))
	assert.Equal(t, "arg", resolveDir(cfg, []string{"arg"}))
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "2x3", shapeString(table.Shape{Rows: 2, MinCols: 3, MaxCols: 3}))
	assert.Equal(t, "2x2..3", shapeString(table.Shape{Rows: 2, MinCols: 2, MaxCols: 3}))
	assert.Equal(t, "0x0", shapeString(table.Shape{}))
}

// TestRunTranspose_Defaults runs the command without the root command, so
// the default configuration applies.
func TestRunTranspose_Defaults(t *testing.T) {
	config.ResetConfig()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"a.csv": "1,2,3\n4,5,6\n"})

	cmd := NewRunCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{dir})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "1,4\r\n2,5\r\n3,6\r\n", testutil.ReadFile(t, dir, "a_transposed.csv"))
	assert.Contains(t, out.String(), "a_transposed.csv")
}

func TestWatchCommand(t *testing.T) {
	config.ResetConfig()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"a.csv": "1,2\n"})

	ready := make(chan struct{})
	cmd := newWatchCommand(&WatchOptions{Ready: func() { close(ready) }})
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{dir, "--debounce", "20ms"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	select {
	case <-ready:
	case err := <-done:
		t.Fatalf("watch exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not become ready")
	}

	// The initial run already transposed a.csv.
	assert.Equal(t, "1\r\n2\r\n", testutil.ReadFile(t, dir, "a_transposed.csv"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.csv"), []byte("x,y\n"), 0600))
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(filepath.Join(dir, "b_transposed.csv"))
		return err == nil && string(data) == "x\r\ny\r\n"
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
	assert.Contains(t, out.String(), "Watching "+dir)
}
