package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/csvtranspose/internal/csvio"
	"github.com/leapstack-labs/csvtranspose/internal/table"
	"github.com/leapstack-labs/csvtranspose/internal/testutil"
)

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = testutil.NewTestLogger(t)
	}
	eng, err := New(cfg)
	require.NoError(t, err)
	return eng
}

func TestNew_Defaults(t *testing.T) {
	eng, err := New(Config{})
	require.NoError(t, err)

	assert.Equal(t, DefaultExtension, eng.ext)
	assert.Equal(t, DefaultSuffix, eng.suffix)
	assert.Equal(t, 1, eng.workers)
	assert.Equal(t, ',', eng.Dialect().Comma)
	assert.Equal(t, "data_transposed.csv", eng.OutputPath("data.csv"))
}

func TestNew_OutputDirKeepsEmptySuffix(t *testing.T) {
	eng, err := New(Config{OutputDir: "out"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "a.csv"), eng.OutputPath(filepath.Join("in", "a.csv")))
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{Dialect: csvio.Dialect{Comma: '"'}})
	assert.ErrorIs(t, err, csvio.ErrInvalidDelimiter)

	_, err = New(Config{Exclude: []string{"["}})
	assert.Error(t, err)

	_, err = New(Config{Dialect: csvio.Dialect{Comma: ',', Encoding: "no-such-encoding"}})
	assert.ErrorIs(t, err, csvio.ErrUnknownEncoding)
}

func TestTransposeFile(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		dialect csvio.Dialect
		want    string
	}{
		{
			name:  "rectangular default dialect",
			input: "1,2,3\n4,5,6\n",
			want:  "1,4\r\n2,5\r\n3,6\r\n",
		},
		{
			name:    "lf terminator",
			input:   "1,2,3\n4,5,6\n",
			dialect: csvio.Dialect{Comma: ','},
			want:    "1,4\n2,5\n3,6\n",
		},
		{
			name:  "quoted fields survive",
			input: "\"x,y\",z\n\"say \"\"hi\"\"\",w\n",
			want:  "\"x,y\",\"say \"\"hi\"\"\"\r\nz,w\r\n",
		},
		{
			name:  "embedded newline",
			input: "\"two\nlines\",b\n",
			want:  "\"two\nlines\"\r\nb\r\n",
		},
		{
			name:  "carriage returns inside fields",
			input: "\"a\rb\",\"c\r\nd\"\r\n",
			want:  "\"a\rb\"\r\n\"c\r\nd\"\r\n",
		},
		{
			name:  "bare quote kept literally",
			input: "5'10\",tall\n",
			want:  "\"5'10\"\"\"\r\ntall\r\n",
		},
		{
			name:    "semicolon delimiter",
			input:   "a;b\nc;d\n",
			dialect: csvio.Dialect{Comma: ';'},
			want:    "a;c\nb;d\n",
		},
		{
			name:  "single row becomes column",
			input: "a,b,c\n",
			want:  "a\r\nb\r\nc\r\n",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			testutil.WriteFiles(t, dir, map[string]string{"a.csv": tt.input})

			dialect := tt.dialect
			if dialect.Comma == 0 {
				dialect = csvio.DefaultDialect()
			}
			eng := newTestEngine(t, Config{Dialect: dialect})

			res, err := eng.TransposeFile(context.Background(), filepath.Join(dir, "a.csv"))
			require.NoError(t, err)
			assert.True(t, res.OK())
			assert.Equal(t, filepath.Join(dir, "a_transposed.csv"), res.Output)
			assert.Equal(t, tt.want, testutil.ReadFile(t, dir, "a_transposed.csv"))
			assert.Equal(t, tt.input, testutil.ReadFile(t, dir, "a.csv"), "input must be untouched")
		})
	}
}

func TestTransposeFile_Shapes(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"a.csv": "1,2,3\n4,5,6\n"})
	eng := newTestEngine(t, Config{})

	res, err := eng.TransposeFile(context.Background(), filepath.Join(dir, "a.csv"))
	require.NoError(t, err)
	assert.Equal(t, table.Shape{Rows: 2, MinCols: 3, MaxCols: 3}, res.InputShape)
	assert.Equal(t, table.Shape{Rows: 3, MinCols: 2, MaxCols: 2}, res.OutputShape)
	assert.Zero(t, res.Dropped)
}

func TestTransposeFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := "id,name,note\r\n1,\"Smith, J\",\"said \"\"ok\"\"\"\r\n2,Lee,\r\n"
	testutil.WriteFiles(t, dir, map[string]string{"a.csv": original})
	eng := newTestEngine(t, Config{})
	ctx := context.Background()

	first, err := eng.TransposeFile(ctx, filepath.Join(dir, "a.csv"))
	require.NoError(t, err)
	second, err := eng.TransposeFile(ctx, first.Output)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "a_transposed_transposed.csv"), second.Output)
	assert.Equal(t, original, testutil.ReadFile(t, dir, "a_transposed_transposed.csv"))
}

func TestTransposeFile_OverwritesExistingOutput(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"a.csv":            "1,2\n",
		"a_transposed.csv": "stale content that is much longer than the new output\n",
	})
	eng := newTestEngine(t, Config{})

	_, err := eng.TransposeFile(context.Background(), filepath.Join(dir, "a.csv"))
	require.NoError(t, err)
	assert.Equal(t, "1\r\n2\r\n", testutil.ReadFile(t, dir, "a_transposed.csv"))
}

func TestTransposeFile_Ragged(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"a.csv": "1,2,3\n4,5\n"})
	logger, logs := testutil.NewCaptureLogger()
	eng := newTestEngine(t, Config{Logger: logger})

	res, err := eng.TransposeFile(context.Background(), filepath.Join(dir, "a.csv"))
	require.NoError(t, err)

	assert.Equal(t, "1,4\r\n2,5\r\n", testutil.ReadFile(t, dir, "a_transposed.csv"))
	assert.Equal(t, 1, res.Dropped)
	assert.True(t, res.InputShape.Ragged())
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "ragged rows truncated")
	assert.Contains(t, logs.String(), "dropped_fields=1")
}

func TestTransposeFile_OutputDir(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out", "nested")
	testutil.WriteFiles(t, dir, map[string]string{"a.csv": "1,2\n"})
	eng := newTestEngine(t, Config{OutputDir: outDir})

	res, err := eng.TransposeFile(context.Background(), filepath.Join(dir, "a.csv"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "a.csv"), res.Output)
	assert.Equal(t, "1\r\n2\r\n", testutil.ReadFile(t, outDir, "a.csv"))
}

func TestTransposeFile_Encoding(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"a.csv": "caf\xe9,1\n"})
	eng := newTestEngine(t, Config{Dialect: csvio.Dialect{Comma: ',', Encoding: "latin1"}})

	_, err := eng.TransposeFile(context.Background(), filepath.Join(dir, "a.csv"))
	require.NoError(t, err)
	assert.Equal(t, "caf\xe9\n1\n", testutil.ReadFile(t, dir, "a_transposed.csv"))
}

func TestTransposeFile_Errors(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		dir := t.TempDir()
		eng := newTestEngine(t, Config{})
		input := filepath.Join(dir, "missing.csv")

		res, err := eng.TransposeFile(context.Background(), input)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrFileRead)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Equal(t, err, res.Err)
		assert.NoFileExists(t, filepath.Join(dir, "missing_transposed.csv"))
	})

	t.Run("unterminated quote", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteFiles(t, dir, map[string]string{"bad.csv": "a,\"b\n"})
		eng := newTestEngine(t, Config{})

		_, err := eng.TransposeFile(context.Background(), filepath.Join(dir, "bad.csv"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrParse)
		assert.ErrorIs(t, err, csvio.ErrUnterminatedQuote)
		assert.Contains(t, err.Error(), "ParseError")
		assert.Contains(t, err.Error(), "line 1")
		assert.NoFileExists(t, filepath.Join(dir, "bad_transposed.csv"), "output is only created after a successful parse")
	})

	t.Run("text after closing quote", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteFiles(t, dir, map[string]string{"bad.csv": "ok,fine\na,\"b\"c\n"})
		eng := newTestEngine(t, Config{})

		_, err := eng.TransposeFile(context.Background(), filepath.Join(dir, "bad.csv"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrParse)
		assert.ErrorIs(t, err, csvio.ErrQuote)

		var perr *csvio.ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 2, perr.Line)
	})

	t.Run("unwritable output", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteFiles(t, dir, map[string]string{
			"a.csv":   "1,2\n",
			"blocker": "a regular file where a directory is expected",
		})
		eng := newTestEngine(t, Config{OutputDir: filepath.Join(dir, "blocker")})

		_, err := eng.TransposeFile(context.Background(), filepath.Join(dir, "a.csv"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrFileWrite)
		assert.Equal(t, "1,2\n", testutil.ReadFile(t, dir, "a.csv"))
	})

	t.Run("output equals input", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteFiles(t, dir, map[string]string{"a.csv": "1,2\n"})
		eng := newTestEngine(t, Config{OutputDir: dir})

		_, err := eng.TransposeFile(context.Background(), filepath.Join(dir, "a.csv"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrFileWrite)
		assert.Equal(t, "1,2\n", testutil.ReadFile(t, dir, "a.csv"))
	})

	t.Run("cancelled context", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteFiles(t, dir, map[string]string{"a.csv": "1,2\n"})
		eng := newTestEngine(t, Config{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := eng.TransposeFile(ctx, filepath.Join(dir, "a.csv"))
		assert.ErrorIs(t, err, context.Canceled)
		assert.NoFileExists(t, filepath.Join(dir, "a_transposed.csv"))
	})
}
