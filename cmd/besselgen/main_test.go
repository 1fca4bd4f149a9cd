package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-besseldata/internal/testutil"
	"github.com/cwbudde/algo-besseldata/oracle"
	"github.com/cwbudde/algo-besseldata/vectors/manifest"
	"github.com/cwbudde/algo-besseldata/vectors/table"
)

// useFake routes the command to a fake oracle for the duration of the test.
func useFake(t *testing.T, fake *testutil.FakeOracle) *int {
	t.Helper()
	closed := new(int)
	prev := startOracle
	startOracle = func(context.Context, string, *slog.Logger) (oracle.Oracle, func() error, error) {
		return fake, func() error { *closed++; return nil }, nil
	}
	t.Cleanup(func() { startOracle = prev })
	return closed
}

func runCmd(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

var allFiles = []string{
	"manifest.json",
	"zbesh1_e_test.txt",
	"zbesh1_test.txt",
	"zbesh2_e_test.txt",
	"zbesh2_test.txt",
	"zbesi_e_real_test.txt",
	"zbesi_e_test.txt",
	"zbesi_real_test.txt",
	"zbesi_test.txt",
}

func TestGenerate(t *testing.T) {
	closed := useFake(t, &testutil.FakeOracle{})
	dir := t.TempDir()

	code, stdout, stderr := runCmd(t, "-out", dir)
	require.Equal(t, exitSuccess, code, stderr)
	require.Equal(t, 1, *closed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.Equal(t, allFiles, names)
	require.Len(t, strings.Split(strings.TrimSpace(stdout), "\n"), len(allFiles))

	data, err := os.ReadFile(filepath.Join(dir, manifest.FileName))
	require.NoError(t, err)
	m, err := manifest.Parse(data)
	require.NoError(t, err)
	require.Len(t, m.Files, len(allFiles)-1)
	require.Contains(t, stderr, "run complete")
}

func TestGenerate_Deterministic(t *testing.T) {
	useFake(t, &testutil.FakeOracle{})
	a, b := t.TempDir(), t.TempDir()

	code, _, stderr := runCmd(t, "-out", a)
	require.Equal(t, exitSuccess, code, stderr)
	code, _, stderr = runCmd(t, "-out", b)
	require.Equal(t, exitSuccess, code, stderr)

	for _, name := range allFiles {
		da, err := os.ReadFile(filepath.Join(a, name))
		require.NoError(t, err)
		db, err := os.ReadFile(filepath.Join(b, name))
		require.NoError(t, err)
		require.Equal(t, da, db, name)
	}
}

func TestGenerate_SelectedPipeline(t *testing.T) {
	useFake(t, &testutil.FakeOracle{})
	dir := t.TempDir()

	code, _, stderr := runCmd(t, "-out", dir, "zbesh", "zbesh")
	require.Equal(t, exitSuccess, code, stderr)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	_, err = os.Stat(filepath.Join(dir, "zbesi_test.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestCheck(t *testing.T) {
	useFake(t, &testutil.FakeOracle{})
	dir := t.TempDir()

	code, _, stderr := runCmd(t, "-out", dir)
	require.Equal(t, exitSuccess, code, stderr)

	code, stdout, stderr := runCmd(t, "-out", dir, "-check")
	require.Equal(t, exitSuccess, code, stderr)
	require.Contains(t, stdout, "9 files up to date")

	path := filepath.Join(dir, "zbesi_real_test.txt")
	require.NoError(t, os.WriteFile(path, []byte("# nu j z cy\n"), 0o644))
	require.NoError(t, os.Remove(filepath.Join(dir, "zbesh2_test.txt")))

	code, stdout, stderr = runCmd(t, "-out", dir, "-check")
	require.Equal(t, exitInvalid, code)
	require.Contains(t, stdout, "differs "+path+" (0 rows, want ")
	require.Contains(t, stdout, "missing "+filepath.Join(dir, "zbesh2_test.txt"))
	require.Contains(t, stderr, "2 of 9 files out of date")
}

func TestCheck_ValuesDiffer(t *testing.T) {
	useFake(t, &testutil.FakeOracle{})
	dir := t.TempDir()

	code, _, stderr := runCmd(t, "-out", dir, "zbesh")
	require.Equal(t, exitSuccess, code, stderr)

	path := filepath.Join(dir, "zbesh1_test.txt")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	tbl, err := table.Read(bytes.NewReader(data), "zbesh1_test.txt", table.Complex)
	require.NoError(t, err)
	tbl.Rows[0].Value += 1
	edited, err := table.Marshal(tbl)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, edited, 0o644))

	code, stdout, stderr := runCmd(t, "-out", dir, "-check", "zbesh")
	require.Equal(t, exitInvalid, code)
	require.Contains(t, stdout, "differs "+path+" (values differ)")
	require.Contains(t, stderr, "1 of 5 files out of date")
}

func TestCheck_DoesNotWrite(t *testing.T) {
	useFake(t, &testutil.FakeOracle{})
	dir := t.TempDir()

	code, _, _ := runCmd(t, "-out", dir, "-check")
	require.Equal(t, exitInvalid, code)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestUsageErrors(t *testing.T) {
	useFake(t, &testutil.FakeOracle{})

	cases := []struct {
		name string
		args []string
	}{
		{"unknown pipeline", []string{"zbesj"}},
		{"unknown flag", []string{"-seed", "1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, _, stderr := runCmd(t, tc.args...)
			require.Equal(t, exitInvalid, code)
			require.NotEmpty(t, stderr)
		})
	}
}

func TestHelp(t *testing.T) {
	code, _, stderr := runCmd(t, "-h")
	require.Equal(t, exitSuccess, code)
	require.Contains(t, stderr, "Usage: besselgen")
	require.Contains(t, stderr, "zbesh zbesi")
}

func TestOracleFailure(t *testing.T) {
	closed := useFake(t, &testutil.FakeOracle{
		RealHook: func(oracle.Function, float64, float64, bool) (float64, error) {
			return 0, oracle.ErrNotReal
		},
	})
	dir := t.TempDir()

	code, _, stderr := runCmd(t, "-out", dir)
	require.Equal(t, exitInternal, code)
	require.Contains(t, stderr, "error:")
	require.Equal(t, 1, *closed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries, "a failed run must not leave partial output")
}

func TestOracleStartFailure(t *testing.T) {
	prev := startOracle
	startOracle = func(context.Context, string, *slog.Logger) (oracle.Oracle, func() error, error) {
		return nil, nil, errors.New("no interpreter")
	}
	t.Cleanup(func() { startOracle = prev })

	code, _, stderr := runCmd(t, "-out", t.TempDir())
	require.Equal(t, exitInternal, code)
	require.Contains(t, stderr, "no interpreter")
}
