package workdir

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func getwd(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)

	return wd
}

// TestRunRestoresOnSuccess checks fn runs inside dir and the old directory comes back.
func TestRunRestoresOnSuccess(t *testing.T) {
	dir := t.TempDir()
	before := getwd(t)

	var inside string

	err := Run(dir, func() error {
		inside = getwd(t)
		return nil
	})
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	got, err := filepath.EvalSymlinks(inside)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, before, getwd(t))
}

// TestRunRestoresOnError propagates fn's error and still restores.
func TestRunRestoresOnError(t *testing.T) {
	before := getwd(t)
	boom := errors.New("boom")

	err := Run(t.TempDir(), func() error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, before, getwd(t))
}

// TestRunRestoresOnPanic restores the directory while a panic unwinds.
func TestRunRestoresOnPanic(t *testing.T) {
	before := getwd(t)

	require.Panics(t, func() {
		_ = Run(t.TempDir(), func() error {
			panic("build tool exploded")
		})
	})
	require.Equal(t, before, getwd(t))
}

// TestRunMissingDir fails without calling fn.
func TestRunMissingDir(t *testing.T) {
	before := getwd(t)
	called := false

	err := Run(filepath.Join(t.TempDir(), "missing"), func() error {
		called = true
		return nil
	})
	require.Error(t, err)
	require.False(t, called)
	require.Equal(t, before, getwd(t))
}
