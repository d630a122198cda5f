package walker

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/portable-packer/internal/validate"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for name, contents := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	}
}

func paths(files []File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path)
	}

	return out
}

// TestWalk enumerates nested files with forward-slash relative paths.
func TestWalk(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"app.exe":              "AAAAAAAAAA",
		"assets/logo.png":      "\x01\x02\x03",
		"assets/deep/a/b/c.txt": "",
		"data/empty":           "",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty-dir", "nested"), 0o750))

	files, err := Walk(context.Background(), root, nil)
	require.NoError(t, err)
	require.Equal(t, []string{
		"app.exe",
		"assets/deep/a/b/c.txt",
		"assets/logo.png",
		"data/empty",
	}, paths(files))

	for _, f := range files {
		require.FileExists(t, f.FullPath)
	}

	again, err := Walk(context.Background(), root, &Options{})
	require.NoError(t, err)
	require.Equal(t, files, again)
}

// TestWalkExclude drops files and whole directories matching doublestar patterns.
func TestWalkExclude(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"app.exe":         "x",
		"app.pdb":         "x",
		"cache/a.bin":     "x",
		"cache/sub/b.bin": "x",
		"lib/x.pdb":       "x",
		"lib/x.dll":       "x",
	})

	files, err := Walk(context.Background(), root, &Options{Exclude: []string{"**/*.pdb", "cache"}})
	require.NoError(t, err)
	require.Equal(t, []string{"app.exe", "lib/x.dll"}, paths(files))

	_, err = Walk(context.Background(), root, &Options{Exclude: []string{"[unterminated"}})
	require.Error(t, err)
}

// TestWalkSymlinks includes links to files and does not descend into links to directories.
func TestWalkSymlinks(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	outside := t.TempDir()
	writeTree(t, root, map[string]string{"real.txt": "real"})
	writeTree(t, outside, map[string]string{"hidden.txt": "hidden"})

	if err := os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	require.NoError(t, os.Symlink(outside, filepath.Join(root, "dirlink")))
	require.NoError(t, os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "dangling")))

	files, err := Walk(context.Background(), root, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"link.txt", "real.txt"}, paths(files))
}

// TestWalkBadRoot fails loudly for missing roots and plain files.
func TestWalkBadRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := Walk(context.Background(), filepath.Join(dir, "missing"), nil)
	require.ErrorIs(t, err, validate.ErrFolderNotFound)

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	_, err = Walk(context.Background(), file, nil)
	require.ErrorIs(t, err, validate.ErrNotADirectory)
}

// TestWalkUnreadableRoot keeps permission errors distinct from a missing folder.
func TestWalkUnreadableRoot(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" || os.Getuid() == 0 {
		t.Skip("permission bits do not block lookups here")
	}

	locked := filepath.Join(t.TempDir(), "locked")
	require.NoError(t, os.MkdirAll(filepath.Join(locked, "root"), 0o750))
	require.NoError(t, os.Chmod(locked, 0))

	t.Cleanup(func() { _ = os.Chmod(locked, 0o750) })

	_, err := Walk(context.Background(), filepath.Join(locked, "root"), nil)
	require.ErrorIs(t, err, fs.ErrPermission)
	require.NotErrorIs(t, err, validate.ErrFolderNotFound)
}

// TestWalkCanceled stops when the context is done.
func TestWalkCanceled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"a": "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Walk(ctx, root, nil)
	require.ErrorIs(t, err, context.Canceled)
}
