package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestEntryPoint checks resolution of relative, prefixed and absolute executables.
func TestEntryPoint(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "rustdesk")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "bin"), 0o750))

	root, err := Folder(src)
	require.NoError(t, err)

	cases := map[string]string{
		"app.exe":                 "app.exe",
		"bin/app":                 "bin/app",
		"./bin/../app.exe":        "app.exe",
		filepath.Join(src, "app"): "app",
		filepath.Join(root, "bin", "app"): "bin/app",
	}

	for executable, want := range cases {
		got, err := EntryPoint(root, src, executable)
		require.NoError(t, err, executable)
		require.Equal(t, want, got, executable)
	}
}

// TestEntryPointFolderPrefix mirrors the CLI case where the executable is given with the folder prefix.
func TestEntryPointFolderPrefix(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "rustdesk", "sub"), 0o750))

	t.Chdir(dir)

	root, err := Folder("./rustdesk")
	require.NoError(t, err)

	got, err := EntryPoint(root, "./rustdesk", "rustdesk/sub/app.exe")
	require.NoError(t, err)
	require.Equal(t, "sub/app.exe", got)

	got, err = EntryPoint(root, "./rustdesk", "rustdesk.exe")
	require.NoError(t, err)
	require.Equal(t, "rustdesk.exe", got)
}

// TestEntryPointNamedLikeFolder resolves a binary that shares its folder's name inside that folder.
func TestEntryPointNamedLikeFolder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "rustdesk"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rustdesk", "rustdesk"), nil, 0o600))

	t.Chdir(dir)

	root, err := Folder("./rustdesk")
	require.NoError(t, err)

	cases := map[string]string{
		"rustdesk":          "rustdesk",
		"./rustdesk":        "rustdesk",
		"rustdesk/":         "rustdesk",
		"rustdesk/rustdesk": "rustdesk",
	}

	for executable, want := range cases {
		got, err := EntryPoint(root, "./rustdesk", executable)
		require.NoError(t, err, executable)
		require.Equal(t, want, got, executable)
	}

	got, err := EntryPoint(root, "rustdesk", "rustdesk")
	require.NoError(t, err)
	require.Equal(t, "rustdesk", got)
}

func TestHasPathPrefix(t *testing.T) {
	t.Parallel()

	sep := string(filepath.Separator)

	require.True(t, hasPathPrefix("app"+sep+"bin", "app"))
	require.True(t, hasPathPrefix("app"+sep+"bin", "app"+sep))
	require.False(t, hasPathPrefix("app", "app"))
	require.False(t, hasPathPrefix("application", "app"))
	require.False(t, hasPathPrefix("app", "."))
}

// TestEntryPointOutsideRoot rejects anything that escapes the source folder.
func TestEntryPointOutsideRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.Mkdir(src, 0o750))

	root, err := Folder(src)
	require.NoError(t, err)

	for _, executable := range []string{
		"",
		".",
		"..",
		"../outside.exe",
		"a/../../outside.exe",
		filepath.Join(dir, "outside.exe"),
		filepath.Join(src+"-sibling", "app.exe"),
		string(filepath.Separator) + filepath.Join("etc", "passwd"),
	} {
		_, err := EntryPoint(root, src, executable)
		require.ErrorIs(t, err, ErrEntryPointOutsideRoot, "%q", executable)
	}
}
