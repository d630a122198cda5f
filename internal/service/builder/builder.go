package builder

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/oshokin/portable-packer/internal/logger"
	"github.com/oshokin/portable-packer/internal/validate"
	"github.com/oshokin/portable-packer/internal/workdir"
)

var errNoCommand = errors.New("build command is empty")

// BuildError is returned when the build tool exits unsuccessfully.
type BuildError struct {
	// Args is the argument vector that was run.
	Args []string
	// ExitCode is the tool's exit status, or -1 if it did not start or was killed.
	ExitCode int
	// Output is the combined stdout and stderr of the tool.
	Output []byte
	// Err is the underlying exec error.
	Err error
}

func (e *BuildError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "build %q failed", strings.Join(e.Args, " "))

	if e.ExitCode >= 0 {
		fmt.Fprintf(&b, " with exit code %d", e.ExitCode)
	}

	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}

	if out := strings.TrimSpace(string(e.Output)); out != "" {
		b.WriteString("\n")
		b.WriteString(out)
	}

	return b.String()
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// Builder describes how to invoke the build tool.
type Builder struct {
	// Command is the base argument vector, for example cargo build --release.
	Command []string
	// TargetFlag is inserted before the target when one is given.
	TargetFlag string
	// Env is appended to the inherited environment of the tool.
	Env []string
}

// Args returns the argument vector for target. An empty target means the host default.
func (b *Builder) Args(target string) []string {
	args := append([]string(nil), b.Command...)
	if target != "" {
		args = append(args, b.TargetFlag, target)
	}

	return args
}

// Build runs the tool inside dir and waits for it to finish. The working
// directory of the process is switched to dir for the duration of the call
// and restored afterwards, whether the build succeeds or not.
func (b *Builder) Build(ctx context.Context, dir, target string) error {
	if len(b.Command) == 0 {
		return errNoCommand
	}

	target, err := validate.Target(target)
	if err != nil {
		return err
	}

	dir, err = validate.Folder(dir)
	if err != nil {
		return err
	}

	args := b.Args(target)

	logger.InfoKV(ctx, "Running build", "command", strings.Join(args, " "), "dir", dir)

	return workdir.Run(dir, func() error {
		//nolint:gosec // Arguments are an argv with a validated target, never a shell string.
		cmd := exec.CommandContext(ctx, args[0], args[1:]...)
		cmd.Dir = dir
		cmd.Env = append(cmd.Environ(), b.Env...)

		output, runErr := cmd.CombinedOutput()
		if runErr != nil {
			exitCode := -1

			var exitErr *exec.ExitError
			if errors.As(runErr, &exitErr) {
				exitCode = exitErr.ExitCode()
			}

			return &BuildError{
				Args:     args,
				ExitCode: exitCode,
				Output:   output,
				Err:      runErr,
			}
		}

		logger.DebugKV(ctx, "Build output", "output", string(output))

		return nil
	})
}
