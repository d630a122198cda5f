package extractor

import (
	"bytes"
	"context"
	"crypto"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/portable-packer/internal/archive"
	"github.com/oshokin/portable-packer/internal/logger"
	"github.com/oshokin/portable-packer/internal/service/common"
	"github.com/oshokin/portable-packer/internal/validate"
)

const (
	// fileMode is used for ordinary restored files.
	fileMode os.FileMode = 0o644
	// executableMode is used for the entry point.
	executableMode os.FileMode = 0o755
	// dirMode is used for restored directories.
	dirMode os.FileMode = 0o755
)

var (
	// ErrUnsafePath is returned for a record path that would land outside the destination.
	ErrUnsafePath = errors.New("record path escapes the destination")
	// ErrExecutableRunning is returned when a file to replace is a running executable.
	ErrExecutableRunning = errors.New("executable is running")
)

// Options are inputs accepted by Extract.
type Options struct {
	// ArchivePath is the data.bin to restore from.
	ArchivePath string
	// Destination is the extraction root; it is created if missing.
	Destination string
	// Force rewrites files even when their checksum already matches.
	Force bool
}

// Result summarizes an extraction.
type Result struct {
	// Destination is the resolved extraction root.
	Destination string
	// EntryPoint is the absolute path of the executable to launch.
	EntryPoint string
	// Written counts files that were created or replaced.
	Written int
	// Skipped counts files that were already up to date.
	Skipped int
}

// Extract restores the archive into opts.Destination.
func Extract(ctx context.Context, opts *Options) (*Result, error) {
	ctx = logger.WithName(ctx, "portable-extractor")

	if err := os.MkdirAll(opts.Destination, dirMode); err != nil {
		return nil, fmt.Errorf("create destination: %w", err)
	}

	dest, err := validate.Folder(opts.Destination)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Clean(opts.ArchivePath))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	defer func() {
		_ = f.Close()
	}()

	r, err := archive.NewReader(f)
	if err != nil {
		return nil, err
	}

	// The entry point is only known after the last record, so restore
	// everything first and fix its mode at the end.
	result := &Result{Destination: dest}

	for {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		var e *archive.Entry

		e, err = r.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, err
		}

		var written bool

		written, err = restore(ctx, dest, e, opts.Force)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Path, err)
		}

		if written {
			result.Written++
		} else {
			result.Skipped++
		}
	}

	entryPoint, err := safeJoin(dest, r.EntryPoint())
	if err != nil {
		return nil, fmt.Errorf("entry point: %w", err)
	}

	result.EntryPoint = entryPoint

	if err = os.Chmod(entryPoint, executableMode); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("make entry point executable: %w", err)
	}

	logger.InfoKV(ctx, "Extraction completed",
		"destination", dest, "written", result.Written, "skipped", result.Skipped)

	return result, nil
}

// restore writes one record unless the file on disk already has its checksum.
func restore(ctx context.Context, dest string, e *archive.Entry, force bool) (bool, error) {
	target, err := safeJoin(dest, e.Path)
	if err != nil {
		return false, err
	}

	if !force {
		if current, err := archive.FileChecksum(target); err == nil && bytes.Equal(current, e.Checksum) {
			logger.DebugKV(ctx, "Skip", "path", e.Path)
			return false, nil
		}
	}

	if err = ensureNotRunning(target); err != nil {
		return false, err
	}

	contents, err := e.Contents()
	if err != nil {
		return false, err
	}

	digest, err := archive.DecodeChecksum(e.Checksum)
	if err != nil {
		return false, err
	}

	if err = os.MkdirAll(filepath.Dir(target), dirMode); err != nil {
		return false, err
	}

	// go-update swaps the file in by rename, so the target has to exist.
	if _, err = os.Stat(target); errors.Is(err, os.ErrNotExist) {
		var placeholder *os.File

		if placeholder, err = os.OpenFile(target, os.O_CREATE|os.O_WRONLY, fileMode); err != nil {
			return false, err
		}

		if err = placeholder.Close(); err != nil {
			return false, err
		}
	}

	logger.DebugKV(ctx, "Writing", "path", target)

	err = goupdate.Apply(bytes.NewReader(contents), goupdate.Options{
		TargetPath: target,
		TargetMode: fileMode,
		Checksum:   digest,
		Hash:       crypto.MD5,
	})
	if err != nil {
		return false, fmt.Errorf("apply: %w", err)
	}

	return true, nil
}

// ensureNotRunning refuses to replace an executable that has a live process.
func ensureNotRunning(target string) error {
	if _, err := os.Stat(target); err != nil {
		return nil //nolint:nilerr // Nothing to replace, so nothing can be running from it.
	}

	pids, err := common.RunningProcesses(target)
	if err != nil || len(pids) == 0 {
		return nil //nolint:nilerr // The process table is advisory.
	}

	if !isExecutable(target) {
		return nil
	}

	return fmt.Errorf("%w: %s (pids %v)", ErrExecutableRunning, filepath.Base(target), pids)
}

func isExecutable(path string) bool {
	if strings.EqualFold(filepath.Ext(path), ".exe") {
		return true
	}

	info, err := os.Stat(path)

	return err == nil && info.Mode().Perm()&0o111 != 0
}

// safeJoin joins a record path onto dest and rejects anything that escapes it.
func safeJoin(dest, rel string) (string, error) {
	if rel == "" || filepath.IsAbs(filepath.FromSlash(rel)) || strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, rel)
	}

	target := filepath.Join(dest, filepath.FromSlash(rel))

	back, err := filepath.Rel(dest, target)
	if err != nil || back == "." || back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, rel)
	}

	return target, nil
}
