// Package walker enumerates the regular files of a source tree.
package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/oshokin/portable-packer/internal/validate"
)

// File is one regular file found under the root.
type File struct {
	// Path is relative to the root, with forward slashes and no leading "./".
	Path string
	// FullPath is the on-disk location used to read the file.
	FullPath string
}

// Options tune a walk.
type Options struct {
	// Exclude holds doublestar patterns matched against File.Path.
	// A matching directory is skipped with everything below it.
	Exclude []string
}

// Walk returns every regular file below root in lexical order.
// Symlinks to regular files are included; symlinks to directories are not followed.
// A missing root or a root that is not a directory is an error.
func Walk(ctx context.Context, root string, opts *Options) ([]File, error) {
	if opts == nil {
		opts = new(Options)
	}

	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, doublestar.ErrBadPattern)
		}
	}

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", validate.ErrFolderNotFound, root)
		}

		return nil, fmt.Errorf("stat %s: %w", root, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", validate.ErrNotADirectory, root)
	}

	var files []File

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		rel = filepath.ToSlash(rel)

		if excluded(opts.Exclude, rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		regular, err := isRegular(path, d)
		if err != nil {
			return err
		}

		if regular {
			files = append(files, File{Path: rel, FullPath: path})
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return files, nil
}

// isRegular reports whether the entry is a regular file or a symlink to one.
// Dangling symlinks are skipped.
func isRegular(path string, d fs.DirEntry) (bool, error) {
	if d.Type().IsRegular() {
		return true, nil
	}

	if d.Type()&fs.ModeSymlink == 0 {
		return false, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, err
	}

	return info.Mode().IsRegular(), nil
}

func excluded(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if doublestar.MatchUnvalidated(pattern, rel) {
			return true
		}
	}

	return false
}
