package validate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Folder resolves path to an absolute path with ".." collapsed and symlinks
// evaluated, then checks that the result is an existing directory.
// Callers must use the returned path, never the raw input.
func Folder(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", path, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrFolderNotFound, abs)
		}

		return "", fmt.Errorf("resolve %q: %w", path, err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrFolderNotFound, resolved)
		}

		return "", fmt.Errorf("stat %s: %w", resolved, err)
	}

	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotADirectory, resolved)
	}

	return resolved, nil
}
