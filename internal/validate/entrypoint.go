package validate

import (
	"fmt"
	"path/filepath"
	"strings"
)

// EntryPoint resolves the executable the consumer should launch and returns it
// as a forward-slash path relative to root.
//
// root must already be resolved by Folder; folder is the source folder as the
// caller typed it. A relative executable is taken relative to root unless it
// lies below folder (as in "rustdesk/bin/app" for folder "./rustdesk"), in which
// case it is taken relative to the working directory. An executable named like
// the folder itself is a file inside root. The check is lexical: the result
// must lie strictly inside root.
func EntryPoint(root, folder, executable string) (string, error) {
	if executable == "" {
		return "", fmt.Errorf("%w: executable is empty", ErrEntryPointOutsideRoot)
	}

	var candidate string

	switch {
	case filepath.IsAbs(executable):
		candidate = resolveDir(filepath.Clean(executable))
	case folder != "" && hasPathPrefix(filepath.Clean(executable), filepath.Clean(folder)):
		abs, err := filepath.Abs(executable)
		if err != nil {
			return "", fmt.Errorf("resolve %q: %w", executable, err)
		}

		candidate = relocate(abs, folder, root)
	default:
		candidate = filepath.Join(root, executable)
	}

	rel, err := filepath.Rel(root, candidate)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is not inside %s", ErrEntryPointOutsideRoot, executable, root)
	}

	return filepath.ToSlash(rel), nil
}

// relocate rewrites abs, which lives under the unresolved folder, onto the resolved root.
// Without it a symlinked source folder would put every executable "outside" root.
func relocate(abs, folder, root string) string {
	folderAbs, err := filepath.Abs(folder)
	if err != nil {
		return abs
	}

	rel, err := filepath.Rel(folderAbs, abs)
	if err != nil {
		return abs
	}

	return filepath.Join(root, rel)
}

// resolveDir evaluates symlinks in the parent directory of path so it can be
// compared with a resolved root. The final element is left alone.
func resolveDir(path string) string {
	dir, err := filepath.EvalSymlinks(filepath.Dir(path))
	if err != nil {
		return path
	}

	return filepath.Join(dir, filepath.Base(path))
}

// hasPathPrefix reports whether path lies strictly below prefix, component-wise.
// A path equal to prefix names a file inside the folder, not the folder itself.
func hasPathPrefix(path, prefix string) bool {
	if prefix == "." || path == prefix {
		return false
	}

	return strings.HasPrefix(path, strings.TrimSuffix(prefix, string(filepath.Separator))+string(filepath.Separator))
}
