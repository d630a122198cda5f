package packer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/portable-packer/internal/archive"
)

// archiveFileMode is the permission of the written archive.
const archiveFileMode = 0o644

// writeArchive encodes the archive into a temporary file next to path and
// renames it into place once it is flushed and synced. On any error the
// temporary file is removed and path is left untouched.
func writeArchive(path string, entries []*archive.Entry, entryPoint string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = archive.Encode(tmp, entries, entryPoint); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}

	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync archive: %w", err)
	}

	if err = tmp.Chmod(archiveFileMode); err != nil && !errors.Is(err, errors.ErrUnsupported) {
		return fmt.Errorf("chmod archive: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename archive: %w", err)
	}

	return nil
}
