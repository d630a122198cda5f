// Package metadata writes the sidecar descriptor that sits next to the archive.
//
// The file is a single TOML key:
//
//	timestamp = 1700000000000
//
// holding the build time in milliseconds since the Unix epoch.
package metadata

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// Filename is the sidecar name in the output folder.
	Filename = "app_metadata.toml"

	// timestampKey is the only key in the sidecar.
	timestampKey = "timestamp"

	// fileMode is readable by the downstream build.
	fileMode = 0o644
)

var errNoTimestamp = errors.New("timestamp key not found")

// AppMetadata is the content of the sidecar file.
type AppMetadata struct {
	// Timestamp is the build time.
	Timestamp time.Time
}

// Write stores the sidecar for now in dir and returns its path.
func Write(dir string, now time.Time) (string, error) {
	path := filepath.Join(dir, Filename)
	contents := fmt.Sprintf("%s = %d\n", timestampKey, now.UnixMilli())

	if err := os.WriteFile(path, []byte(contents), fileMode); err != nil {
		return "", fmt.Errorf("write app metadata: %w", err)
	}

	return path, nil
}

// Read parses a sidecar written by Write.
func Read(path string) (*AppMetadata, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read app metadata: %w", err)
	}

	defer func() {
		_ = f.Close()
	}()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok || strings.TrimSpace(key) != timestampKey {
			continue
		}

		ms, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", timestampKey, err)
		}

		return &AppMetadata{Timestamp: time.UnixMilli(ms)}, nil
	}

	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("read app metadata: %w", err)
	}

	return nil, fmt.Errorf("%s: %w", path, errNoTimestamp)
}
