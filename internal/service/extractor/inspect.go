package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/oshokin/portable-packer/internal/archive"
	"github.com/oshokin/portable-packer/internal/logger"
)

// FileInfo describes one record.
type FileInfo struct {
	// Path is the record path.
	Path string
	// CompressedSize is the payload length in the archive.
	CompressedSize int64
	// Size is the decompressed length; only set when verifying.
	Size int64
	// Checksum is the stored hex digest.
	Checksum string
}

// Report is the outcome of Inspect.
type Report struct {
	// Files lists records in archive order.
	Files []FileInfo
	// EntryPoint is the stored entry point.
	EntryPoint string
	// Verified reports whether every record was decompressed and checked.
	Verified bool
}

// Inspect reads the archive at path. With verify set, every record is
// decompressed and compared with its checksum and the first mismatch is returned.
func Inspect(ctx context.Context, path string, verify bool) (*Report, error) {
	ctx = logger.WithName(ctx, "portable-inspector")

	f, err := os.Open(filepath.Clean(path))
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

	report := &Report{Verified: verify}

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

		info := FileInfo{
			Path:           e.Path,
			CompressedSize: int64(len(e.Data)),
			Checksum:       string(e.Checksum),
		}

		if verify {
			contents, err := e.Contents()
			if err != nil {
				return nil, fmt.Errorf("%s: %w", e.Path, err)
			}

			info.Size = int64(len(contents))

			logger.DebugKV(ctx, "Verified", "path", e.Path, "size", info.Size)
		}

		report.Files = append(report.Files, info)
	}

	report.EntryPoint = r.EntryPoint()

	return report, nil
}
