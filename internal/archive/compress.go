package archive

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
)

const (
	// MinQuality is the fastest brotli quality.
	MinQuality = brotli.BestSpeed
	// MaxQuality is the slowest brotli quality and the packer default.
	MaxQuality = brotli.BestCompression
)

// ValidQuality reports whether q is a brotli quality level.
func ValidQuality(q int) bool {
	return q >= MinQuality && q <= MaxQuality
}

// Compress returns contents brotli-compressed at quality q.
func Compress(contents []byte, q int) ([]byte, error) {
	if !ValidQuality(q) {
		return nil, fmt.Errorf("compression level %d out of range %d..%d", q, MinQuality, MaxQuality)
	}

	var buf bytes.Buffer

	w := brotli.NewWriterLevel(&buf, q)
	if _, err := w.Write(contents); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress inflates a brotli stream produced by Compress.
func Decompress(data []byte) ([]byte, error) {
	contents, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}

	return contents, nil
}
