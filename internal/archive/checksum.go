package archive

import (
	"bytes"
	"crypto/md5" //nolint:gosec // The runtime reader expects MD5; it guards extraction, not authenticity.
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ChecksumSize is the width of the checksum field: a 128-bit digest in hex.
const ChecksumSize = md5.Size * 2

// Checksum returns the hex-encoded MD5 digest of contents.
func Checksum(contents []byte) []byte {
	sum := md5.Sum(contents) //nolint:gosec // See import comment.

	out := make([]byte, ChecksumSize)
	hex.Encode(out, sum[:])

	return out
}

// FileChecksum streams the file at path through MD5 and returns the hex digest.
func FileChecksum(path string) ([]byte, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = f.Close()
	}()

	h := md5.New() //nolint:gosec // See import comment.
	if _, err = io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("hash %s: %w", path, err)
	}

	out := make([]byte, ChecksumSize)
	hex.Encode(out, h.Sum(nil))

	return out, nil
}

// DecodeChecksum converts a stored hex checksum back to the raw 16-byte digest.
func DecodeChecksum(checksum []byte) ([]byte, error) {
	if len(checksum) != ChecksumSize {
		return nil, fmt.Errorf("%w: checksum is %d bytes, want %d", ErrChecksumMismatch, len(checksum), ChecksumSize)
	}

	raw := make([]byte, md5.Size)
	if _, err := hex.Decode(raw, checksum); err != nil {
		return nil, fmt.Errorf("decode checksum: %w", err)
	}

	return raw, nil
}

// VerifyChecksum reports ErrChecksumMismatch when contents do not hash to want.
func VerifyChecksum(contents, want []byte) error {
	got := Checksum(contents)
	if !bytes.Equal(got, want) {
		return fmt.Errorf("%w: got %s, want %s", ErrChecksumMismatch, got, want)
	}

	return nil
}
