package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestChecksumKnownValue pins the digest encoding to lowercase hex MD5.
func TestChecksumKnownValue(t *testing.T) {
	t.Parallel()

	require.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", string(Checksum(nil)))
	require.Equal(t, "900150983cd24fb0d6963f7d28e17f72", string(Checksum([]byte("abc"))))
	require.Len(t, Checksum([]byte("anything")), ChecksumSize)
}

// TestFileChecksum compares the streaming file digest with the in-memory one.
func TestFileChecksum(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "f.bin")
	require.NoError(t, os.WriteFile(path, []byte("AAAAAAAAAA"), 0o600))

	got, err := FileChecksum(path)
	require.NoError(t, err)
	require.Equal(t, Checksum([]byte("AAAAAAAAAA")), got)

	_, err = FileChecksum(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestDecodeChecksum converts hex digests back to raw bytes.
func TestDecodeChecksum(t *testing.T) {
	t.Parallel()

	raw, err := DecodeChecksum(Checksum([]byte("abc")))
	require.NoError(t, err)
	require.Len(t, raw, 16)
	require.Equal(t, byte(0x90), raw[0])

	_, err = DecodeChecksum([]byte("abc"))
	require.ErrorIs(t, err, ErrChecksumMismatch)

	_, err = DecodeChecksum([]byte("zz0150983cd24fb0d6963f7d28e17f72"))
	require.Error(t, err)
}

// TestCompressQuality covers the quality bounds and the round trip at every level.
func TestCompressQuality(t *testing.T) {
	t.Parallel()

	contents := []byte("AAAAAAAAAA")

	for q := MinQuality; q <= MaxQuality; q++ {
		data, err := Compress(contents, q)
		require.NoError(t, err, q)

		back, err := Decompress(data)
		require.NoError(t, err, q)
		require.Equal(t, contents, back, q)
	}

	_, err := Compress(contents, -1)
	require.Error(t, err)

	_, err = Compress(contents, 12)
	require.Error(t, err)

	require.True(t, ValidQuality(0))
	require.True(t, ValidQuality(11))
	require.False(t, ValidQuality(12))
}
