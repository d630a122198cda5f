package archive

import (
	"errors"
	"math"
)

const (
	// Magic marks both the start of the record list and its end.
	Magic = "rustdesk"

	// DefaultFilename is the name the archive gets in the output folder.
	DefaultFilename = "data.bin"

	// lengthSize is the width of the path and data length fields.
	lengthSize = 4

	// maxFieldLength is the largest path or payload a length field can describe.
	maxFieldLength = math.MaxUint32
)

var (
	// ErrBadMagic is returned when the archive does not start with Magic.
	ErrBadMagic = errors.New("not a portable archive: bad magic")
	// ErrTruncated is returned when the archive ends in the middle of a record or before the trailer.
	ErrTruncated = errors.New("archive is truncated")
	// ErrEntryTooLarge is returned when a path or payload does not fit a 32-bit length field.
	ErrEntryTooLarge = errors.New("entry exceeds 4 GiB length field")
	// ErrChecksumMismatch is returned when decompressed contents do not match the stored checksum.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrWriterFinished is returned when a record is written after the trailer.
	ErrWriterFinished = errors.New("archive writer already finished")
	// ErrEmptyPath is returned for a record without a path.
	ErrEmptyPath = errors.New("entry path is empty")
)

// Entry is one packed file.
type Entry struct {
	// Path is the forward-slash path relative to the packed root.
	Path string
	// Data holds the brotli-compressed contents.
	Data []byte
	// Checksum is the hex MD5 of the uncompressed contents, ChecksumSize bytes long.
	Checksum []byte
}

// NewEntry compresses contents at the given quality and returns a ready-to-write entry.
func NewEntry(path string, contents []byte, quality int) (*Entry, error) {
	data, err := Compress(contents, quality)
	if err != nil {
		return nil, err
	}

	return &Entry{
		Path:     path,
		Data:     data,
		Checksum: Checksum(contents),
	}, nil
}

// Contents decompresses the entry and verifies it against the stored checksum.
func (e *Entry) Contents() ([]byte, error) {
	contents, err := Decompress(e.Data)
	if err != nil {
		return nil, err
	}

	if err = VerifyChecksum(contents, e.Checksum); err != nil {
		return nil, err
	}

	return contents, nil
}
