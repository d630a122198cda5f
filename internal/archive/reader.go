package archive

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Reader decodes an archive record by record.
//
// After the header, the reader is always positioned on a record boundary.
// There it peeks len(Magic) bytes: the trailer ends the record list,
// anything else is parsed as a path length. Payload bytes are never searched.
type Reader struct {
	r          *bufio.Reader
	done       bool
	entryPoint string
}

// NewReader checks the header and returns a Reader positioned at the first record.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)

	header := make([]byte, len(Magic))
	if _, err := io.ReadFull(br, header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrBadMagic
		}

		return nil, err
	}

	if string(header) != Magic {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, header)
	}

	return &Reader{r: br}, nil
}

// Next returns the next record. After the last record it reads the trailer
// and the entry point and returns io.EOF.
func (r *Reader) Next() (*Entry, error) {
	if r.done {
		return nil, io.EOF
	}

	peek, err := r.r.Peek(len(Magic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	if len(peek) < len(Magic) {
		return nil, fmt.Errorf("%w: expected record or trailer", ErrTruncated)
	}

	if bytes.Equal(peek, []byte(Magic)) {
		return nil, r.readTrailer()
	}

	path, err := r.readField()
	if err != nil {
		return nil, fmt.Errorf("read path: %w", err)
	}

	if len(path) == 0 {
		return nil, ErrEmptyPath
	}

	data, err := r.readField()
	if err != nil {
		return nil, fmt.Errorf("read data of %s: %w", path, err)
	}

	checksum := make([]byte, ChecksumSize)
	if _, err = io.ReadFull(r.r, checksum); err != nil {
		return nil, fmt.Errorf("read checksum of %s: %w", path, truncated(err))
	}

	return &Entry{
		Path:     string(path),
		Data:     data,
		Checksum: checksum,
	}, nil
}

// EntryPoint returns the stored entry point. It is empty until Next has returned io.EOF.
func (r *Reader) EntryPoint() string {
	return r.entryPoint
}

func (r *Reader) readTrailer() error {
	if _, err := r.r.Discard(len(Magic)); err != nil {
		return err
	}

	rest, err := io.ReadAll(r.r)
	if err != nil {
		return fmt.Errorf("read entry point: %w", err)
	}

	r.entryPoint = string(rest)
	r.done = true

	return io.EOF
}

func (r *Reader) readField() ([]byte, error) {
	var length [lengthSize]byte
	if _, err := io.ReadFull(r.r, length[:]); err != nil {
		return nil, truncated(err)
	}

	n := binary.BigEndian.Uint32(length[:])

	// Grow as data arrives so a corrupt length cannot force a 4 GiB allocation up front.
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, r.r, int64(n)); err != nil {
		return nil, truncated(err)
	}

	return buf.Bytes(), nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}

	return err
}

// Archive is a fully decoded archive.
type Archive struct {
	Entries    []*Entry
	EntryPoint string
}

// Decode reads a whole archive from r.
func Decode(r io.Reader) (*Archive, error) {
	ar, err := NewReader(r)
	if err != nil {
		return nil, err
	}

	var out Archive

	for {
		e, err := ar.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, err
		}

		out.Entries = append(out.Entries, e)
	}

	out.EntryPoint = ar.EntryPoint()

	return &out, nil
}
