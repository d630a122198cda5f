package archive

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Writer encodes records in the order they are written.
// Nothing is sorted or deduplicated: two records with the same path are both
// written and the reader decides what that means.
type Writer struct {
	w        *bufio.Writer
	started  bool
	finished bool
	count    int
}

// NewWriter returns a Writer that encodes to w. The header is written lazily
// with the first record or by Finish.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Count returns the number of records written so far.
func (w *Writer) Count() int {
	return w.count
}

// WriteEntry appends one record.
func (w *Writer) WriteEntry(e *Entry) error {
	if w.finished {
		return ErrWriterFinished
	}

	if e.Path == "" {
		return ErrEmptyPath
	}

	if uint64(len(e.Path)) > maxFieldLength {
		return fmt.Errorf("%w: path of %d bytes", ErrEntryTooLarge, len(e.Path))
	}

	if uint64(len(e.Data)) > maxFieldLength {
		return fmt.Errorf("%w: %s has %d compressed bytes", ErrEntryTooLarge, e.Path, len(e.Data))
	}

	if len(e.Checksum) != ChecksumSize {
		return fmt.Errorf("%s: checksum is %d bytes, want %d", e.Path, len(e.Checksum), ChecksumSize)
	}

	if err := w.writeHeader(); err != nil {
		return err
	}

	if err := w.writeField([]byte(e.Path)); err != nil {
		return fmt.Errorf("write path of %s: %w", e.Path, err)
	}

	if err := w.writeField(e.Data); err != nil {
		return fmt.Errorf("write data of %s: %w", e.Path, err)
	}

	if _, err := w.w.Write(e.Checksum); err != nil {
		return fmt.Errorf("write checksum of %s: %w", e.Path, err)
	}

	w.count++

	return nil
}

// Finish writes the trailer and the entry point and flushes the buffer.
// It does not close the underlying writer.
func (w *Writer) Finish(entryPoint string) error {
	if w.finished {
		return ErrWriterFinished
	}

	if err := w.writeHeader(); err != nil {
		return err
	}

	w.finished = true

	if _, err := w.w.WriteString(Magic); err != nil {
		return fmt.Errorf("write trailer: %w", err)
	}

	if _, err := w.w.WriteString(entryPoint); err != nil {
		return fmt.Errorf("write entry point: %w", err)
	}

	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("flush archive: %w", err)
	}

	return nil
}

func (w *Writer) writeHeader() error {
	if w.started {
		return nil
	}

	w.started = true

	if _, err := w.w.WriteString(Magic); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	return nil
}

// writeField writes a big-endian uint32 length followed by b.
func (w *Writer) writeField(b []byte) error {
	var length [lengthSize]byte

	binary.BigEndian.PutUint32(length[:], uint32(len(b))) //nolint:gosec // Bounded by maxFieldLength above.

	if _, err := w.w.Write(length[:]); err != nil {
		return err
	}

	_, err := w.w.Write(b)

	return err
}

// Encode writes a complete archive of entries followed by entryPoint.
func Encode(w io.Writer, entries []*Entry, entryPoint string) error {
	aw := NewWriter(w)

	for _, e := range entries {
		if err := aw.WriteEntry(e); err != nil {
			return err
		}
	}

	return aw.Finish(entryPoint)
}
