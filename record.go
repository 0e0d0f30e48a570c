package ips

import (
	"bytes"
	"fmt"
	"io"
)

const (
	MaxOffset = 0xFFFFFF
	MaxLen    = 0xFFFF
	// EOFOffset is the offset whose encoding is the footer, "EOF".
	EOFOffset = 0x454f46
)

// Record is a single write of a patch. A plain record carries its payload;
// an RLE record repeats one fill byte. Records are immutable.
type Record struct {
	start uint32
	num   uint16
	rle   bool
	fill  byte
	data  []byte
}

// NewRecord creates a plain record writing data at offset. The data is
// copied.
func NewRecord(offset uint32, data []byte) (Record, error) {
	if offset > MaxOffset {
		return Record{}, &RecordError{Index: -1, Offset: offset, Err: ErrOffsetOutOfRange}
	}
	if len(data) == 0 {
		// A zero size on the wire means the record is RLE.
		return Record{}, &RecordError{Index: -1, Offset: offset, Err: ErrInvalidLength}
	}
	if len(data) > MaxLen {
		return Record{}, &RecordError{Index: -1, Offset: offset, Err: ErrValueTooLarge}
	}
	return Record{start: offset, num: uint16(len(data)), data: bytes.Clone(data)}, nil
}

// NewRLE creates a record writing fill n times at offset.
func NewRLE(offset uint32, n uint16, fill byte) (Record, error) {
	if offset > MaxOffset {
		return Record{}, &RecordError{Index: -1, Offset: offset, Err: ErrOffsetOutOfRange}
	}
	if n == 0 {
		return Record{}, &RecordError{Index: -1, Offset: offset, Err: ErrInvalidLength}
	}
	return Record{start: offset, num: n, rle: true, fill: fill}, nil
}

func (r Record) Offset() uint32 {
	return r.start
}

// Len is the number of target bytes the record covers.
func (r Record) Len() int {
	return int(r.num)
}

// End is the offset one past the last byte the record writes.
func (r Record) End() int64 {
	return int64(r.start) + int64(r.num)
}

func (r Record) RLE() bool {
	return r.rle
}

// Fill is the repeated byte of an RLE record, zero for plain records.
func (r Record) Fill() byte {
	return r.fill
}

// Data returns a copy of the bytes the record writes, expanding RLE runs.
func (r Record) Data() []byte {
	if r.rle {
		return bytes.Repeat([]byte{r.fill}, int(r.num))
	}
	return bytes.Clone(r.data)
}

func (r Record) Equal(o Record) bool {
	if r.start != o.start || r.num != o.num || r.rle != o.rle {
		return false
	}
	if r.rle {
		return r.fill == o.fill
	}
	return bytes.Equal(r.data, o.data)
}

// overlaps is the half-open interval intersection test.
func (r Record) overlaps(o Record) bool {
	return max(int64(r.start), int64(o.start)) < min(r.End(), o.End())
}

// WriteAt writes the record's bytes to w at the record's offset.
func (r Record) WriteAt(w io.WriterAt) error {
	p := r.data
	if r.rle {
		p = r.Data()
	}
	if _, err := w.WriteAt(p, int64(r.start)); err != nil {
		return ioErr(err)
	}
	return nil
}

func (r Record) String() string {
	if r.rle {
		return fmt.Sprintf("IPS RLE: %#02x written to 0x%06x %d times", r.fill, r.start, r.num)
	}
	return fmt.Sprintf("IPS data: %d bytes written to 0x%06x", r.num, r.start)
}
