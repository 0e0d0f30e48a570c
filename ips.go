package ips

import (
	"bufio"
	"errors"
	"io"
)

const (
	Header = "PATCH"
	Footer = "EOF"
)

// Reader reads records from an IPS stream one at a time.
type Reader struct {
	r      io.Reader
	p      [MaxLen]byte // large enough to hold any single write
	n      int
	header bool
	err    error // first error, returned by every later call
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (rd *Reader) read(n int) ([]byte, error) {
	m, err := io.ReadFull(rd.r, rd.p[:n])
	switch {
	case err == nil:
		return rd.p[:m], nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return nil, ErrTruncated
	default:
		return nil, ioErr(err)
	}
}

func (rd *Reader) readHeader() error {
	p, err := rd.read(len(Header))
	if err != nil {
		return err
	}
	if string(p) != Header {
		return ErrBadHeader
	}
	rd.header = true
	return nil
}

// Next returns the next record in the stream. It returns io.EOF after the
// footer has been read. A stream that ends before its footer is truncated.
// Errors are terminal: once Next fails, it returns the same error forever.
func (rd *Reader) Next() (Record, error) {
	if rd.err != nil {
		return Record{}, rd.err
	}
	r, err := rd.next()
	if err != nil {
		rd.err = err
	}
	return r, err
}

func (rd *Reader) next() (Record, error) {
	if !rd.header {
		if err := rd.readHeader(); err != nil {
			return Record{}, err
		}
	}
	p, err := rd.read(3)
	if err != nil {
		return Record{}, err
	}
	org := uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])
	if org == EOFOffset {
		return Record{}, io.EOF
	}
	idx := rd.n
	wrap := func(err error) error {
		return &RecordError{Index: idx, Offset: org, Err: err}
	}
	if p, err = rd.read(2); err != nil {
		return Record{}, wrap(err)
	}
	num := uint16(p[0])<<8 | uint16(p[1])
	if num == 0 { // RLE
		if p, err = rd.read(3); err != nil {
			return Record{}, wrap(err)
		}
		num = uint16(p[0])<<8 | uint16(p[1])
		if num == 0 {
			return Record{}, wrap(ErrInvalidLength)
		}
		rd.n++
		return Record{start: org, num: num, rle: true, fill: p[2]}, nil
	}
	if p, err = rd.read(int(num)); err != nil {
		return Record{}, wrap(err)
	}
	rd.n++
	return Record{start: org, num: num, data: append([]byte(nil), p...)}, nil
}

// Decode reads a complete IPS patch from r. Either the whole patch is
// returned or nothing is.
func Decode(r io.Reader) (*Patch, error) {
	rd := NewReader(bufio.NewReader(r))
	patch := new(Patch)
	for {
		rec, err := rd.Next()
		if err == io.EOF {
			return patch, nil
		}
		if err != nil {
			return nil, err
		}
		if err := patch.Insert(rec); err != nil {
			return nil, &RecordError{Index: rd.n - 1, Offset: rec.start, Err: ErrOverlap}
		}
	}
}

// Writer writes records in IPS framing. The header is written with the first
// record; Close writes the footer.
type Writer struct {
	w      io.Writer
	n      int
	header bool
	closed bool
	buf    [8]byte
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (wr *Writer) write(p []byte) error {
	if _, err := wr.w.Write(p); err != nil {
		return ioErr(err)
	}
	return nil
}

func (wr *Writer) writeHeader() error {
	if wr.header {
		return nil
	}
	if err := wr.write([]byte(Header)); err != nil {
		return err
	}
	wr.header = true
	return nil
}

// check reports why r cannot be written, if it can't.
func check(r Record) error {
	switch {
	case r.start > MaxOffset:
		return ErrOffsetOutOfRange
	case r.start == EOFOffset:
		return ErrAmbiguousEndMarker
	case r.num == 0:
		return ErrInvalidLength
	case !r.rle && len(r.data) != int(r.num):
		return ErrInvalidLength
	}
	return nil
}

func (wr *Writer) WriteRecord(r Record) error {
	if wr.closed {
		return ErrClosed
	}
	if err := check(r); err != nil {
		return &RecordError{Index: wr.n, Offset: r.start, Err: err}
	}
	if err := wr.writeHeader(); err != nil {
		return err
	}
	b := wr.buf[:]
	b[0], b[1], b[2] = byte(r.start>>16), byte(r.start>>8), byte(r.start)
	if r.rle {
		b[3], b[4] = 0, 0
		b[5], b[6] = byte(r.num>>8), byte(r.num)
		b[7] = r.fill
		if err := wr.write(b); err != nil {
			return err
		}
	} else {
		b[3], b[4] = byte(r.num>>8), byte(r.num)
		if err := wr.write(b[:5]); err != nil {
			return err
		}
		if err := wr.write(r.data); err != nil {
			return err
		}
	}
	wr.n++
	return nil
}

// Close writes the footer. It does not close the underlying writer. Closing
// an already closed Writer does nothing.
func (wr *Writer) Close() error {
	if wr.closed {
		return nil
	}
	if err := wr.writeHeader(); err != nil {
		return err
	}
	if err := wr.write([]byte(Footer)); err != nil {
		return err
	}
	wr.closed = true
	return nil
}

// Encode writes p to w as an IPS patch. Every record is validated before
// anything is written.
func Encode(w io.Writer, p *Patch) error {
	for i, r := range p.records {
		if err := check(r); err != nil {
			return &RecordError{Index: i, Offset: r.start, Err: err}
		}
	}
	bw := bufio.NewWriter(w)
	wr := NewWriter(bw)
	for _, r := range p.records {
		if err := wr.WriteRecord(r); err != nil {
			return err
		}
	}
	if err := wr.Close(); err != nil {
		return err
	}
	return ioErr(bw.Flush())
}
