package ips

import (
	"bytes"
	"io"
)

// zeroes is the chunk used to fill gaps between the end of the target and
// the next record.
var zeroes [4096]byte

// ApplyAt applies p to w, which holds a target of the given logical size.
// Records that start beyond the current end are preceded by zero bytes up to
// their offset. ApplyAt returns the new logical size.
//
// Writes go directly to w. If ApplyAt fails, w may hold a partially patched
// target; callers that need atomicity should apply to a temporary copy and
// replace the original only on success.
func ApplyAt(w io.WriterAt, size int64, p *Patch) (int64, error) {
	for i, r := range p.records {
		if org := int64(r.start); org > size {
			if err := fill(w, size, org); err != nil {
				return size, &RecordError{Index: i, Offset: r.start, Err: err}
			}
			size = org
		}
		if err := r.WriteAt(w); err != nil {
			return size, &RecordError{Index: i, Offset: r.start, Err: err}
		}
		size = max(size, r.End())
	}
	return size, nil
}

func fill(w io.WriterAt, from, to int64) error {
	for from < to {
		n := min(to-from, int64(len(zeroes)))
		if _, err := w.WriteAt(zeroes[:n], from); err != nil {
			return ioErr(err)
		}
		from += n
	}
	return nil
}

// Apply applies p to a copy of src and returns the patched bytes. src is not
// modified.
func Apply(p *Patch, src []byte) ([]byte, error) {
	b := &buffer{b: bytes.Clone(src)}
	n, err := ApplyAt(b, int64(len(src)), p)
	if err != nil {
		return nil, err
	}
	return b.b[:n], nil
}

// buffer is an in-memory io.WriterAt that grows to fit writes.
type buffer struct {
	b []byte
}

func (b *buffer) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, io.ErrShortWrite
	}
	if end := int(off) + len(p); end > len(b.b) {
		b.b = append(b.b, make([]byte, end-len(b.b))...)
	}
	return copy(b.b[off:], p), nil
}
