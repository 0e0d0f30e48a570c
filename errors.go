package ips

import (
	"errors"
	"fmt"
)

var (
	ErrBadHeader          = errors.New("ips: not an IPS patch")
	ErrTruncated          = errors.New("ips: truncated patch stream")
	ErrInvalidLength      = errors.New("ips: invalid record length")
	ErrOffsetOutOfRange   = errors.New("ips: offset exceeds 24 bits")
	ErrValueTooLarge      = errors.New("ips: record length exceeds 16 bits")
	ErrAmbiguousEndMarker = errors.New("ips: offset collides with EOF marker")
	ErrOverlap            = errors.New("ips: record overlaps existing record")
	ErrIndexOutOfRange    = errors.New("ips: record index out of range")
	ErrIO                 = errors.New("ips: i/o failure")
	ErrClosed             = errors.New("ips: write to closed writer")
)

// RecordError annotates an error with the record it concerns. Index is the
// position of the record in its stream or patch, or -1 if unknown.
type RecordError struct {
	Index  int
	Offset uint32
	Err    error
}

func (e *RecordError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("record at 0x%06x: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("record %d at 0x%06x: %v", e.Index, e.Offset, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// ioErr marks err as an i/o failure while keeping it inspectable.
func ioErr(err error) error {
	if err == nil || errors.Is(err, ErrIO) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}
