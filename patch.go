package ips

import (
	"iter"
	"slices"
	"sort"
)

// Patch is an ordered set of records. Records are kept sorted by offset and
// no two records cover the same target byte. The zero value is an empty
// patch ready to use.
type Patch struct {
	records []Record
}

// Insert adds r to the patch in offset order. If r overlaps a record already
// in the patch, the patch is left unchanged and the error wraps ErrOverlap.
// An empty record, such as the zero Record, is rejected with ErrInvalidLength.
func (p *Patch) Insert(r Record) error {
	if r.num == 0 {
		return &RecordError{Index: -1, Offset: r.start, Err: ErrInvalidLength}
	}
	i := sort.Search(len(p.records), func(i int) bool {
		return p.records[i].start > r.start
	})
	// Ranges are disjoint and sorted, so only the neighbours can intersect r.
	if i > 0 && p.records[i-1].overlaps(r) {
		return &RecordError{Index: i - 1, Offset: r.start, Err: ErrOverlap}
	}
	if i < len(p.records) && p.records[i].overlaps(r) {
		return &RecordError{Index: i, Offset: r.start, Err: ErrOverlap}
	}
	p.records = slices.Insert(p.records, i, r)
	return nil
}

// Remove deletes and returns the record at index i.
func (p *Patch) Remove(i int) (Record, error) {
	if i < 0 || i >= len(p.records) {
		return Record{}, &RecordError{Index: i, Err: ErrIndexOutOfRange}
	}
	r := p.records[i]
	p.records = slices.Delete(p.records, i, i+1)
	return r, nil
}

func (p *Patch) At(i int) (Record, error) {
	if i < 0 || i >= len(p.records) {
		return Record{}, &RecordError{Index: i, Err: ErrIndexOutOfRange}
	}
	return p.records[i], nil
}

// Len is the number of records in the patch.
func (p *Patch) Len() int {
	return len(p.records)
}

// All iterates the records in ascending offset order.
func (p *Patch) All() iter.Seq2[int, Record] {
	return func(yield func(int, Record) bool) {
		for i, r := range p.records {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Records returns a copy of the record list.
func (p *Patch) Records() []Record {
	return slices.Clone(p.records)
}

// Size is the smallest target length that holds every record.
func (p *Patch) Size() int64 {
	var n int64
	for _, r := range p.records {
		n = max(n, r.End())
	}
	return n
}

func (p *Patch) Equal(o *Patch) bool {
	return slices.EqualFunc(p.records, o.records, Record.Equal)
}
