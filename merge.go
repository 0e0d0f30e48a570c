package ips

// Conflict finds the records of p1 and p2 that write to the same target
// bytes. c1[k] and c2[k] are the k-th overlapping pair.
func Conflict(p1, p2 *Patch) (c1, c2 []Record) {
	i, j := 0, 0
	for i < len(p1.records) && j < len(p2.records) {
		w1, w2 := p1.records[i], p2.records[j]
		if w1.overlaps(w2) {
			c1 = append(c1, w1)
			c2 = append(c2, w2)
		}
		switch end1, end2 := w1.End(), w2.End(); {
		case end1 < end2:
			i++
		case end1 > end2:
			j++
		default:
			i++
			j++
		}
	}
	return c1, c2
}

// Merge combines the records of p1 and p2 into a new patch. The patches must
// not conflict.
func Merge(p1, p2 *Patch) (*Patch, error) {
	merged := &Patch{records: make([]Record, 0, len(p1.records)+len(p2.records))}
	i, j := 0, 0
	for i < len(p1.records) || j < len(p2.records) {
		var next Record
		if j >= len(p2.records) || i < len(p1.records) && p1.records[i].start < p2.records[j].start {
			next = p1.records[i]
			i++
		} else {
			next = p2.records[j]
			j++
		}
		if n := len(merged.records); n > 0 && merged.records[n-1].overlaps(next) {
			return nil, &RecordError{Index: n - 1, Offset: next.start, Err: ErrOverlap}
		}
		merged.records = append(merged.records, next)
	}
	return merged, nil
}
