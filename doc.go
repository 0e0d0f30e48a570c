// Package ips reads, writes and applies IPS patches.
//
// An IPS patch is the literal "PATCH", a sequence of records, and the literal
// "EOF". Each record is a 3-byte big-endian offset and a 2-byte size followed
// by size bytes of data, or, when size is zero, a 2-byte repeat count and a
// fill byte. Because the footer occupies the slot of an offset, the offset
// 0x454f46 cannot be written; Encode rejects it.
//
// A Patch keeps its records sorted and free of overlaps. Apply replays the
// records onto a target in offset order, zero filling any gap between the
// end of the target and the next record.
//
// The package does no logging and makes no attempt at atomic output. ApplyAt
// writes in place as it goes, so a failure can leave the destination half
// patched. Apply to a temporary copy and rename it over the original when
// that matters.
package ips
