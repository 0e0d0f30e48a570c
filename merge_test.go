package ips

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConflict(t *testing.T) {
	p1 := patchOf(t, rle(t, 0, 4), rle(t, 10, 10), rle(t, 40, 2))
	p2 := patchOf(t, rle(t, 4, 2), rle(t, 12, 1), rle(t, 18, 5), rle(t, 41, 1))
	c1, c2 := Conflict(p1, p2)
	require.Len(t, c1, 3)
	require.Len(t, c2, 3)
	assert.Equal(t, []uint32{10, 10, 40}, []uint32{c1[0].Offset(), c1[1].Offset(), c1[2].Offset()})
	assert.Equal(t, []uint32{12, 18, 41}, []uint32{c2[0].Offset(), c2[1].Offset(), c2[2].Offset()})
}

func TestConflictNone(t *testing.T) {
	c1, c2 := Conflict(patchOf(t, rle(t, 0, 4)), patchOf(t, rle(t, 4, 4)))
	assert.Empty(t, c1)
	assert.Empty(t, c2)
	c1, _ = Conflict(new(Patch), patchOf(t, rle(t, 4, 4)))
	assert.Empty(t, c1)
}

func TestMerge(t *testing.T) {
	p1 := patchOf(t, rle(t, 0, 4), rle(t, 20, 4))
	p2 := patchOf(t, rle(t, 4, 4), rle(t, 30, 1))
	m, err := Merge(p1, p2)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 4, 20, 30}, offsets(m))
	assert.Equal(t, 2, p1.Len(), "inputs are not modified")

	_, err = Merge(p1, patchOf(t, rle(t, 2, 1)))
	assert.ErrorIs(t, err, ErrOverlap)
	_, err = Merge(p1, patchOf(t, rle(t, 0, 1)))
	assert.ErrorIs(t, err, ErrOverlap)
}
