package region

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCacheAllocateFormatsFirstSlabOnDemand(t *testing.T) {
	r := newTestRegion(t, 16*PageSize)
	c := r.header.cache(0) // size-8

	require.Equal(t, NullOffset, c.listHead(listFull))
	require.Equal(t, NullOffset, c.listHead(listPartial))
	require.Equal(t, NullOffset, c.listHead(listFree))

	obj := c.allocate(r.mem, r.pageMgr)
	require.NotEqual(t, NullOffset, obj)

	// A fresh slab formats onto `free`, then the first allocation from it
	// moves it to `partial` (unless the class holds only one object).
	if c.objectCount() == 1 {
		require.Equal(t, uint32(1), c.listCount(listFull))
	} else {
		require.Equal(t, uint32(1), c.listCount(listPartial))
	}
}

func TestCacheAllocateFillsSlabThenFull(t *testing.T) {
	r := newTestRegion(t, 16*PageSize)
	c := r.header.cache(0)
	total := c.objectCount()
	require.Greater(t, total, uint32(1))

	var objs []Offset
	for i := uint32(0); i < total; i++ {
		objs = append(objs, c.allocate(r.mem, r.pageMgr))
	}

	require.Equal(t, uint32(0), c.listCount(listPartial))
	require.Equal(t, uint32(0), c.listCount(listFree))
	require.Equal(t, uint32(1), c.listCount(listFull))
}

func TestCacheFreeMovesFullToPartialAndBackToFree(t *testing.T) {
	r := newTestRegion(t, 16*PageSize)
	c := r.header.cache(0)
	total := c.objectCount()

	var objs []Offset
	for i := uint32(0); i < total; i++ {
		objs = append(objs, c.allocate(r.mem, r.pageMgr))
	}
	require.Equal(t, uint32(1), c.listCount(listFull))

	slabOff := slabOf(r.mem, objs[0]).at

	c.free(r.mem, slabOff, objs[0])
	require.Equal(t, uint32(0), c.listCount(listFull))
	require.Equal(t, uint32(1), c.listCount(listPartial))

	for _, o := range objs[1:] {
		c.free(r.mem, slabOff, o)
	}
	require.Equal(t, uint32(0), c.listCount(listPartial))
	require.Equal(t, uint32(1), c.listCount(listFree))
}

func TestCacheReusesFreeSlabBeforeFormattingAnother(t *testing.T) {
	r := newTestRegion(t, 16*PageSize)
	c := r.header.cache(0)
	total := c.objectCount()

	var objs []Offset
	for i := uint32(0); i < total; i++ {
		objs = append(objs, c.allocate(r.mem, r.pageMgr))
	}
	slabOff := slabOf(r.mem, objs[0]).at
	for _, o := range objs {
		c.free(r.mem, slabOff, o)
	}
	require.Equal(t, uint32(1), c.listCount(listFree))

	obj := c.allocate(r.mem, r.pageMgr)
	require.NotEqual(t, NullOffset, obj)
	require.Equal(t, uint32(0), c.listCount(listFree))
}
