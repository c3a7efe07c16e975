package region

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func formatTestSlab(t *testing.T, r *Region, classIdx int) (slab, cacheRecord) {
	t.Helper()
	c := r.header.cache(classIdx)
	page := r.pageMgr.allocatePage()
	require.NotEqual(t, NullOffset, page)
	r.pageMgr.markSlabPage(page)
	formatSlab(r.mem, page, c)
	return slabAt(r.mem, page), c
}

func TestFormatSlabThreadsFreeList(t *testing.T) {
	r := newTestRegion(t, 8*PageSize)
	s, c := formatTestSlab(t, r, 0) // size-8 class

	require.Equal(t, c.objectCount(), s.freeCount(r.mem))
	require.NotEqual(t, NullOffset, s.freeHead())
	require.Equal(t, s.objects(), s.freeHead(), "cell 0 is handed out first")
}

func TestPopPushObjectRoundTrip(t *testing.T) {
	r := newTestRegion(t, 8*PageSize)
	s, c := formatTestSlab(t, r, 0)
	total := c.objectCount()

	obj := s.popObject(r.mem)
	require.Equal(t, total-1, s.freeCount(r.mem))

	s.pushObject(r.mem, obj)
	require.Equal(t, total, s.freeCount(r.mem))
	require.Equal(t, obj, s.freeHead())
}

func TestPopObjectDrainsWholeSlab(t *testing.T) {
	r := newTestRegion(t, 8*PageSize)
	s, c := formatTestSlab(t, r, 0)
	total := c.objectCount()

	seen := make(map[Offset]bool)
	for i := uint32(0); i < total; i++ {
		o := s.popObject(r.mem)
		require.False(t, seen[o], "object handed out twice: %d", o)
		seen[o] = true
	}
	require.Equal(t, uint32(0), s.freeCount(r.mem))
	require.Equal(t, NullOffset, s.freeHead())
}

func TestPushObjectDetectsDoubleFree(t *testing.T) {
	r := newTestRegion(t, 8*PageSize)
	s, _ := formatTestSlab(t, r, 0)

	obj := s.popObject(r.mem)
	s.pushObject(r.mem, obj)

	require.Panics(t, func() {
		s.pushObject(r.mem, obj)
	})
}

func TestSlabOfRecoversOwningPage(t *testing.T) {
	r := newTestRegion(t, 8*PageSize)
	s, _ := formatTestSlab(t, r, 0)

	obj := s.popObject(r.mem)
	require.Equal(t, s.at, slabOf(r.mem, obj).at)
}
