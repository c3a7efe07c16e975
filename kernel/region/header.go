package region

// Region header layout (all fields little-endian, at offset 0 of the
// region):
//
//	0   u32  size            total region size in bytes
//	4   u32  pages           offset of the first data page
//	8   u32  freePage        free_page hint, 0 meaning "no known free page"
//	12  ..   heapBitmap      bitmapDesc (8 bytes)
//	20  ..   slabBitmap      bitmapDesc (8 bytes)
//	28  u32  numCaches       number of cache records in use
//	32  ..   caches[N]       fixed array of cacheRecordSize records
const (
	hdrOffSize      Offset = 0
	hdrOffPages     Offset = 4
	hdrOffFreePage  Offset = 8
	hdrOffHeapBmp   Offset = 12
	hdrOffSlabBmp   Offset = 20
	hdrOffNumCaches Offset = 28
	hdrOffCaches    Offset = 32
)

func headerSize() uint32 {
	return uint32(hdrOffCaches) + uint32(NumSizeClasses)*cacheRecordSize
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func putLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func readU32(mem []byte, off Offset) uint32 {
	return le32(bytes(mem, off, 4))
}

func writeU32(mem []byte, off Offset, v uint32) {
	putLE32(bytes(mem, off, 4), v)
}

// header is a thin, stateless accessor over a region's backing bytes —
// every field lives in mem itself, never in the Go struct, so a header
// value carries no state that would go stale across a remap.
type header struct{ mem []byte }

func (h header) size() uint32        { return readU32(h.mem, hdrOffSize) }
func (h header) pages() Offset       { return Offset(readU32(h.mem, hdrOffPages)) }
func (h header) freePage() Offset    { return Offset(readU32(h.mem, hdrOffFreePage)) }
func (h header) setFreePage(o Offset) { writeU32(h.mem, hdrOffFreePage, uint32(o)) }

func (h header) heapBitmap() bitmapDesc { return readBitmapDesc(h.mem, hdrOffHeapBmp) }
func (h header) slabBitmap() bitmapDesc { return readBitmapDesc(h.mem, hdrOffSlabBmp) }

func (h header) numCaches() uint32     { return readU32(h.mem, hdrOffNumCaches) }
func (h header) setNumCaches(n uint32) { writeU32(h.mem, hdrOffNumCaches, n) }

func (h header) cacheOffset(i int) Offset {
	return hdrOffCaches + Offset(uint32(i)*cacheRecordSize)
}

func (h header) cache(i int) cacheRecord {
	return cacheRecord{mem: h.mem, at: h.cacheOffset(i)}
}
