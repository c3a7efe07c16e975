package region

// Region is the façade over one contiguous byte slice formatted as a
// position-independent object allocator (spec §2). All of its state —
// header, bitmaps, cache records, slab headers, free lists — lives inside
// mem; Region itself is just a handle, safe to discard and recreate around
// the same bytes after a remap.
type Region struct {
	mem     []byte
	header  header
	pageMgr pageMgr
}

// Init formats a freshly allocated (or newly mapped, zero-filled) byte
// slice as an empty region and returns a handle to it. len(mem) must be at
// least two pages; anything smaller can never hold a header plus one data
// page.
func Init(mem []byte) (*Region, error) {
	l, err := computeLayout(uint32(len(mem)))
	if err != nil {
		return nil, err
	}
	if !l.validate() {
		return nil, ErrLayoutTooSmall
	}

	h := header{mem: mem}
	writeU32(mem, hdrOffSize, uint32(len(mem)))
	writeU32(mem, hdrOffPages, uint32(l.dataStart))
	writeBitmapDesc(mem, hdrOffHeapBmp, l.heapBitmap)
	writeBitmapDesc(mem, hdrOffSlabBmp, l.slabBitmap)

	clearBitmapBytes(mem, l.heapBitmap)
	clearBitmapBytes(mem, l.slabBitmap)
	markOutOfRangePages(mem, l.heapBitmap, l.totalPages)
	markOutOfRangePages(mem, l.slabBitmap, l.totalPages)
	if l.reservedFrom < l.reservedTo {
		markReservedPages(mem, l.heapBitmap, l.reservedFrom, l.reservedTo)
	}

	h.setNumCaches(uint32(NumSizeClasses))
	for i, sc := range sizeClasses {
		c := h.cache(i)
		c.setName(sc.name)
		c.setObjectSize(sc.cells)
		c.setAlignment(align)
		alignedObj := alignedSize(sc.cells, align)
		c.setAlignedObj(alignedObj)
		c.setObjectCount(objectsPerSlab(alignedObj))
		c.setListHead(listFull, NullOffset)
		c.setListHead(listPartial, NullOffset)
		c.setListHead(listFree, NullOffset)
	}

	h.setFreePage(l.dataStart)

	return &Region{mem: mem, header: h, pageMgr: newPageMgr(mem)}, nil
}

// Open attaches a Region handle to bytes previously formatted by Init —
// after a remap, a fork, or reopening a persisted file. No bytes are
// touched; the header is trusted as-is.
func Open(mem []byte) (*Region, error) {
	if uint32(len(mem)) < uint32(PageSize) {
		return nil, ErrNotOpen
	}
	return &Region{mem: mem, header: header{mem: mem}, pageMgr: newPageMgr(mem)}, nil
}

func clearBitmapBytes(mem []byte, d bitmapDesc) {
	b := bytes(mem, d.offset, d.bytesLen())
	for i := range b {
		b[i] = 0
	}
}

// Allocate returns an offset to a zero-initialized object of at least size
// bytes, or NullOffset if size is 0, exceeds the largest small-object
// class, or the region is out of pages (spec §2, §6).
func (r *Region) Allocate(size uint32) Offset {
	idx := classFor(size)
	if idx < 0 {
		return NullOffset
	}
	c := r.header.cache(idx)
	obj := c.allocate(r.mem, r.pageMgr)
	if obj == NullOffset {
		return NullOffset
	}
	zero(bytes(r.mem, obj, c.alignedObj()))
	return obj
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Free releases an object previously returned by Allocate. A zero, out of
// bounds, misaligned, or otherwise invalid offset is a silent no-op (spec
// §4.7/§4.8); a double free or a free-list walk that escapes its page is
// fatal, raised as a panic from deeper in the cache/slab layer.
func (r *Region) Free(off Offset) {
	if off == NullOffset || !r.inDataPages(off) {
		return
	}
	if !r.pageMgr.isSlabPage(pageOf(off)) {
		return
	}

	s := slabOf(r.mem, off)
	c := s.cache()
	if !cellBoundary(s, c, off) {
		return
	}
	c.free(r.mem, s.at, off)
}

// IsObject reports whether off currently points at a live (allocated, not
// free) small object.
func (r *Region) IsObject(off Offset) bool {
	if off == NullOffset || !r.inDataPages(off) {
		return false
	}
	if !r.pageMgr.isSlabPage(pageOf(off)) {
		return false
	}

	s := slabOf(r.mem, off)
	c := s.cache()
	if !cellBoundary(s, c, off) {
		return false
	}

	for cur := s.freeHead(); cur != NullOffset; cur = Offset(readU32(r.mem, cur)) {
		if cur == off {
			return false
		}
	}
	return true
}

// cellBoundary reports whether off lands exactly on one of c's object
// cells within s, rather than partway into one — the guard that keeps a
// misaligned offset (e.g. obj+1) from being treated as a valid cell, which
// would otherwise let Free/IsObject read or link through the middle of a
// live object (spec §4.7/§4.8).
func cellBoundary(s slab, c cacheRecord, off Offset) bool {
	cellSize := c.alignedObj()
	if off < s.objects() {
		return false
	}
	rel := uint32(off - s.objects())
	return rel%cellSize == 0 && rel/cellSize < c.objectCount()
}

func (r *Region) inDataPages(off Offset) bool {
	return off >= r.header.pages() && uint32(off) < r.header.size()
}

// Size returns the region's total size in bytes.
func (r *Region) Size() uint32 { return r.header.size() }

// ReadAt copies len(dest) bytes starting at off into dest. Unlike Free,
// an out-of-bounds read is an error, not a silent no-op: callers reading
// by offset are expected to already know the offset is valid (e.g. it
// came from a prior Allocate), so a bounds violation here signals a bug
// rather than routine invalid input.
func (r *Region) ReadAt(off Offset, dest []byte) error {
	if uint32(off)+uint32(len(dest)) > r.header.size() {
		return ErrInvalidOffset
	}
	copy(dest, r.mem[off:uint32(off)+uint32(len(dest))])
	return nil
}

// WriteAt copies src into the region starting at off.
func (r *Region) WriteAt(off Offset, src []byte) error {
	if uint32(off)+uint32(len(src)) > r.header.size() {
		return ErrInvalidOffset
	}
	copy(r.mem[off:uint32(off)+uint32(len(src))], src)
	return nil
}

// Swizzle translates a region-relative offset into a process-local
// pointer, valid only until the region is next remapped.
func (r *Region) Swizzle(off Offset) uintptr { return Swizzle(r.mem, off) }

// Unswizzle translates a process-local pointer previously returned by
// Swizzle back into a region-relative offset.
func (r *Region) Unswizzle(addr uintptr) Offset { return Unswizzle(r.mem, addr) }

// Stats summarizes a region's page and cache utilization, for export as
// metrics.
type Stats struct {
	TotalPages uint32
	FreePage   Offset
	Caches     []CacheStats
}

// CacheStats summarizes one size class's slab lists.
type CacheStats struct {
	Name         string
	ObjectSize   uint32
	FullSlabs    uint32
	PartialSlabs uint32
	FreeSlabs    uint32
}

func (r *Region) Stats() Stats {
	st := Stats{
		TotalPages: r.header.size() / PageSize,
		FreePage:   r.header.freePage(),
	}
	for i := 0; i < int(r.header.numCaches()); i++ {
		c := r.header.cache(i)
		st.Caches = append(st.Caches, CacheStats{
			Name:         c.name(),
			ObjectSize:   c.objectSize(),
			FullSlabs:    c.listCount(listFull),
			PartialSlabs: c.listCount(listPartial),
			FreeSlabs:    c.listCount(listFree),
		})
	}
	return st
}
