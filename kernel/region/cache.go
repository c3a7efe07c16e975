package region

// cacheRecordSize is the on-disk size of one cache record: a 16-byte name,
// three (head,count) slab lists, and four size-class fields.
const cacheRecordSize = 16 + 3*listSize + 4*4

const listSize = 8 // (head Offset, count uint32)

// listKind names one of a cache's three slab lists.
type listKind int

const (
	listFull listKind = iota
	listPartial
	listFree
)

func (k listKind) fieldOffset() Offset {
	switch k {
	case listFull:
		return 16
	case listPartial:
		return 16 + listSize
	default:
		return 16 + 2*listSize
	}
}

// cacheRecord is a stateless accessor over one cache's bytes, starting at
// `at` within mem.
type cacheRecord struct {
	mem []byte
	at  Offset
}

func (c cacheRecord) field(off Offset) Offset { return c.at + off }

func (c cacheRecord) name() string {
	b := bytes(c.mem, c.at, 16)
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}

func (c cacheRecord) setName(name string) {
	b := bytes(c.mem, c.at, 16)
	for i := range b {
		b[i] = 0
	}
	copy(b, name)
}

func (c cacheRecord) listHead(k listKind) Offset {
	return Offset(readU32(c.mem, c.field(k.fieldOffset())))
}
func (c cacheRecord) setListHead(k listKind, v Offset) {
	writeU32(c.mem, c.field(k.fieldOffset()), uint32(v))
}
func (c cacheRecord) listCount(k listKind) uint32 {
	return readU32(c.mem, c.field(k.fieldOffset())+4)
}
func (c cacheRecord) setListCount(k listKind, n uint32) {
	writeU32(c.mem, c.field(k.fieldOffset())+4, n)
}

// listHeadFieldOffset is the absolute offset of a list's head field,
// stored inside a slab so the slab can identify which list it is on
// without its cache scanning to find out (spec §3, Slab).
func (c cacheRecord) listHeadFieldOffset(k listKind) Offset {
	return c.field(k.fieldOffset())
}

func (c cacheRecord) whichList(headFieldOffset Offset) listKind {
	switch headFieldOffset {
	case c.listHeadFieldOffset(listFull):
		return listFull
	case c.listHeadFieldOffset(listPartial):
		return listPartial
	default:
		return listFree
	}
}

func (c cacheRecord) objectSize() uint32    { return readU32(c.mem, c.field(40)) }
func (c cacheRecord) setObjectSize(v uint32) { writeU32(c.mem, c.field(40), v) }
func (c cacheRecord) alignment() uint32     { return readU32(c.mem, c.field(44)) }
func (c cacheRecord) setAlignment(v uint32) { writeU32(c.mem, c.field(44), v) }
func (c cacheRecord) alignedObj() uint32    { return readU32(c.mem, c.field(48)) }
func (c cacheRecord) setAlignedObj(v uint32) { writeU32(c.mem, c.field(48), v) }
func (c cacheRecord) objectCount() uint32   { return readU32(c.mem, c.field(52)) }
func (c cacheRecord) setObjectCount(v uint32) { writeU32(c.mem, c.field(52), v) }

// pushSlab prepends slabOff to list k (lists are LIFO: newest slab is the
// head, keeping hot pages at the front per spec §4.5).
func (c cacheRecord) pushSlab(k listKind, slabOff Offset) {
	s := slabAt(c.mem, slabOff)
	s.setNext(c.listHead(k))
	s.setList(c.listHeadFieldOffset(k))
	c.setListHead(k, slabOff)
	c.setListCount(k, c.listCount(k)+1)
}

// popSlab removes and returns the head of list k, or NullOffset if empty.
func (c cacheRecord) popSlab(k listKind) Offset {
	head := c.listHead(k)
	if head == NullOffset {
		return NullOffset
	}
	s := slabAt(c.mem, head)
	c.setListHead(k, s.next())
	c.setListCount(k, c.listCount(k)-1)
	return head
}

// unlinkSlab removes slabOff from list k by walking from the head, since a
// slab knows which list it is on (via its `list` field) but not its
// predecessor (spec §4.5).
func (c cacheRecord) unlinkSlab(k listKind, slabOff Offset) {
	head := c.listHead(k)
	if head == slabOff {
		c.popSlab(k)
		return
	}
	prev := slabAt(c.mem, head)
	for cur := prev.next(); cur != NullOffset; cur = prev.next() {
		if cur == slabOff {
			prev.setNext(slabAt(c.mem, cur).next())
			c.setListCount(k, c.listCount(k)-1)
			return
		}
		prev = slabAt(c.mem, cur)
	}
}

// moveSlab removes slabOff from `from` and pushes it onto `to`.
func (c cacheRecord) moveSlab(from, to listKind, slabOff Offset) {
	c.unlinkSlab(from, slabOff)
	c.pushSlab(to, slabOff)
}

// allocate implements the cache's allocate transition rules (spec §4.5).
// It returns NullOffset if the page manager is out of pages.
func (c cacheRecord) allocate(mem []byte, pm pageManager) Offset {
	if head := c.listHead(listPartial); head != NullOffset {
		obj := slabAt(mem, head).popObject(mem)
		if slabAt(mem, head).freeCount(mem) == 0 {
			c.moveSlab(listPartial, listFull, head)
		}
		return obj
	}

	if head := c.listHead(listFree); head != NullOffset {
		c.unlinkSlab(listFree, head)
		obj := slabAt(mem, head).popObject(mem)
		if c.objectCount() == 1 {
			c.pushSlab(listFull, head)
		} else {
			c.pushSlab(listPartial, head)
		}
		return obj
	}

	page := pm.allocatePage()
	if page == NullOffset {
		return NullOffset
	}
	pm.markSlabPage(page)
	formatSlab(mem, page, c)
	c.pushSlab(listFree, page)
	return c.allocate(mem, pm)
}

// free implements the cache's free transition rule (spec §4.5): push the
// object back onto its slab, and if the slab is now entirely free, move it
// from partial to free (slabs on free are not returned to the page pool —
// a deliberate reuse-bias decision).
func (c cacheRecord) free(mem []byte, slabOff, obj Offset) {
	s := slabAt(mem, slabOff)
	s.pushObject(mem, obj)

	if s.freeCount(mem) == c.objectCount() {
		switch c.whichList(s.list()) {
		case listPartial:
			c.moveSlab(listPartial, listFree, slabOff)
		case listFull:
			c.moveSlab(listFull, listFree, slabOff)
		}
	} else if c.whichList(s.list()) == listFull {
		c.moveSlab(listFull, listPartial, slabOff)
	}
}

// pageManager is the subset of pageMgr the cache needs, kept as an
// interface so cache.go and pagemgr.go don't need to know about each
// other's full surface.
type pageManager interface {
	allocatePage() Offset
	markSlabPage(off Offset)
}
