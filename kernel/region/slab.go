package region

// slabHeaderSize is the on-disk size of a slab header, at the top of every
// slab page:
//
//	0   u32  next        offset of next slab in the same list
//	4   u32  cache       offset of the owning cache record
//	8   u32  list        offset of the owning cache's current list head field
//	12  u32  objects     offset where object cells begin
//	16  u32  freeHead    offset of the first free cell (0 = none)
//	20  u32  freeCount   number of free cells
const slabHeaderSize = 24

// slab is a stateless accessor over one slab page's bytes. `at` is the
// page's own offset (the slab header sits at the top of the page).
type slab struct {
	mem []byte
	at  Offset
}

func slabAt(mem []byte, pageOff Offset) slab { return slab{mem: mem, at: pageOff} }

// slabOf returns the slab owning object offset o: o&^PageMask is always
// the offset of its slab (spec §3 invariant).
func slabOf(mem []byte, o Offset) slab { return slabAt(mem, pageOf(o)) }

func (s slab) next() Offset        { return Offset(readU32(s.mem, s.at+0)) }
func (s slab) setNext(v Offset)    { writeU32(s.mem, s.at+0, uint32(v)) }
func (s slab) cacheOff() Offset    { return Offset(readU32(s.mem, s.at+4)) }
func (s slab) setCacheOff(v Offset) { writeU32(s.mem, s.at+4, uint32(v)) }
func (s slab) list() Offset        { return Offset(readU32(s.mem, s.at+8)) }
func (s slab) setList(v Offset)    { writeU32(s.mem, s.at+8, uint32(v)) }
func (s slab) objects() Offset     { return Offset(readU32(s.mem, s.at+12)) }
func (s slab) setObjects(v Offset) { writeU32(s.mem, s.at+12, uint32(v)) }
func (s slab) freeHead() Offset    { return Offset(readU32(s.mem, s.at+16)) }
func (s slab) setFreeHead(v Offset) { writeU32(s.mem, s.at+16, uint32(v)) }

func (s slab) freeCount(mem []byte) uint32 { return readU32(mem, s.at+20) }
func (s slab) setFreeCount(mem []byte, n uint32) { writeU32(mem, s.at+20, n) }

// cache resolves the cacheRecord that owns this slab.
func (s slab) cache() cacheRecord {
	return cacheRecord{mem: s.mem, at: s.cacheOff()}
}

// formatSlab lays out a fresh page as a slab for c (spec §4.4). The page
// is zeroed past the first word (reserved for page-manager bookkeeping
// before formatting), the header is written, and the free list is threaded
// from the last cell down to the first so earlier cells are handed out
// first (better locality).
func formatSlab(mem []byte, pageOff Offset, c cacheRecord) {
	page := bytes(mem, pageOff, PageSize)
	for i := range page[4:] {
		page[4+i] = 0
	}

	s := slab{mem: mem, at: pageOff}
	count := c.objectCount()
	cellSize := c.alignedObj()
	objectsOff := pageOff + PageSize - Offset(count*cellSize)

	s.setCacheOff(c.at)
	s.setList(c.listHeadFieldOffset(listFree))
	s.setObjects(objectsOff)

	// Thread the free list last-cell-first: cell 0 ends up at the head.
	var next Offset = NullOffset
	for i := int(count) - 1; i >= 0; i-- {
		cell := objectsOff + Offset(uint32(i)*cellSize)
		writeU32(mem, cell, uint32(next))
		next = cell
	}
	s.setFreeHead(next)
	s.setFreeCount(mem, count)
}

// popObject unlinks and returns the head of the slab's free list.
func (s slab) popObject(mem []byte) Offset {
	head := s.freeHead()
	next := Offset(readU32(mem, head))
	s.setFreeHead(next)
	s.setFreeCount(mem, s.freeCount(mem)-1)
	return head
}

// pushObject returns obj to the slab's free list. Before linking it in,
// it walks the existing free list to assert obj is not already free
// (double-free detection) and that every visited cell lies within the
// slab's page — a corruption or double-free is fatal, per spec §4.8.
func (s slab) pushObject(mem []byte, obj Offset) {
	lo, hi := s.at, s.at+PageSize
	for cur := s.freeHead(); cur != NullOffset; cur = Offset(readU32(mem, cur)) {
		if cur < lo || cur >= hi {
			panic("region: slab free list escaped its page — corruption")
		}
		if cur == obj {
			panic("region: double free detected")
		}
	}

	writeU32(mem, obj, uint32(s.freeHead()))
	s.setFreeHead(obj)
	s.setFreeCount(mem, s.freeCount(mem)+1)
}
