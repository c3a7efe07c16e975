package region

// layout is the result of deciding where a region's fixed structures live.
// dataStart is always right after the header page; for a large region,
// [reservedFrom, reservedTo) additionally names the page indices reserved
// at the tail of the region to hold the two bitmaps themselves — those
// pages are handed to the data pool nowhere but are still counted in
// totalPages, since bit i of each bitmap names the i-th page of the whole
// region (spec §3), control pages included. reservedFrom == reservedTo
// means no tail reservation: the bitmaps fit in the header page's slack.
type layout struct {
	totalPages   uint32
	dataStart    Offset
	heapBitmap   bitmapDesc
	slabBitmap   bitmapDesc
	reservedFrom uint32
	reservedTo   uint32
}

// computeLayout decides where the two page bitmaps live (spec §9, bitmap
// placement). A region's total page count is fixed at Init time, so the
// bitmap size is known up front: ceil(totalPages/8) bytes per bitmap.
//
// Small regions get their bitmaps packed into the slack left in the header
// page after the fixed header fields; a region needs thousands of pages
// before this stops fitting a single 4KB page. Large regions instead
// reserve whole pages at the tail (high end) of the region to hold the
// bitmaps, placed back to back — heap bitmap first, then slab bitmap —
// rather than the studied source's unclear `size -
// (bitmap_pages*PAGE_SIZE>>2)` placement (spec §9's open question on this
// is resolved this way).
func computeLayout(size uint32) (layout, error) {
	if size < 2*PageSize {
		return layout{}, ErrLayoutTooSmall
	}

	totalPages := size / PageSize
	bitmapBytes := alignUp((totalPages+7)/8, 1)
	perBitmap := bitmapBytes
	headerSlack := PageSize - headerSize()

	bitmapBits := perBitmap * 8
	dataStart := Offset(PageSize)

	if 2*perBitmap <= headerSlack {
		if (size-uint32(dataStart))/PageSize < 1 {
			return layout{}, ErrLayoutTooSmall
		}
		return layout{
			totalPages: totalPages,
			dataStart:  dataStart,
			heapBitmap: bitmapDesc{offset: Offset(headerSize()), bits: bitmapBits},
			slabBitmap: bitmapDesc{offset: Offset(headerSize() + perBitmap), bits: bitmapBits},
		}, nil
	}

	reservedPages := (2*perBitmap + PageSize - 1) / PageSize
	if totalPages < reservedPages+2 {
		return layout{}, ErrLayoutTooSmall
	}

	reservedFrom := totalPages - reservedPages
	tailOffset := Offset(reservedFrom) * PageSize

	return layout{
		totalPages:   totalPages,
		dataStart:    dataStart,
		heapBitmap:   bitmapDesc{offset: tailOffset, bits: bitmapBits},
		slabBitmap:   bitmapDesc{offset: tailOffset + Offset(perBitmap), bits: bitmapBits},
		reservedFrom: reservedFrom,
		reservedTo:   totalPages,
	}, nil
}

// overlaps reports whether [aOff,aOff+aLen) and [bOff,bOff+bLen) share any
// byte — the same check validation.go in the teacher's SAB package runs
// across named regions, here run once at layout time as a sanity check
// rather than on every access.
func overlaps(aOff, aLen, bOff, bLen Offset) bool {
	aEnd, bEnd := aOff+aLen, bOff+bLen
	return aOff < bEnd && bOff < aEnd
}

// markOutOfRangePages sets every bit from totalPages up to d.bits-1 —
// padding bits that exist only because the bitmap's byte length rounds up
// to a multiple of 8 — so the page scanner never hands out a page index
// past the region's real page count.
func markOutOfRangePages(mem []byte, d bitmapDesc, totalPages uint32) {
	for i := totalPages; i < d.bits; i++ {
		d.set(mem, i)
	}
}

// markReservedPages sets every bit in [from, to) — real page indices a
// large region reserves at its tail to hold the bitmaps themselves — so
// the page manager can never hand one of those pages out as a slab or
// heap page, which would corrupt the very bitmap describing it.
func markReservedPages(mem []byte, d bitmapDesc, from, to uint32) {
	for i := from; i < to; i++ {
		d.set(mem, i)
	}
}

func (l layout) validate() bool {
	if overlaps(l.heapBitmap.offset, Offset(l.heapBitmap.bytesLen()), l.slabBitmap.offset, Offset(l.slabBitmap.bytesLen())) {
		return false
	}
	heapEnd := l.heapBitmap.offset + Offset(l.heapBitmap.bytesLen())
	slabEnd := l.slabBitmap.offset + Offset(l.slabBitmap.bytesLen())

	if l.reservedFrom == l.reservedTo {
		// Bitmaps packed into the header page's slack, before dataStart.
		return heapEnd <= l.dataStart && slabEnd <= l.dataStart
	}

	// Bitmaps reserved at the tail: must sit entirely within
	// [reservedFrom, reservedTo) page indices, which must themselves sit
	// entirely at or after dataStart.
	reservedStart := Offset(l.reservedFrom) * PageSize
	reservedEnd := Offset(l.reservedTo) * PageSize
	return l.dataStart <= reservedStart &&
		l.heapBitmap.offset >= reservedStart && heapEnd <= reservedEnd &&
		l.slabBitmap.offset >= reservedStart && slabEnd <= reservedEnd
}
