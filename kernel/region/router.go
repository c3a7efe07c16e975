package region

// sizeClass describes one of the small-object router's fixed classes.
type sizeClass struct {
	name  string
	cells uint32 // aligned object size
}

// align is the alignment every size class uses. All cells are 8-byte
// aligned so the first word of a free cell (the intrusive next-offset)
// never straddles a misaligned boundary.
const align = 8

// sizeClasses is the compile-time size -> class table. Class i covers
// requests in (sizeClasses[i-1].cells, sizeClasses[i].cells], class 0
// covers 1..8. These are created, in this exact order, by Init.
var sizeClasses = [...]sizeClass{
	{name: "size-8", cells: 8},
	{name: "size-16", cells: 16},
	{name: "size-32", cells: 32},
	{name: "size-64", cells: 64},
	{name: "size-128", cells: 128},
	{name: "size-256", cells: 256},
}

// NumSizeClasses is the number of fixed caches a region carries.
const NumSizeClasses = len(sizeClasses)

// MaxSmallObject is the largest size the small-object router accepts.
// There is no large-object path: Allocate returns NullOffset for any
// request above this.
const MaxSmallObject = 256

// classFor maps a requested size to a size-class index, or -1 if size is
// 0 or exceeds MaxSmallObject.
func classFor(size uint32) int {
	if size == 0 || size > MaxSmallObject {
		return -1
	}
	for i, c := range sizeClasses {
		if size <= c.cells {
			return i
		}
	}
	return -1
}

// alignedSize returns max(align, align*ceil(size/align)) for a raw cell
// size, per spec §4.6. All current classes are already multiples of
// align, so this is an identity for them, but cache records carry the
// computed value rather than assume it.
func alignedSize(size, alignment uint32) uint32 {
	if alignment == 0 {
		alignment = align
	}
	return alignUp(size, alignment)
}

// objectsPerSlab returns how many cells of alignedSz fit in a slab page
// after the slab header.
func objectsPerSlab(alignedSz uint32) uint32 {
	return (PageSize - slabHeaderSize) / alignedSz
}
