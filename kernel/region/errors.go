package region

import "errors"

var (
	// ErrLayoutTooSmall is returned by Init when size cannot hold a header
	// page plus at least one data page.
	ErrLayoutTooSmall = errors.New("region: size too small for header and data pages")

	// ErrInvalidOffset is returned by ReadAt and WriteAt when the requested
	// byte range extends past the end of the region.
	ErrInvalidOffset = errors.New("region: offset outside region bounds")

	// ErrObjectTooLarge names a request above the largest small-object size
	// class. Allocate does not return it: Allocate reports every failure,
	// an oversized request included, as NullOffset.
	ErrObjectTooLarge = errors.New("region: object too large for small-object allocator")

	// ErrNotOpen is returned by Open when the byte slice is shorter than
	// one page and so cannot hold a region header.
	ErrNotOpen = errors.New("region: not initialized")
)
