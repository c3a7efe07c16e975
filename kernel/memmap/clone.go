package memmap

import (
	"bytes"
	"fmt"

	"golang.org/x/sys/unix"
)

// CloneProvider is a MAP_PRIVATE view over the same file descriptor as a
// FileProvider: the kernel copies a page only when the clone writes to
// it, so taking a snapshot is an O(1) mmap call regardless of region
// size, and reads that never touch a written page come from the same
// physical memory as the original mapping.
//
// A clone's writes are never visible to the original mapping (that's the
// point of MAP_PRIVATE) and are lost when the clone is closed unless
// CommitTo copies them back explicitly.
type CloneProvider struct {
	data []byte
}

// Clone creates a private, copy-on-write view over src's file.
func Clone(src *FileProvider) (*CloneProvider, error) {
	data, err := unix.Mmap(src.Fd(), 0, int(src.Size()), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("memmap: clone mmap: %w", err)
	}
	return &CloneProvider{data: data}, nil
}

func (c *CloneProvider) Bytes() []byte { return c.data }

// pageSize mirrors region.PageSize without importing the region package
// (memmap and region are independent packages; neither imports the
// other).
const pageSize = 4096

// CommitTo copies the clone's pages that differ from dst onto dst,
// making whatever mutations happened inside the snapshot visible to the
// original mapping. Comparing before copying means pages the snapshot
// never wrote come back for free, without needing real dirty-page
// tracking from the kernel. Callers are responsible for ensuring dst
// isn't concurrently in use.
func (c *CloneProvider) CommitTo(dst Provider) error {
	dstBytes := dst.Bytes()
	if len(c.data) != len(dstBytes) {
		return fmt.Errorf("memmap: commit size mismatch: clone %d, dst %d: %w", len(c.data), len(dstBytes), ErrOutOfBounds)
	}

	for off := 0; off < len(c.data); off += pageSize {
		end := off + pageSize
		if end > len(c.data) {
			end = len(c.data)
		}
		page := c.data[off:end]
		if !bytes.Equal(page, dstBytes[off:end]) {
			copy(dstBytes[off:end], page)
		}
	}
	return nil
}

func (c *CloneProvider) Close() error {
	if c.data == nil {
		return nil
	}
	err := unix.Munmap(c.data)
	c.data = nil
	return err
}
